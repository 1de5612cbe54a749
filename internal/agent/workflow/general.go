package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopmate-ai/server/internal/agent/conversations"
	"github.com/shopmate-ai/server/internal/agent/model"
	"github.com/shopmate-ai/server/internal/agent/prompts"
	logx "github.com/shopmate-ai/server/pkg/logger"
)

const agentGeneral = "general"

// handleGeneral answers everything the specialists don't: product and
// shipping questions, address changes, cancellations and anything classified
// with low confidence. It grounds the draft in whatever context the turn
// gathered, knowledge-base excerpts first.
func (e *Engine) handleGeneral(ctx context.Context, st *model.ConversationState) *model.StateUpdate {
	prompt, err := prompts.General(ctx, prompts.GeneralParams{
		CustomerMessage:     st.CurrentMessage,
		Intent:              st.Intent,
		Sentiment:           st.Sentiment,
		RecommendedTone:     st.RecommendedTone,
		ConversationHistory: conversations.RenderWindow(st.Messages, e.deps.Conversation.ClassifyMaxEntries),
		Context:             generalContext(st),
	})
	if err == nil {
		reply, genErr := e.deps.Models.Responder.Generate(ctx, prompt)
		if genErr == nil && reply.Content != "" {
			return &model.StateUpdate{
				CurrentAgent:   model.Ptr(agentGeneral),
				ResponseDraft:  model.Ptr(reply.Content),
				AgentReasoning: model.Ptr("Answered as general inquiry: " + st.Intent),
				TokensUsed:     reply.TotalTokens,
			}
		}
		err = genErr
	}

	logx.Error().Err(err).Str("conversation_id", st.ConversationID).Msg("general draft failed, using template")
	return &model.StateUpdate{
		CurrentAgent: model.Ptr(agentGeneral),
		ResponseDraft: model.Ptr("Thanks for reaching out! I want to make sure I get you the right answer. " +
			"Could you share a few more details about what you need help with?"),
		AgentReasoning: model.Ptr("Responder unavailable, asked customer to elaborate"),
	}
}

// generalContext assembles the grounding block for the general prompt.
func generalContext(st *model.ConversationState) string {
	var parts []string

	if len(st.PolicyContext) > 0 {
		parts = append(parts, "Store policies and FAQ:\n"+strings.Join(st.PolicyContext, "\n\n"))
	}
	if st.OrderData != nil {
		parts = append(parts, fmt.Sprintf("Customer's order #%s is %s.",
			st.OrderData.OrderNumber, st.OrderData.Status))
	}
	if st.CustomerData != nil {
		parts = append(parts, fmt.Sprintf("Customer %s has placed %d order(s).",
			st.CustomerData.Name, st.CustomerData.TotalOrders))
	}
	if len(parts) == 0 {
		return "No additional context available"
	}
	return strings.Join(parts, "\n\n")
}
