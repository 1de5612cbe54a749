package workflow

import (
	"context"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/shopmate-ai/server/internal/agent/conversations"
	"github.com/shopmate-ai/server/internal/agent/model"
	logx "github.com/shopmate-ai/server/pkg/logger"
)

const degradedResponse = "I apologize, but I'm experiencing a technical issue. " +
	"Please try again in a moment, or I can connect you with a team member who can help."

// Agent is the caller-facing entry point: one Run per customer message.
type Agent struct {
	engine   *Engine
	messages *conversations.MessagesManager
}

func NewAgent(engine *Engine, messages *conversations.MessagesManager) *Agent {
	return &Agent{engine: engine, messages: messages}
}

// Run handles one customer message and always returns a usable result. When
// history is nil it is loaded from the conversation store; a non-nil history
// (including an empty one) is used as given. Failures inside the workflow
// produce a degraded result flagged for escalation instead of an error.
func (a *Agent) Run(ctx context.Context, conversationID, storeID, message string, history []*schema.Message) *model.AgentResult {
	started := time.Now()
	logx.Info().
		Str("conversation_id", conversationID).
		Str("store_id", storeID).
		Msg("turn started")

	if history == nil {
		loaded, err := a.messages.LoadHistory(ctx, conversationID)
		if err != nil {
			logx.Error().Err(err).Str("conversation_id", conversationID).Msg("history load failed, starting fresh")
		} else {
			history = loaded
		}
	}

	st := model.NewTurnState(conversationID, storeID, message, history)
	carried := len(st.Messages)

	if err := a.engine.Run(ctx, st); err != nil {
		logx.Error().Err(err).Str("conversation_id", conversationID).Msg("turn failed")
		return &model.AgentResult{
			Response:           degradedResponse,
			Intent:             model.IntentError,
			Sentiment:          st.Sentiment,
			RequiresEscalation: true,
			EscalationReason:   "Agent error: " + err.Error(),
			TokensUsed:         st.TokensUsed,
			Error:              err.Error(),
		}
	}

	if appended := st.Messages[carried:]; len(appended) > 0 {
		if err := a.messages.SaveTurn(ctx, conversationID, appended); err != nil {
			logx.Error().Err(err).Str("conversation_id", conversationID).Msg("history save failed")
		}
	}

	logx.Info().
		Str("conversation_id", conversationID).
		Str("intent", st.Intent).
		Str("agent", st.CurrentAgent).
		Bool("requires_escalation", st.RequiresEscalation).
		Int("tokens_used", st.TokensUsed).
		Dur("elapsed", time.Since(started)).
		Msg("turn completed")
	return model.ResultFromState(st)
}
