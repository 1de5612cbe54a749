package workflow

import (
	"context"

	"github.com/shopmate-ai/server/internal/agent/conversations"
	"github.com/shopmate-ai/server/internal/agent/extract"
	"github.com/shopmate-ai/server/internal/agent/llm"
	"github.com/shopmate-ai/server/internal/agent/model"
	"github.com/shopmate-ai/server/internal/agent/prompts"
	logx "github.com/shopmate-ai/server/pkg/logger"
)

// classificationResult is the schema the classify prompt instructs the model
// to emit. Pointer entity fields distinguish "absent" from "empty".
type classificationResult struct {
	Intent     string   `json:"intent"`
	SubIntents []string `json:"sub_intents"`
	Confidence float64  `json:"confidence"`
	Entities   struct {
		OrderID *string  `json:"order_id"`
		Email   *string  `json:"email"`
		Amount  *float64 `json:"amount"`
	} `json:"entities"`
	Reasoning string `json:"reasoning"`
}

// classifyIntent labels the current message with an intent and extracts
// entities. Pattern extraction always runs first so a misbehaving model can
// lower confidence but never lose an order number the customer typed.
func (e *Engine) classifyIntent(ctx context.Context, st *model.ConversationState) *model.StateUpdate {
	orderID := extract.OrderNumber(st.CurrentMessage)
	email := extract.Email(st.CurrentMessage)
	amount, hasAmount := extract.Amount(st.CurrentMessage)

	history := conversations.RenderWindow(st.Messages, e.deps.Conversation.ClassifyMaxEntries)
	if history == "" {
		history = "No previous messages"
	}

	prompt, err := prompts.Classify(ctx, st.CurrentMessage, history)
	if err != nil {
		logx.Error().Err(err).Str("conversation_id", st.ConversationID).Msg("classify prompt render failed")
		return classifyFallback(0.3, orderID, email, amount, hasAmount, "Classification error: "+err.Error())
	}

	reply, err := e.deps.Models.Analysis.Generate(ctx, prompt)
	if err != nil {
		logx.Error().Err(err).Str("conversation_id", st.ConversationID).Msg("classification failed")
		return classifyFallback(0.3, orderID, email, amount, hasAmount, "Classification error: "+err.Error())
	}

	var out classificationResult
	if err := llm.DecodeJSON(reply.Content, &out); err != nil || out.Intent == "" {
		logx.Warn().Str("conversation_id", st.ConversationID).Msg("classification output unparseable, using pattern entities")
		u := classifyFallback(0.5, orderID, email, amount, hasAmount, "")
		u.TokensUsed = reply.TotalTokens
		return u
	}

	if out.Confidence < 0 {
		out.Confidence = 0
	}
	if out.Confidence > 1 {
		out.Confidence = 1
	}

	// Model entities win when present; pattern extraction fills the gaps.
	if out.Entities.OrderID != nil && *out.Entities.OrderID != "" {
		orderID = *out.Entities.OrderID
	}
	if out.Entities.Email != nil && *out.Entities.Email != "" {
		email = *out.Entities.Email
	}
	if out.Entities.Amount != nil {
		amount, hasAmount = *out.Entities.Amount, true
	}

	u := &model.StateUpdate{
		Intent:     model.Ptr(out.Intent),
		SubIntents: out.SubIntents,
		Confidence: model.Ptr(out.Confidence),
		TokensUsed: reply.TotalTokens,
	}
	if out.Reasoning != "" {
		u.AgentReasoning = model.Ptr(out.Reasoning)
	}
	applyEntities(u, orderID, email, amount, hasAmount)

	logx.Debug().
		Str("conversation_id", st.ConversationID).
		Str("intent", out.Intent).
		Float64("confidence", out.Confidence).
		Msg("classified intent")
	return u
}

// classifyFallback keeps the turn moving when classification degrades:
// general inquiry with low confidence and whatever the patterns found.
func classifyFallback(confidence float64, orderID, email string, amount float64, hasAmount bool, errMsg string) *model.StateUpdate {
	u := &model.StateUpdate{
		Intent:     model.Ptr(model.IntentGeneralInquiry),
		Confidence: model.Ptr(confidence),
	}
	if errMsg != "" {
		u.Error = model.Ptr(errMsg)
	}
	applyEntities(u, orderID, email, amount, hasAmount)
	return u
}

func applyEntities(u *model.StateUpdate, orderID, email string, amount float64, hasAmount bool) {
	if orderID != "" {
		u.OrderID = model.Ptr(orderID)
	}
	if email != "" {
		u.Email = model.Ptr(email)
	}
	if hasAmount {
		u.RefundAmount = model.Ptr(amount)
	}
}
