package workflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopmate-ai/server/internal/agent/llm"
	"github.com/shopmate-ai/server/internal/agent/model"
	"github.com/shopmate-ai/server/internal/agent/prompts"
	logx "github.com/shopmate-ai/server/pkg/logger"
)

// handoffMessage replaces whatever the specialist drafted once a turn
// escalates. The customer sees one consistent handoff, never a half-answer.
const handoffMessage = "I understand you'd like to speak with a member of our team. " +
	"I'm connecting you with someone who can help right away. Please hold for just a moment."

// humanKeywords are explicit requests for a person. Matching any of them
// escalates without consulting the model.
var humanKeywords = []string{
	"speak to human", "talk to human", "human agent", "real person",
	"speak to someone", "talk to someone", "manager", "supervisor",
	"representative", "not a bot", "stop bot", "no bot",
}

// legalKeywords escalate at high priority.
var legalKeywords = []string{"lawyer", "sue", "legal", "attorney", "police", "fraud"}

type escalationJudgment struct {
	ShouldEscalate  bool   `json:"should_escalate"`
	Reason          string `json:"reason"`
	Priority        string `json:"priority"`
	ContextForAgent string `json:"context_for_agent"`
}

// checkEscalation runs after every drafted response. Tier 1 is a set of hard
// rules that always fire; Tier 2 asks the analysis model about softer signals
// and fails open, because a wrong non-escalation costs less than sending a
// healthy turn to the human queue on a transient model error.
func (e *Engine) checkEscalation(ctx context.Context, st *model.ConversationState) *model.StateUpdate {
	if st.RequiresEscalation {
		reason := st.EscalationReason
		if reason == "" {
			reason = "Escalation requested during handling"
		}
		return escalationUpdate(reason, st.EscalationPriority)
	}

	if reason, priority, ok := e.tier1Escalation(st); ok {
		logx.Info().
			Str("conversation_id", st.ConversationID).
			Str("reason", reason).
			Msg("rule-based escalation triggered")
		return escalationUpdate(reason, priority)
	}

	judgment := e.tier2Escalation(ctx, st)
	if judgment == nil || !judgment.ShouldEscalate {
		return nil
	}

	reason := judgment.Reason
	if reason == "" {
		reason = "Escalation recommended by conversation review"
	}
	logx.Info().
		Str("conversation_id", st.ConversationID).
		Str("reason", reason).
		Msg("model-based escalation triggered")
	u := escalationUpdate(reason, judgment.Priority)
	if judgment.ContextForAgent != "" {
		u.EscalationContext = model.Ptr(judgment.ContextForAgent)
	}
	return u
}

// tier1Escalation applies the hard rules, first match wins.
func (e *Engine) tier1Escalation(st *model.ConversationState) (reason, priority string, ok bool) {
	message := strings.ToLower(st.CurrentMessage)

	for _, kw := range humanKeywords {
		if strings.Contains(message, kw) {
			return "Customer explicitly requested a human agent", "high", true
		}
	}
	if st.Sentiment == model.SentimentFrustrated &&
		st.SentimentIntensity >= e.deps.Policy.EscalateFrustratedIntensity {
		return "Customer is highly frustrated", "high", true
	}
	if st.Intent == model.IntentComplaint {
		return "Customer filed a complaint", "high", true
	}
	if st.Confidence < e.deps.Policy.EscalateMinConfidence {
		return "Low confidence in intent classification", "high", true
	}
	for _, kw := range legalKeywords {
		if strings.Contains(message, kw) {
			return "Customer mentioned legal action or fraud", "high", true
		}
	}
	return "", "", false
}

// tier2Escalation consults the analysis model. Any failure means no
// escalation.
func (e *Engine) tier2Escalation(ctx context.Context, st *model.ConversationState) *escalationJudgment {
	prompt, err := prompts.Escalation(ctx, prompts.EscalationParams{
		Intent:              st.Intent,
		Sentiment:           st.Sentiment,
		SentimentIntensity:  strconv.FormatFloat(st.SentimentIntensity, 'f', -1, 64),
		ResolutionAttempted: st.AgentReasoning,
		ActionsTaken:        summarizeActions(st.ActionsTaken),
		Confidence:          strconv.FormatFloat(st.Confidence, 'f', -1, 64),
		HighValueThreshold:  fmt.Sprintf("%.2f", e.deps.Policy.HighValueOrderThreshold),
		CustomerMessage:     st.CurrentMessage,
	})
	if err != nil {
		logx.Error().Err(err).Str("conversation_id", st.ConversationID).Msg("escalation prompt render failed")
		return nil
	}

	reply, err := e.deps.Models.Analysis.Generate(ctx, prompt)
	if err != nil {
		logx.Error().Err(err).Str("conversation_id", st.ConversationID).Msg("escalation check failed")
		return nil
	}

	var out escalationJudgment
	if err := llm.DecodeJSON(reply.Content, &out); err != nil {
		logx.Warn().Str("conversation_id", st.ConversationID).Msg("escalation judgment unparseable")
		return nil
	}
	return &out
}

func escalationUpdate(reason, priority string) *model.StateUpdate {
	u := &model.StateUpdate{
		RequiresEscalation: model.Ptr(true),
		EscalationReason:   model.Ptr(reason),
		FinalResponse:      model.Ptr(handoffMessage),
	}
	if priority != "" {
		u.EscalationPriority = model.Ptr(priority)
	}
	return u
}

// handleEscalation records the handoff and notifies the human queue. Turns
// routed here directly (complaints, high frustration) arrive without a reason
// or a final response; both are filled in so the caller-facing invariants
// hold on every path.
func (e *Engine) handleEscalation(ctx context.Context, st *model.ConversationState) *model.StateUpdate {
	reason := st.EscalationReason
	if reason == "" {
		reason = "Complaint or high frustration routed directly to a human"
	}

	u := &model.StateUpdate{
		RequiresEscalation: model.Ptr(true),
		EscalationReason:   model.Ptr(reason),
		ActionsTaken: []model.ActionLog{{
			Type: "escalation_created",
			Data: map[string]any{
				"reason":   reason,
				"priority": st.EscalationPriority,
				"intent":   st.Intent,
			},
			Status:    "pending",
			Timestamp: time.Now().UTC(),
		}},
	}
	if st.FinalResponse == "" {
		u.FinalResponse = model.Ptr(handoffMessage)
	}

	agentContext := st.EscalationContext
	if agentContext == "" {
		agentContext = escalationContext(st)
	}
	if e.deps.Escalations != nil {
		e.deps.Escalations.Notify(ctx, st.ConversationID, reason, st.EscalationPriority, agentContext)
	}

	logx.Info().
		Str("conversation_id", st.ConversationID).
		Str("reason", reason).
		Str("priority", st.EscalationPriority).
		Msg("escalated to human agent")
	return u
}

// escalationContext summarizes the turn for the human picking it up.
func escalationContext(st *model.ConversationState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Intent: %s (confidence %.2f)\n", st.Intent, st.Confidence)
	fmt.Fprintf(&b, "Sentiment: %s (intensity %.1f)\n", st.Sentiment, st.SentimentIntensity)
	if st.OrderData != nil {
		fmt.Fprintf(&b, "Order: #%s (%s, $%.2f)\n", st.OrderData.OrderNumber, st.OrderData.Status, st.OrderData.TotalPrice)
	}
	if len(st.ActionsTaken) > 0 {
		fmt.Fprintf(&b, "Actions taken: %s\n", summarizeActions(st.ActionsTaken))
	}
	fmt.Fprintf(&b, "Last message: %s", st.CurrentMessage)
	return b.String()
}

func summarizeActions(actions []model.ActionLog) string {
	if len(actions) == 0 {
		return "none"
	}
	types := make([]string, 0, len(actions))
	for _, a := range actions {
		types = append(types, a.Type)
	}
	return strings.Join(types, ", ")
}
