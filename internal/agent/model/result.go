package model

// AgentResult is what a completed turn returns to the caller. Run never
// raises: internal failures surface here as a degraded result with
// Intent set to "error".
type AgentResult struct {
	Response           string      `json:"response"`
	Intent             string      `json:"intent"`
	Confidence         float64     `json:"confidence"`
	Sentiment          string      `json:"sentiment"`
	RequiresEscalation bool        `json:"requires_escalation"`
	EscalationReason   string      `json:"escalation_reason,omitempty"`
	ActionsTaken       []ActionLog `json:"actions_taken"`
	OrderData          *OrderData  `json:"order_data,omitempty"`
	AgentReasoning     string      `json:"agent_reasoning,omitempty"`
	TokensUsed         int         `json:"tokens_used"`
	Error              string      `json:"error,omitempty"`
}

// ResultFromState projects the final conversation state into the caller-facing
// result.
func ResultFromState(s *ConversationState) *AgentResult {
	return &AgentResult{
		Response:           s.FinalResponse,
		Intent:             s.Intent,
		Confidence:         s.Confidence,
		Sentiment:          s.Sentiment,
		RequiresEscalation: s.RequiresEscalation,
		EscalationReason:   s.EscalationReason,
		ActionsTaken:       s.ActionsTaken,
		OrderData:          s.OrderData,
		AgentReasoning:     s.AgentReasoning,
		TokensUsed:         s.TokensUsed,
		Error:              s.Error,
	}
}
