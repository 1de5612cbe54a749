package model

import (
	"time"

	"github.com/cloudwego/eino/schema"
)

// Intent labels produced by the classification stage. The classifier prompt
// constrains the reasoning model to this taxonomy; anything else routes to the
// general handler.
const (
	IntentOrderStatus      = "order_status"
	IntentReturnRequest    = "return_request"
	IntentRefundRequest    = "refund_request"
	IntentAddressChange    = "address_change"
	IntentCancelOrder      = "cancel_order"
	IntentProductQuestion  = "product_question"
	IntentShippingQuestion = "shipping_question"
	IntentComplaint        = "complaint"
	IntentGeneralInquiry   = "general_inquiry"
	IntentOther            = "other"
	IntentError            = "error"
)

// Sentiment categories.
const (
	SentimentPositive   = "positive"
	SentimentNeutral    = "neutral"
	SentimentNegative   = "negative"
	SentimentFrustrated = "frustrated"
)

// ConversationState is the single mutable aggregate threaded through a turn.
// A fresh state is built per incoming message; stages return StateUpdate
// values that are merged into it, they never touch the state directly.
type ConversationState struct {
	// Identity, immutable for the turn.
	ConversationID string
	StoreID        string

	// Turn input.
	CurrentMessage string
	Messages       []*schema.Message // prior history; appended to by the respond stage only

	// Classification.
	Intent     string
	SubIntents []string
	Confidence float64

	// Sentiment.
	Sentiment          string
	SentimentIntensity float64 // 1-5 scale
	RecommendedTone    string

	// Extracted entities.
	OrderID      string
	Email        string
	RefundAmount float64

	// Retrieved context.
	OrderData     *OrderData
	CustomerData  *CustomerData
	PolicyContext []string

	// Processing trace.
	CurrentAgent   string
	AgentReasoning string

	// Output accumulation.
	ResponseDraft string
	ActionsTaken  []ActionLog
	FinalResponse string

	// Escalation.
	RequiresEscalation bool
	EscalationReason   string
	EscalationPriority string
	EscalationContext  string // handoff briefing for the human agent

	// Metadata.
	StartedAt  time.Time
	TokensUsed int
	Error      string
}

// NewTurnState builds the initial state for one conversation turn.
func NewTurnState(conversationID, storeID, message string, history []*schema.Message) *ConversationState {
	return &ConversationState{
		ConversationID:     conversationID,
		StoreID:            storeID,
		CurrentMessage:     message,
		Messages:           history,
		Sentiment:          SentimentNeutral,
		SentimentIntensity: 3,
		RecommendedTone:    "professional",
		EscalationPriority: "medium",
		StartedAt:          time.Now().UTC(),
	}
}

// StateUpdate is the partial update a stage returns. Nil pointer fields leave
// the corresponding state field untouched; slice fields append; TokensUsed
// accumulates. This makes the merge contract statically checkable instead of
// relying on a dynamic field bag.
type StateUpdate struct {
	Intent     *string
	SubIntents []string
	Confidence *float64

	Sentiment          *string
	SentimentIntensity *float64
	RecommendedTone    *string

	OrderID      *string
	Email        *string
	RefundAmount *float64

	OrderData     *OrderData
	CustomerData  *CustomerData
	PolicyContext []string

	CurrentAgent   *string
	AgentReasoning *string

	ResponseDraft *string
	FinalResponse *string

	RequiresEscalation *bool
	EscalationReason   *string
	EscalationPriority *string
	EscalationContext  *string

	ActionsTaken []ActionLog
	Messages     []*schema.Message

	TokensUsed int
	Error      *string
}

// Apply merges a partial update into the state: field-wise overwrite when
// present, append for logs and history, accumulate for token usage.
func (s *ConversationState) Apply(u *StateUpdate) {
	if u == nil {
		return
	}
	if u.Intent != nil {
		s.Intent = *u.Intent
	}
	if u.SubIntents != nil {
		s.SubIntents = u.SubIntents
	}
	if u.Confidence != nil {
		s.Confidence = *u.Confidence
	}
	if u.Sentiment != nil {
		s.Sentiment = *u.Sentiment
	}
	if u.SentimentIntensity != nil {
		s.SentimentIntensity = *u.SentimentIntensity
	}
	if u.RecommendedTone != nil {
		s.RecommendedTone = *u.RecommendedTone
	}
	if u.OrderID != nil {
		s.OrderID = *u.OrderID
	}
	if u.Email != nil {
		s.Email = *u.Email
	}
	if u.RefundAmount != nil {
		s.RefundAmount = *u.RefundAmount
	}
	if u.OrderData != nil {
		s.OrderData = u.OrderData
	}
	if u.CustomerData != nil {
		s.CustomerData = u.CustomerData
	}
	if u.PolicyContext != nil {
		s.PolicyContext = u.PolicyContext
	}
	if u.CurrentAgent != nil {
		s.CurrentAgent = *u.CurrentAgent
	}
	if u.AgentReasoning != nil {
		s.AgentReasoning = *u.AgentReasoning
	}
	if u.ResponseDraft != nil {
		s.ResponseDraft = *u.ResponseDraft
	}
	if u.FinalResponse != nil {
		s.FinalResponse = *u.FinalResponse
	}
	if u.RequiresEscalation != nil {
		s.RequiresEscalation = *u.RequiresEscalation
	}
	if u.EscalationReason != nil {
		s.EscalationReason = *u.EscalationReason
	}
	if u.EscalationPriority != nil {
		s.EscalationPriority = *u.EscalationPriority
	}
	if u.EscalationContext != nil {
		s.EscalationContext = *u.EscalationContext
	}
	s.ActionsTaken = append(s.ActionsTaken, u.ActionsTaken...)
	s.Messages = append(s.Messages, u.Messages...)
	s.TokensUsed += u.TokensUsed
	if u.Error != nil {
		s.Error = *u.Error
	}
}

// Ptr returns a pointer to v. Keeps StateUpdate construction readable.
func Ptr[T any](v T) *T {
	return &v
}
