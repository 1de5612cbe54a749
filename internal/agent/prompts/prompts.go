// Package prompts renders the embedded prompt templates for each workflow
// stage. Templates use {token} placeholders replaced literally so the JSON
// response-format braces inside them survive untouched.
package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/classify_prompt.txt
var classifyPrompt string

//go:embed template/sentiment_prompt.txt
var sentimentPrompt string

//go:embed template/wismo_prompt.txt
var wismoPrompt string

//go:embed template/return_eligibility_prompt.txt
var returnEligibilityPrompt string

//go:embed template/refund_decision_prompt.txt
var refundDecisionPrompt string

//go:embed template/escalation_prompt.txt
var escalationPrompt string

//go:embed template/general_prompt.txt
var generalPrompt string

// render replaces {token} pairs in the template and pushes the result through
// the Eino prompt component so prompt callbacks fire.
func render(ctx context.Context, template string, pairs ...string) (string, error) {
	content := strings.NewReplacer(pairs...).Replace(template)

	tpl := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("system_messages", false),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"system_messages": []*schema.Message{schema.SystemMessage(content)},
	})
	if err != nil {
		return "", fmt.Errorf("prompt callbacks: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("prompt callbacks: empty result")
	}
	return msgs[0].Content, nil
}

// Classify renders the intent-classification prompt.
func Classify(ctx context.Context, message, history string) (string, error) {
	return render(ctx, classifyPrompt,
		"{message}", message,
		"{history}", history,
	)
}

// Sentiment renders the sentiment-analysis prompt.
func Sentiment(ctx context.Context, message, history string) (string, error) {
	return render(ctx, sentimentPrompt,
		"{message}", message,
		"{history}", history,
	)
}

// WISMOParams carries the order facts for the order-status response prompt.
type WISMOParams struct {
	OrderNumber        string
	Status             string
	FulfillmentStatus  string
	Items              string
	TrackingNumber     string
	Carrier            string
	TrackingURL        string
	EstimatedDelivery  string
	ShippedDate        string
	CustomerMessage    string
	Sentiment          string
	SentimentIntensity string
	RecommendedTone    string
}

// WISMO renders the order-status response prompt.
func WISMO(ctx context.Context, p WISMOParams) (string, error) {
	return render(ctx, wismoPrompt,
		"{order_number}", p.OrderNumber,
		"{status}", p.Status,
		"{fulfillment_status}", p.FulfillmentStatus,
		"{items}", p.Items,
		"{tracking_number}", p.TrackingNumber,
		"{carrier}", p.Carrier,
		"{tracking_url}", p.TrackingURL,
		"{estimated_delivery}", p.EstimatedDelivery,
		"{shipped_date}", p.ShippedDate,
		"{customer_message}", p.CustomerMessage,
		"{sentiment}", p.Sentiment,
		"{sentiment_intensity}", p.SentimentIntensity,
		"{recommended_tone}", p.RecommendedTone,
	)
}

// ReturnEligibilityParams carries the facts for the return eligibility prompt.
type ReturnEligibilityParams struct {
	ReturnWindowDays  string
	OrderNumber       string
	OrderDate         string
	DeliveryDate      string
	DaysSinceDelivery string
	Items             string
	CustomerMessage   string
}

// ReturnEligibility renders the return-eligibility prompt.
func ReturnEligibility(ctx context.Context, p ReturnEligibilityParams) (string, error) {
	return render(ctx, returnEligibilityPrompt,
		"{return_window_days}", p.ReturnWindowDays,
		"{order_number}", p.OrderNumber,
		"{order_date}", p.OrderDate,
		"{delivery_date}", p.DeliveryDate,
		"{days_since_delivery}", p.DaysSinceDelivery,
		"{items}", p.Items,
		"{customer_message}", p.CustomerMessage,
	)
}

// RefundDecisionParams carries the facts for the refund decision prompt.
type RefundDecisionParams struct {
	AutoRefundLimit        string
	ReturnWindowDays       string
	RequiresReturn         string
	OrderNumber            string
	OrderTotal             string
	RefundAmount           string
	OrderDate              string
	PreviousRefunds        string
	CustomerMessage        string
	RefundReason           string
	TotalOrders            string
	TotalSpent             string
	PreviousRefundRequests string
}

// RefundDecision renders the refund decision prompt.
func RefundDecision(ctx context.Context, p RefundDecisionParams) (string, error) {
	return render(ctx, refundDecisionPrompt,
		"{auto_refund_limit}", p.AutoRefundLimit,
		"{return_window_days}", p.ReturnWindowDays,
		"{requires_return}", p.RequiresReturn,
		"{order_number}", p.OrderNumber,
		"{order_total}", p.OrderTotal,
		"{refund_amount}", p.RefundAmount,
		"{order_date}", p.OrderDate,
		"{previous_refunds}", p.PreviousRefunds,
		"{customer_message}", p.CustomerMessage,
		"{refund_reason}", p.RefundReason,
		"{total_orders}", p.TotalOrders,
		"{total_spent}", p.TotalSpent,
		"{previous_refund_requests}", p.PreviousRefundRequests,
	)
}

// EscalationParams carries the conversation summary for the Tier-2 check.
type EscalationParams struct {
	Intent              string
	Sentiment           string
	SentimentIntensity  string
	ResolutionAttempted string
	ActionsTaken        string
	Confidence          string
	HighValueThreshold  string
	CustomerMessage     string
}

// Escalation renders the escalation decision prompt.
func Escalation(ctx context.Context, p EscalationParams) (string, error) {
	return render(ctx, escalationPrompt,
		"{intent}", p.Intent,
		"{sentiment}", p.Sentiment,
		"{sentiment_intensity}", p.SentimentIntensity,
		"{resolution_attempted}", p.ResolutionAttempted,
		"{actions_taken}", p.ActionsTaken,
		"{confidence}", p.Confidence,
		"{high_value_threshold}", p.HighValueThreshold,
		"{customer_message}", p.CustomerMessage,
	)
}

// GeneralParams carries the context for the fallback response prompt.
type GeneralParams struct {
	CustomerMessage     string
	Intent              string
	Sentiment           string
	RecommendedTone     string
	ConversationHistory string
	Context             string
}

// General renders the general-inquiry response prompt.
func General(ctx context.Context, p GeneralParams) (string, error) {
	return render(ctx, generalPrompt,
		"{customer_message}", p.CustomerMessage,
		"{intent}", p.Intent,
		"{sentiment}", p.Sentiment,
		"{recommended_tone}", p.RecommendedTone,
		"{conversation_history}", p.ConversationHistory,
		"{context}", p.Context,
	)
}
