package workflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopmate-ai/server/internal/agent/model"
	"github.com/shopmate-ai/server/internal/agent/prompts"
	logx "github.com/shopmate-ai/server/pkg/logger"
)

const agentWISMO = "wismo"

// friendlyStatus maps the derived order status to customer-facing wording.
var friendlyStatus = map[string]string{
	model.OrderStatusPendingPayment:   "awaiting payment confirmation",
	model.OrderStatusProcessing:       "being prepared for shipment",
	model.OrderStatusShipped:          "on its way to you",
	model.OrderStatusPartiallyShipped: "partially shipped",
	model.OrderStatusDelivered:        "delivered",
	model.OrderStatusCancelled:        "cancelled",
	model.OrderStatusUnknown:          "being looked into",
}

// handleWISMO answers "where is my order" questions from the retrieved order
// record. With no order on hand it asks for an order number and stops; that
// branch never escalates and calls no collaborator.
func (e *Engine) handleWISMO(ctx context.Context, st *model.ConversationState) *model.StateUpdate {
	if st.OrderData == nil {
		if st.OrderID != "" {
			return &model.StateUpdate{
				CurrentAgent: model.Ptr(agentWISMO),
				ResponseDraft: model.Ptr(fmt.Sprintf(
					"I couldn't find an order matching #%s. Could you double-check the "+
						"order number from your confirmation email? I'm happy to look again.",
					st.OrderID)),
				AgentReasoning: model.Ptr(fmt.Sprintf("Order #%s not found, asked customer to verify", st.OrderID)),
			}
		}
		return &model.StateUpdate{
			CurrentAgent: model.Ptr(agentWISMO),
			ResponseDraft: model.Ptr("I'd be happy to help you track your order! " +
				"Could you share your order number? It usually looks like #12345 and " +
				"can be found in your confirmation email."),
			AgentReasoning: model.Ptr("No order data available, asked customer for order number"),
		}
	}

	order := st.OrderData
	status := friendlyStatus[order.Status]
	if status == "" {
		status = friendlyStatus[model.OrderStatusUnknown]
	}

	prompt, err := prompts.WISMO(ctx, prompts.WISMOParams{
		OrderNumber:        order.OrderNumber,
		Status:             status,
		FulfillmentStatus:  order.FulfillmentStatus,
		Items:              summarizeItems(order.LineItems, 3),
		TrackingNumber:     first(order.TrackingNumbers),
		Carrier:            order.Carrier,
		TrackingURL:        first(order.TrackingURLs),
		EstimatedDelivery:  estimateDelivery(order.Status),
		ShippedDate:        shippedDate(order.Status),
		CustomerMessage:    st.CurrentMessage,
		Sentiment:          st.Sentiment,
		SentimentIntensity: strconv.FormatFloat(st.SentimentIntensity, 'f', -1, 64),
		RecommendedTone:    st.RecommendedTone,
	})
	if err == nil {
		reply, genErr := e.deps.Models.Responder.Generate(ctx, prompt)
		if genErr == nil && reply.Content != "" {
			return &model.StateUpdate{
				CurrentAgent:   model.Ptr(agentWISMO),
				ResponseDraft:  model.Ptr(reply.Content),
				AgentReasoning: model.Ptr(fmt.Sprintf("Provided status for order #%s: %s", order.OrderNumber, order.Status)),
				TokensUsed:     reply.TotalTokens,
			}
		}
		err = genErr
	}

	logx.Error().Err(err).Str("order_number", order.OrderNumber).Msg("order status draft failed, using template")
	return &model.StateUpdate{
		CurrentAgent:   model.Ptr(agentWISMO),
		ResponseDraft:  model.Ptr(wismoTemplate(st, status)),
		AgentReasoning: model.Ptr(fmt.Sprintf("Provided templated status for order #%s", order.OrderNumber)),
	}
}

// wismoTemplate is the deterministic fallback when the responder model is
// unavailable, keyed by derived status. Frustrated customers get an apology
// up front.
func wismoTemplate(st *model.ConversationState, status string) string {
	order := st.OrderData

	var b strings.Builder
	if st.Sentiment == model.SentimentFrustrated {
		b.WriteString("I'm sorry for any worry about your order. ")
	}

	switch order.Status {
	case model.OrderStatusDelivered:
		fmt.Fprintf(&b, "Your order #%s was delivered", order.OrderNumber)
		if tn := first(order.TrackingNumbers); tn != "" {
			fmt.Fprintf(&b, " (tracking %s)", tn)
		}
		b.WriteString(". If you haven't received it, please check with neighbors or " +
			"your building's package area, and let me know if it still hasn't turned up.")
	case model.OrderStatusShipped:
		fmt.Fprintf(&b, "Your order #%s is on its way to you.", order.OrderNumber)
		if tn := first(order.TrackingNumbers); tn != "" {
			fmt.Fprintf(&b, " You can track it with %s", tn)
			if order.Carrier != "" {
				fmt.Fprintf(&b, " via %s", order.Carrier)
			}
			b.WriteString(".")
		}
	case model.OrderStatusProcessing:
		fmt.Fprintf(&b, "Your order #%s is being prepared for shipment. "+
			"We'll email you tracking information as soon as it ships.", order.OrderNumber)
	default:
		fmt.Fprintf(&b, "Your order #%s is currently %s. "+
			"Let me know if you'd like me to look into anything else about it.",
			order.OrderNumber, status)
	}
	return b.String()
}

// summarizeItems lists up to max line items, then a remainder count.
func summarizeItems(items []model.LineItem, max int) string {
	if len(items) == 0 {
		return "your items"
	}

	var parts []string
	for i, item := range items {
		if i == max {
			parts = append(parts, fmt.Sprintf("and %d more item(s)", len(items)-max))
			break
		}
		parts = append(parts, fmt.Sprintf("%dx %s", item.Quantity, item.Title))
	}
	return strings.Join(parts, ", ")
}

func estimateDelivery(status string) string {
	switch status {
	case model.OrderStatusDelivered:
		return "Already delivered"
	case model.OrderStatusShipped:
		return time.Now().AddDate(0, 0, 3).Format("Monday, January 2")
	default:
		return "We'll send tracking info once your order ships"
	}
}

func shippedDate(status string) string {
	if status == model.OrderStatusShipped || status == model.OrderStatusDelivered {
		return "recently"
	}
	return "Not yet shipped"
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
