package workflow

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopmate-ai/server/internal/agent/llm"
	"github.com/shopmate-ai/server/internal/agent/model"
	"github.com/shopmate-ai/server/internal/agent/prompts"
	logx "github.com/shopmate-ai/server/pkg/logger"
)

const agentRefunds = "refunds"

type refundDecisionResult struct {
	AutoApprove      bool    `json:"auto_approve"`
	Amount           float64 `json:"amount"`
	Reason           string  `json:"reason"`
	RequiresReturn   bool    `json:"requires_return"`
	EscalationNeeded bool    `json:"escalation_needed"`
	EscalationReason string  `json:"escalation_reason"`
}

// handleRefunds decides a refund request and executes auto-approved refunds.
// The analysis model decides inside policy bounds; when it is unavailable the
// auto-approval limit decides alone, and anything above it goes to a human.
func (e *Engine) handleRefunds(ctx context.Context, st *model.ConversationState) *model.StateUpdate {
	if st.OrderData == nil {
		if st.OrderID != "" {
			return &model.StateUpdate{
				CurrentAgent: model.Ptr(agentRefunds),
				ResponseDraft: model.Ptr(fmt.Sprintf(
					"I'd like to help with your refund, but I couldn't find an order matching #%s. "+
						"Could you double-check the order number from your confirmation email?",
					st.OrderID)),
				AgentReasoning: model.Ptr(fmt.Sprintf("Order #%s not found, asked customer to verify", st.OrderID)),
			}
		}
		return &model.StateUpdate{
			CurrentAgent: model.Ptr(agentRefunds),
			ResponseDraft: model.Ptr("I can help with a refund! " +
				"Could you share your order number so I can pull up the details?"),
			AgentReasoning: model.Ptr("No order data available, asked customer for order number"),
		}
	}

	order := st.OrderData
	amount := st.RefundAmount
	if amount <= 0 {
		amount = order.TotalPrice
	}

	decision, tokens := e.judgeRefund(ctx, st, amount)
	if decision.Amount > 0 {
		amount = decision.Amount
	}

	switch {
	case decision.EscalationNeeded:
		reason := decision.EscalationReason
		if reason == "" {
			reason = decision.Reason
		}
		return &model.StateUpdate{
			CurrentAgent: model.Ptr(agentRefunds),
			ResponseDraft: model.Ptr(fmt.Sprintf(
				"Your refund request for order #%s needs a quick review by our team. "+
					"I'm connecting you with a team member who can take care of it.",
				order.OrderNumber)),
			AgentReasoning:     model.Ptr("Refund referred for review: " + reason),
			RequiresEscalation: model.Ptr(true),
			EscalationReason:   model.Ptr("Refund requires review: " + reason),
			TokensUsed:         tokens,
		}

	case decision.AutoApprove:
		u := e.executeRefund(ctx, st, amount, decision.Reason, decision.RequiresReturn)
		u.TokensUsed += tokens
		return u

	default:
		return &model.StateUpdate{
			CurrentAgent: model.Ptr(agentRefunds),
			ResponseDraft: model.Ptr(fmt.Sprintf(
				"I've reviewed your refund request for order #%s, and I'm unable to approve it: %s. "+
					"An exchange or store credit may still be possible, and I'm happy to look into "+
					"either, or to connect you with our support team.",
				order.OrderNumber, decision.Reason)),
			AgentReasoning: model.Ptr("Refund denied: " + decision.Reason),
			TokensUsed:     tokens,
		}
	}
}

// judgeRefund consults the analysis model, falling back to the auto-approval
// limit when the model fails or returns garbage.
func (e *Engine) judgeRefund(ctx context.Context, st *model.ConversationState, amount float64) (refundDecisionResult, int) {
	order := st.OrderData
	limit := e.deps.Policy.AutoRefundLimit

	totalOrders, totalSpent := "unknown", "unknown"
	if st.CustomerData != nil {
		totalOrders = strconv.Itoa(st.CustomerData.TotalOrders)
		totalSpent = fmt.Sprintf("%.2f", st.CustomerData.TotalSpent)
	}

	prompt, err := prompts.RefundDecision(ctx, prompts.RefundDecisionParams{
		AutoRefundLimit:        fmt.Sprintf("%.2f", limit),
		ReturnWindowDays:       strconv.Itoa(e.deps.Policy.ReturnWindowDays),
		RequiresReturn:         strconv.FormatBool(amount > 20),
		OrderNumber:            order.OrderNumber,
		OrderTotal:             fmt.Sprintf("%.2f", order.TotalPrice),
		RefundAmount:           fmt.Sprintf("%.2f", amount),
		OrderDate:              order.CreatedAt.Format("2006-01-02"),
		PreviousRefunds:        "0",
		CustomerMessage:        st.CurrentMessage,
		RefundReason:           st.AgentReasoning,
		TotalOrders:            totalOrders,
		TotalSpent:             totalSpent,
		PreviousRefundRequests: "0",
	})
	if err == nil {
		reply, genErr := e.deps.Models.Analysis.Generate(ctx, prompt)
		if genErr == nil {
			var out refundDecisionResult
			if decErr := llm.DecodeJSON(reply.Content, &out); decErr == nil && out.Reason != "" {
				return out, reply.TotalTokens
			}
			logx.Warn().Str("order_number", order.OrderNumber).Msg("refund decision unparseable, using policy limit")
			return limitFallback(amount, limit), reply.TotalTokens
		}
		err = genErr
	}

	logx.Error().Err(err).Str("order_number", order.OrderNumber).Msg("refund judgment failed, using policy limit")
	return limitFallback(amount, limit), 0
}

// limitFallback never denies on its own: small amounts auto-approve, anything
// else goes to a human.
func limitFallback(amount, limit float64) refundDecisionResult {
	if amount <= limit {
		return refundDecisionResult{
			AutoApprove:    true,
			Reason:         fmt.Sprintf("Within the $%.2f auto-approval limit", limit),
			RequiresReturn: amount > 20,
		}
	}
	return refundDecisionResult{
		EscalationNeeded: true,
		Reason:           fmt.Sprintf("Amount $%.2f exceeds the $%.2f auto-approval limit", amount, limit),
		EscalationReason: fmt.Sprintf("Amount $%.2f exceeds the $%.2f auto-approval limit", amount, limit),
	}
}

// executeRefund runs the approved refund. A processing failure tells the
// customer the refund is approved and a person will finish it, without
// escalating; the decision already stands.
func (e *Engine) executeRefund(ctx context.Context, st *model.ConversationState, amount float64, reason string, requiresReturn bool) *model.StateUpdate {
	order := st.OrderData

	if e.deps.Refunds == nil {
		return &model.StateUpdate{
			CurrentAgent:   model.Ptr(agentRefunds),
			ResponseDraft:  model.Ptr(refundPendingText(order.OrderNumber)),
			AgentReasoning: model.Ptr("Refund approved but no processor configured"),
		}
	}

	result, err := e.deps.Refunds.ProcessRefund(ctx, order, amount, reason)
	if err != nil {
		logx.Error().Err(err).Str("order_number", order.OrderNumber).Msg("refund processing failed")
		return &model.StateUpdate{
			CurrentAgent:   model.Ptr(agentRefunds),
			ResponseDraft:  model.Ptr(refundPendingText(order.OrderNumber)),
			AgentReasoning: model.Ptr("Refund approved but processing failed, manual follow-up"),
		}
	}

	response := fmt.Sprintf(
		"Your refund of $%.2f for order #%s has been processed! "+
			"You should see it back on your original payment method within 3-5 business days.",
		result.Amount, order.OrderNumber)
	if requiresReturn {
		response += " Please return the item(s) using the prepaid label we'll email you."
	} else {
		response += " No need to return anything."
	}

	return &model.StateUpdate{
		CurrentAgent:   model.Ptr(agentRefunds),
		ResponseDraft:  model.Ptr(response),
		AgentReasoning: model.Ptr("Refund approved and processed: " + reason),
		ActionsTaken: []model.ActionLog{{
			Type: "refund_processed",
			Data: map[string]any{
				"order_number": order.OrderNumber,
				"refund_id":    result.RefundID,
				"amount":       result.Amount,
			},
			Status:    "completed",
			Timestamp: time.Now().UTC(),
		}},
	}
}

func refundPendingText(orderNumber string) string {
	return fmt.Sprintf(
		"I'm sorry for the extra step here: your refund for order #%s is approved, but I couldn't "+
			"finish the processing automatically. Our team will complete it manually within a few "+
			"hours and you'll receive a confirmation email.", orderNumber)
}
