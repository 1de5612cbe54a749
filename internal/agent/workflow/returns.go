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
	"github.com/shopmate-ai/server/internal/integrations"
	logx "github.com/shopmate-ai/server/pkg/logger"
)

const agentReturns = "returns"

type eligibilityResult struct {
	Eligible          bool     `json:"eligible"`
	Reason            string   `json:"reason"`
	ItemsEligible     []string `json:"items_eligible"`
	ItemsIneligible   []string `json:"items_ineligible"`
	RecommendedAction string   `json:"recommended_action"`
	Notes             string   `json:"notes"`
}

// handleReturns judges return eligibility and, for eligible returns, creates
// a prepaid label. Delivery date is unknown to the commerce record, so it is
// approximated as five days after the order date, floored at zero.
func (e *Engine) handleReturns(ctx context.Context, st *model.ConversationState) *model.StateUpdate {
	if st.OrderData == nil {
		if st.OrderID != "" {
			return &model.StateUpdate{
				CurrentAgent: model.Ptr(agentReturns),
				ResponseDraft: model.Ptr(fmt.Sprintf(
					"I'd like to help with your return, but I couldn't find an order matching #%s. "+
						"Could you double-check the order number from your confirmation email?",
					st.OrderID)),
				AgentReasoning: model.Ptr(fmt.Sprintf("Order #%s not found, asked customer to verify", st.OrderID)),
			}
		}
		return &model.StateUpdate{
			CurrentAgent: model.Ptr(agentReturns),
			ResponseDraft: model.Ptr("I can help you start a return! " +
				"Could you share your order number so I can look up the details?"),
			AgentReasoning: model.Ptr("No order data available, asked customer for order number"),
		}
	}

	order := st.OrderData
	daysSinceDelivery := daysSinceDelivery(order.CreatedAt)
	decision := e.judgeEligibility(ctx, st, daysSinceDelivery)

	if decision.out.Eligible {
		return e.approveReturn(ctx, st, decision)
	}

	u := &model.StateUpdate{
		CurrentAgent: model.Ptr(agentReturns),
		ResponseDraft: model.Ptr(fmt.Sprintf(
			"I've looked into a return for order #%s, but it isn't eligible: %s. "+
				"Here's what I can offer instead: an exchange for a different size or item, "+
				"store credit toward a future purchase, or I can connect you with our support "+
				"team if you'd like them to take a closer look.",
			order.OrderNumber, decision.out.Reason)),
		AgentReasoning: model.Ptr("Return ineligible: " + decision.out.Reason),
		TokensUsed:     decision.tokens,
	}
	if decision.out.RecommendedAction == "escalate" {
		u.RequiresEscalation = model.Ptr(true)
		u.EscalationReason = model.Ptr("Return eligibility needs human review: " + decision.out.Reason)
	}
	return u
}

type eligibilityDecision struct {
	out    eligibilityResult
	tokens int
}

// judgeEligibility asks the analysis model, falling back to a plain window
// check when the model fails or returns garbage.
func (e *Engine) judgeEligibility(ctx context.Context, st *model.ConversationState, daysSinceDelivery int) eligibilityDecision {
	order := st.OrderData
	window := e.deps.Policy.ReturnWindowDays

	itemTitles := make([]string, 0, len(order.LineItems))
	for _, item := range order.LineItems {
		itemTitles = append(itemTitles, item.Title)
	}

	prompt, err := prompts.ReturnEligibility(ctx, prompts.ReturnEligibilityParams{
		ReturnWindowDays:  strconv.Itoa(window),
		OrderNumber:       order.OrderNumber,
		OrderDate:         order.CreatedAt.Format("2006-01-02"),
		DeliveryDate:      order.CreatedAt.AddDate(0, 0, 5).Format("2006-01-02"),
		DaysSinceDelivery: strconv.Itoa(daysSinceDelivery),
		Items:             strings.Join(itemTitles, ", "),
		CustomerMessage:   st.CurrentMessage,
	})
	if err == nil {
		reply, genErr := e.deps.Models.Analysis.Generate(ctx, prompt)
		if genErr == nil {
			var out eligibilityResult
			if decErr := llm.DecodeJSON(reply.Content, &out); decErr == nil && out.Reason != "" {
				return eligibilityDecision{out: out, tokens: reply.TotalTokens}
			}
			logx.Warn().Str("order_number", order.OrderNumber).Msg("eligibility output unparseable, using window check")
			return eligibilityDecision{out: windowFallback(daysSinceDelivery, window, itemTitles), tokens: reply.TotalTokens}
		}
		err = genErr
	}

	logx.Error().Err(err).Str("order_number", order.OrderNumber).Msg("eligibility judgment failed, using window check")
	return eligibilityDecision{out: windowFallback(daysSinceDelivery, window, itemTitles)}
}

func windowFallback(daysSinceDelivery, window int, items []string) eligibilityResult {
	if daysSinceDelivery <= window {
		return eligibilityResult{
			Eligible:      true,
			Reason:        fmt.Sprintf("Within the %d-day return window", window),
			ItemsEligible: items,
		}
	}
	return eligibilityResult{
		Reason:            fmt.Sprintf("Outside the %d-day return window", window),
		ItemsIneligible:   items,
		RecommendedAction: "escalate",
	}
}

// approveReturn creates the label. A shipping failure keeps the approval but
// promises the label by email instead of failing the return.
func (e *Engine) approveReturn(ctx context.Context, st *model.ConversationState, decision eligibilityDecision) *model.StateUpdate {
	order := st.OrderData

	items := decision.out.ItemsEligible
	if len(items) == 0 {
		for _, item := range order.LineItems {
			items = append(items, item.Title)
		}
	}

	var label *integrations.ReturnLabel
	var err error
	if e.deps.Shipping != nil {
		label, err = e.deps.Shipping.CreateReturnLabel(ctx, integrations.ReturnLabelRequest{
			OrderNumber: order.OrderNumber,
			Email:       order.Email,
			Items:       items,
		})
	}

	if e.deps.Shipping == nil || err != nil {
		if err != nil {
			logx.Error().Err(err).Str("order_number", order.OrderNumber).Msg("return label creation failed")
		}
		return &model.StateUpdate{
			CurrentAgent: model.Ptr(agentReturns),
			ResponseDraft: model.Ptr(fmt.Sprintf(
				"Good news! Your return for order #%s is approved. "+
					"We're preparing your prepaid return label now and will email it to you within 24 hours.",
				order.OrderNumber)),
			AgentReasoning: model.Ptr("Return approved, label delivery deferred"),
			TokensUsed:     decision.tokens,
		}
	}

	return &model.StateUpdate{
		CurrentAgent: model.Ptr(agentReturns),
		ResponseDraft: model.Ptr(fmt.Sprintf(
			"Good news! Your return for order #%s is approved for: %s. "+
				"I've created a prepaid return label for you: %s. "+
				"Drop the package off with %s and we'll process your return as soon as it arrives. "+
				"The return tracking number is %s.",
			order.OrderNumber, summarizeTitles(items, 3), label.LabelURL, label.Carrier, label.TrackingNumber)),
		AgentReasoning: model.Ptr("Return approved, label generated"),
		ActionsTaken: []model.ActionLog{{
			Type: "return_label_generated",
			Data: map[string]any{
				"order_number":    order.OrderNumber,
				"tracking_number": label.TrackingNumber,
				"label_url":       label.LabelURL,
				"carrier":         label.Carrier,
			},
			Status:    "completed",
			Timestamp: time.Now().UTC(),
		}},
		TokensUsed: decision.tokens,
	}
}

// daysSinceDelivery approximates delivery as order date plus five days.
func daysSinceDelivery(orderedAt time.Time) int {
	if orderedAt.IsZero() {
		return 0
	}
	days := int(time.Since(orderedAt).Hours()/24) - 5
	if days < 0 {
		return 0
	}
	return days
}

func summarizeTitles(titles []string, max int) string {
	if len(titles) <= max {
		return strings.Join(titles, ", ")
	}
	return fmt.Sprintf("%s and %d more item(s)", strings.Join(titles[:max], ", "), len(titles)-max)
}
