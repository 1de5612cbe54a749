package workflow

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopmate-ai/server/internal/agent/conversations"
	"github.com/shopmate-ai/server/internal/agent/llm"
	"github.com/shopmate-ai/server/internal/agent/model"
	"github.com/shopmate-ai/server/internal/integrations"
)

// queueModel replays scripted replies in order and errors once exhausted.
type queueModel struct {
	replies []string
	calls   int
}

func (m *queueModel) Generate(_ context.Context, _ string) (*llm.Reply, error) {
	m.calls++
	if len(m.replies) == 0 {
		return nil, fmt.Errorf("no scripted reply")
	}
	content := m.replies[0]
	m.replies = m.replies[1:]
	return &llm.Reply{Content: content, TotalTokens: 10}, nil
}

type panicModel struct{}

func (panicModel) Generate(_ context.Context, _ string) (*llm.Reply, error) {
	panic("model handle used before initialization")
}

type fixedModel struct {
	content string
	calls   int
}

func (m *fixedModel) Generate(_ context.Context, _ string) (*llm.Reply, error) {
	m.calls++
	return &llm.Reply{Content: m.content, TotalTokens: 5}, nil
}

type stubCommerce struct {
	order         *integrations.Order
	customer      *integrations.Customer
	orderLookups  []string
	customerCalls int
}

func (s *stubCommerce) GetOrderByNumber(_ context.Context, orderNumber string) (*integrations.Order, error) {
	s.orderLookups = append(s.orderLookups, orderNumber)
	return s.order, nil
}

func (s *stubCommerce) GetCustomerByEmail(_ context.Context, _ string) (*integrations.Customer, error) {
	s.customerCalls++
	return s.customer, nil
}

type stubProvider struct {
	client integrations.CommerceClient
}

func (p stubProvider) Commerce(_ context.Context, _ string) (integrations.CommerceClient, error) {
	return p.client, nil
}

type stubRefunds struct {
	calls int
	err   error
}

func (s *stubRefunds) ProcessRefund(_ context.Context, _ *model.OrderData, amount float64, _ string) (*integrations.RefundResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &integrations.RefundResult{RefundID: "re_1", Amount: amount, Status: "success"}, nil
}

type stubShipping struct {
	calls int
}

func (s *stubShipping) CreateReturnLabel(_ context.Context, _ integrations.ReturnLabelRequest) (*integrations.ReturnLabel, error) {
	s.calls++
	return &integrations.ReturnLabel{TrackingNumber: "RTN123", LabelURL: "https://labels.example/1", Carrier: "USPS"}, nil
}

type stubSink struct {
	notifications int
	lastReason    string
	lastPriority  string
	lastContext   string
}

func (s *stubSink) Notify(_ context.Context, _, reason, priority, agentContext string) {
	s.notifications++
	s.lastReason = reason
	s.lastPriority = priority
	s.lastContext = agentContext
}

func testPolicy() model.PolicyConfig {
	return model.PolicyConfig{
		AutoRefundLimit:             50,
		ReturnWindowDays:            30,
		RouteMinConfidence:          0.5,
		RouteFrustratedIntensity:    4,
		EscalateFrustratedIntensity: 5,
		EscalateMinConfidence:       0.4,
		HighValueOrderThreshold:     200,
		KBRetrievalTopK:             5,
		KBSimilarityThreshold:       0.3,
	}
}

func testConversationConfig() model.ConversationConfig {
	return model.ConversationConfig{ClassifyMaxEntries: 6, SentimentMaxEntries: 4}
}

func newTestEngine(t *testing.T, deps Dependencies) *Engine {
	t.Helper()
	deps.Policy = testPolicy()
	deps.Conversation = testConversationConfig()
	e, err := NewEngine(deps)
	require.NoError(t, err)
	return e
}

func shippedOrder() *integrations.Order {
	return &integrations.Order{
		ID:                9001,
		OrderNumber:       1234,
		Email:             "jane@example.com",
		FulfillmentStatus: "fulfilled",
		FinancialStatus:   "paid",
		TotalPrice:        "89.50",
		Currency:          "USD",
		CreatedAt:         time.Now().AddDate(0, 0, -4),
		LineItems: []integrations.OrderLineItem{
			{Title: "Canvas Tote", Quantity: 1, Price: "89.50"},
		},
		Fulfillments: []integrations.Fulfillment{
			{ShipmentStatus: "in_transit", TrackingNumber: "1Z999", TrackingURL: "https://track.example/1Z999", TrackingCompany: "UPS"},
		},
	}
}

func TestOrderStatusTurn(t *testing.T) {
	commerce := &stubCommerce{order: shippedOrder()}
	sink := &stubSink{}
	responder := &fixedModel{content: "Great news! Your order #1234 is on its way with UPS, tracking 1Z999."}

	engine := newTestEngine(t, Dependencies{
		Models: &llm.Models{
			Analysis: &queueModel{replies: []string{
				`{"intent":"order_status","confidence":0.95,"entities":{"order_id":"1234"},"reasoning":"asks about shipment"}`,
				`{"sentiment":"neutral","intensity":2,"recommended_tone":"friendly"}`,
				`{"should_escalate":false}`,
			}},
			Responder: responder,
		},
		Commerce:    stubProvider{client: commerce},
		Escalations: sink,
	})

	agent := NewAgent(engine, conversations.NewMessagesManager(nil))
	result := agent.Run(context.Background(), "conv-1", "store-1", "Where is my order #1234?", nil)

	require.NotNil(t, result)
	assert.Equal(t, model.IntentOrderStatus, result.Intent)
	assert.False(t, result.RequiresEscalation)
	assert.Contains(t, result.Response, "1Z999")
	require.NotNil(t, result.OrderData)
	assert.Equal(t, model.OrderStatusShipped, result.OrderData.Status)
	assert.Equal(t, []string{"1234"}, commerce.orderLookups)
	assert.Equal(t, 1, responder.calls)
	assert.Zero(t, sink.notifications)
	assert.Positive(t, result.TokensUsed)
}

func TestHumanRequestEscalates(t *testing.T) {
	sink := &stubSink{}
	engine := newTestEngine(t, Dependencies{
		Models: &llm.Models{
			Analysis: &queueModel{replies: []string{
				`{"intent":"general_inquiry","confidence":0.9}`,
				`{"sentiment":"neutral","intensity":3,"recommended_tone":"professional"}`,
			}},
			Responder: &fixedModel{content: "Happy to help with anything you need!"},
		},
		Escalations: sink,
	})

	agent := NewAgent(engine, nil)
	result := agent.Run(context.Background(), "conv-2", "store-1", "I want to talk to a real person, not a bot", nil)

	assert.True(t, result.RequiresEscalation)
	assert.NotEmpty(t, result.EscalationReason)
	assert.Equal(t, handoffMessage, result.Response)
	assert.Equal(t, 1, sink.notifications)
	require.Len(t, result.ActionsTaken, 1)
	assert.Equal(t, "escalation_created", result.ActionsTaken[0].Type)
	assert.Equal(t, "pending", result.ActionsTaken[0].Status)
}

func TestLargeRefundEscalatesWhenModelUnavailable(t *testing.T) {
	commerce := &stubCommerce{order: shippedOrder()}
	refunds := &stubRefunds{}
	sink := &stubSink{}

	engine := newTestEngine(t, Dependencies{
		Models: &llm.Models{
			// Scripted replies cover classify and sentiment only; the refund
			// judgment call fails and falls back to the policy limit.
			Analysis: &queueModel{replies: []string{
				`{"intent":"refund_request","confidence":0.9,"entities":{"order_id":"1234","amount":150}}`,
				`{"sentiment":"neutral","intensity":3,"recommended_tone":"professional"}`,
			}},
			Responder: &fixedModel{content: "unused"},
		},
		Commerce:    stubProvider{client: commerce},
		Refunds:     refunds,
		Escalations: sink,
	})

	agent := NewAgent(engine, nil)
	result := agent.Run(context.Background(), "conv-3", "store-1", "I need a $150 refund for order #1234", nil)

	assert.True(t, result.RequiresEscalation)
	assert.Contains(t, result.EscalationReason, "auto-approval")
	assert.Equal(t, handoffMessage, result.Response)
	assert.Zero(t, refunds.calls)
	assert.Equal(t, 1, sink.notifications)
}

func TestSmallRefundAutoApproved(t *testing.T) {
	commerce := &stubCommerce{order: shippedOrder()}
	refunds := &stubRefunds{}

	engine := newTestEngine(t, Dependencies{
		Models: &llm.Models{
			Analysis: &queueModel{replies: []string{
				`{"intent":"refund_request","confidence":0.9,"entities":{"order_id":"1234","amount":25}}`,
				`{"sentiment":"neutral","intensity":2,"recommended_tone":"friendly"}`,
				`{"auto_approve":true,"amount":25,"reason":"Small amount within policy","requires_return":true}`,
				`{"should_escalate":false}`,
			}},
			Responder: &fixedModel{content: "unused"},
		},
		Commerce:    stubProvider{client: commerce},
		Refunds:     refunds,
		Escalations: &stubSink{},
	})

	agent := NewAgent(engine, nil)
	result := agent.Run(context.Background(), "conv-4", "store-1", "Please refund $25.00 for order #1234", nil)

	assert.False(t, result.RequiresEscalation)
	assert.Equal(t, 1, refunds.calls)
	require.Len(t, result.ActionsTaken, 1)
	assert.Equal(t, "refund_processed", result.ActionsTaken[0].Type)
	assert.Contains(t, result.Response, "$25.00")
}

func TestReturnWithinWindowGetsLabel(t *testing.T) {
	commerce := &stubCommerce{order: shippedOrder()}
	shipping := &stubShipping{}

	engine := newTestEngine(t, Dependencies{
		Models: &llm.Models{
			Analysis: &queueModel{replies: []string{
				`{"intent":"return_request","confidence":0.92,"entities":{"order_id":"1234"}}`,
				`{"sentiment":"neutral","intensity":2,"recommended_tone":"friendly"}`,
				`{"eligible":true,"reason":"Within the 30-day return window","items_eligible":["Canvas Tote"]}`,
				`{"should_escalate":false}`,
			}},
			Responder: &fixedModel{content: "unused"},
		},
		Commerce: stubProvider{client: commerce},
		Shipping: shipping,
	})

	agent := NewAgent(engine, nil)
	result := agent.Run(context.Background(), "conv-5", "store-1", "I want to return order #1234", nil)

	assert.False(t, result.RequiresEscalation)
	assert.Equal(t, 1, shipping.calls)
	require.Len(t, result.ActionsTaken, 1)
	assert.Equal(t, "return_label_generated", result.ActionsTaken[0].Type)
	assert.Contains(t, result.Response, "RTN123")
}

func TestDegradedResultOnPanic(t *testing.T) {
	engine := newTestEngine(t, Dependencies{
		Models: &llm.Models{Analysis: panicModel{}, Responder: panicModel{}},
	})

	agent := NewAgent(engine, nil)
	result := agent.Run(context.Background(), "conv-6", "store-1", "hello", nil)

	require.NotNil(t, result)
	assert.Equal(t, model.IntentError, result.Intent)
	assert.True(t, result.RequiresEscalation)
	assert.Contains(t, result.EscalationReason, "Agent error")
	assert.Equal(t, degradedResponse, result.Response)
	assert.NotEmpty(t, result.Error)
}

func TestNoOrderBranchesAskForOrderNumber(t *testing.T) {
	for _, tc := range []struct {
		name   string
		intent string
	}{
		{name: "wismo", intent: model.IntentOrderStatus},
		{name: "returns", intent: model.IntentReturnRequest},
		{name: "refunds", intent: model.IntentRefundRequest},
	} {
		t.Run(tc.name, func(t *testing.T) {
			refunds := &stubRefunds{}
			shipping := &stubShipping{}
			engine := newTestEngine(t, Dependencies{
				Models: &llm.Models{
					Analysis: &queueModel{replies: []string{
						fmt.Sprintf(`{"intent":%q,"confidence":0.9}`, tc.intent),
						`{"sentiment":"neutral","intensity":3,"recommended_tone":"professional"}`,
						`{"should_escalate":false}`,
					}},
					Responder: &fixedModel{content: "unused"},
				},
				Refunds:  refunds,
				Shipping: shipping,
			})

			agent := NewAgent(engine, nil)
			result := agent.Run(context.Background(), "conv-7", "store-1", "I need help with my order", nil)

			assert.False(t, result.RequiresEscalation)
			assert.Contains(t, result.Response, "order number")
			assert.Empty(t, result.ActionsTaken)
			assert.Zero(t, refunds.calls)
			assert.Zero(t, shipping.calls)
		})
	}
}

func TestUnknownOrderNumberAcknowledged(t *testing.T) {
	for _, tc := range []struct {
		name   string
		intent string
	}{
		{name: "returns", intent: model.IntentReturnRequest},
		{name: "refunds", intent: model.IntentRefundRequest},
	} {
		t.Run(tc.name, func(t *testing.T) {
			commerce := &stubCommerce{} // lookups return no order
			refunds := &stubRefunds{}
			shipping := &stubShipping{}
			engine := newTestEngine(t, Dependencies{
				Models: &llm.Models{
					Analysis: &queueModel{replies: []string{
						fmt.Sprintf(`{"intent":%q,"confidence":0.9,"entities":{"order_id":"9999"}}`, tc.intent),
						`{"sentiment":"neutral","intensity":3,"recommended_tone":"professional"}`,
						`{"should_escalate":false}`,
					}},
					Responder: &fixedModel{content: "unused"},
				},
				Commerce: stubProvider{client: commerce},
				Refunds:  refunds,
				Shipping: shipping,
			})

			agent := NewAgent(engine, nil)
			result := agent.Run(context.Background(), "conv-9", "store-1", "I need help with order #9999", nil)

			assert.False(t, result.RequiresEscalation)
			assert.Contains(t, result.Response, "#9999")
			assert.Contains(t, result.Response, "double-check")
			assert.Empty(t, result.ActionsTaken)
			assert.Zero(t, refunds.calls)
			assert.Zero(t, shipping.calls)
		})
	}
}

func TestIneligibleReturnOffersAlternatives(t *testing.T) {
	commerce := &stubCommerce{order: shippedOrder()}
	shipping := &stubShipping{}

	engine := newTestEngine(t, Dependencies{
		Models: &llm.Models{
			Analysis: &queueModel{replies: []string{
				`{"intent":"return_request","confidence":0.92,"entities":{"order_id":"1234"}}`,
				`{"sentiment":"neutral","intensity":2,"recommended_tone":"friendly"}`,
				`{"eligible":false,"reason":"Final sale item","items_ineligible":["Canvas Tote"],"recommended_action":"deny"}`,
				`{"should_escalate":false}`,
			}},
			Responder: &fixedModel{content: "unused"},
		},
		Commerce: stubProvider{client: commerce},
		Shipping: shipping,
	})

	agent := NewAgent(engine, nil)
	result := agent.Run(context.Background(), "conv-10", "store-1", "I want to return order #1234", nil)

	assert.False(t, result.RequiresEscalation)
	assert.Contains(t, result.Response, "Final sale item")
	assert.Contains(t, result.Response, "exchange")
	assert.Contains(t, result.Response, "store credit")
	assert.Zero(t, shipping.calls)
}

func TestEscalationAlwaysHasReason(t *testing.T) {
	engine := newTestEngine(t, Dependencies{
		Models: &llm.Models{
			// Direct escalation route: complaint skips the specialists.
			Analysis: &queueModel{replies: []string{
				`{"intent":"complaint","confidence":0.9}`,
				`{"sentiment":"frustrated","intensity":4,"recommended_tone":"empathetic"}`,
			}},
			Responder: &fixedModel{content: "unused"},
		},
	})

	agent := NewAgent(engine, nil)
	result := agent.Run(context.Background(), "conv-8", "store-1", "This is unacceptable, my package arrived broken", nil)

	assert.True(t, result.RequiresEscalation)
	assert.NotEmpty(t, result.EscalationReason)
	assert.NotEmpty(t, result.Response)
}
