package workflow

import (
	"github.com/shopmate-ai/server/internal/agent/model"
	logx "github.com/shopmate-ai/server/pkg/logger"
)

// RouteDecision names the specialist a turn is dispatched to.
type RouteDecision string

const (
	RouteWISMO      RouteDecision = "wismo"
	RouteReturns    RouteDecision = "returns"
	RouteRefunds    RouteDecision = "refunds"
	RouteGeneral    RouteDecision = "general"
	RouteEscalation RouteDecision = "escalation"
)

var intentRoutes = map[string]RouteDecision{
	model.IntentOrderStatus:      RouteWISMO,
	model.IntentReturnRequest:    RouteReturns,
	model.IntentRefundRequest:    RouteRefunds,
	model.IntentAddressChange:    RouteGeneral,
	model.IntentCancelOrder:      RouteGeneral,
	model.IntentProductQuestion:  RouteGeneral,
	model.IntentShippingQuestion: RouteGeneral,
	model.IntentComplaint:        RouteEscalation,
	model.IntentGeneralInquiry:   RouteGeneral,
	model.IntentOther:            RouteGeneral,
}

// Route selects the specialist for the classified turn. It is a pure
// function: identical inputs always produce the same decision.
//
// Priority order, first match wins: complaints and highly frustrated
// customers escalate directly; low confidence goes to the general handler;
// otherwise the intent table decides, defaulting to general.
func Route(intent, sentiment string, intensity, confidence float64, policy model.PolicyConfig) RouteDecision {
	if intent == model.IntentComplaint ||
		(sentiment == model.SentimentFrustrated && intensity >= policy.RouteFrustratedIntensity) {
		return RouteEscalation
	}

	if confidence < policy.RouteMinConfidence {
		return RouteGeneral
	}

	if d, ok := intentRoutes[intent]; ok {
		return d
	}
	return RouteGeneral
}

// logRoute records the routing decision for operators.
func logRoute(conversationID string, intent string, d RouteDecision) {
	logx.Debug().
		Str("conversation_id", conversationID).
		Str("intent", intent).
		Str("agent", string(d)).
		Msg("routed to specialist")
}
