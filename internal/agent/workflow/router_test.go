package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shopmate-ai/server/internal/agent/model"
)

func TestRoute(t *testing.T) {
	policy := testPolicy()

	tests := []struct {
		name       string
		intent     string
		sentiment  string
		intensity  float64
		confidence float64
		want       RouteDecision
	}{
		{"order status", model.IntentOrderStatus, model.SentimentNeutral, 3, 0.9, RouteWISMO},
		{"return request", model.IntentReturnRequest, model.SentimentNeutral, 3, 0.9, RouteReturns},
		{"refund request", model.IntentRefundRequest, model.SentimentNeutral, 3, 0.9, RouteRefunds},
		{"product question", model.IntentProductQuestion, model.SentimentPositive, 2, 0.8, RouteGeneral},
		{"complaint always escalates", model.IntentComplaint, model.SentimentPositive, 1, 0.99, RouteEscalation},
		{"frustrated at threshold", model.IntentOrderStatus, model.SentimentFrustrated, 4, 0.9, RouteEscalation},
		{"frustrated above threshold", model.IntentRefundRequest, model.SentimentFrustrated, 4.5, 0.9, RouteEscalation},
		{"frustrated below threshold", model.IntentOrderStatus, model.SentimentFrustrated, 3.5, 0.9, RouteWISMO},
		{"negative is not frustrated", model.IntentOrderStatus, model.SentimentNegative, 5, 0.9, RouteWISMO},
		{"low confidence", model.IntentRefundRequest, model.SentimentNeutral, 3, 0.4, RouteGeneral},
		{"confidence at threshold", model.IntentOrderStatus, model.SentimentNeutral, 3, 0.5, RouteWISMO},
		{"unknown intent", "gibberish", model.SentimentNeutral, 3, 0.9, RouteGeneral},
		{"empty intent", "", model.SentimentNeutral, 3, 0.9, RouteGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Route(tt.intent, tt.sentiment, tt.intensity, tt.confidence, policy)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRouteIsDeterministic(t *testing.T) {
	policy := testPolicy()
	first := Route(model.IntentComplaint, model.SentimentFrustrated, 4.5, 0.7, policy)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Route(model.IntentComplaint, model.SentimentFrustrated, 4.5, 0.7, policy))
	}
}
