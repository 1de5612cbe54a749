package workflow

import (
	"context"
	"math/rand"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/shopmate-ai/server/internal/agent/model"
	logx "github.com/shopmate-ai/server/pkg/logger"
)

// empathyWords mark a draft that already acknowledges the customer's
// feelings; only the opening of the draft is checked.
var empathyWords = []string{
	"sorry", "apologize", "understand", "frustrat", "inconvenien", "appreciate your patience",
}

var empathyOpeners = []string{
	"I completely understand your frustration, and I'm here to help. ",
	"I'm so sorry for the trouble. ",
	"I sincerely apologize for the inconvenience. ",
}

// buildResponse finalizes the customer-facing text and appends the turn to
// the conversation history. This is the only stage that touches history.
func (e *Engine) buildResponse(ctx context.Context, st *model.ConversationState) *model.StateUpdate {
	response := st.ResponseDraft
	if response == "" {
		logx.Warn().
			Str("conversation_id", st.ConversationID).
			Str("agent", st.CurrentAgent).
			Msg("specialist produced no draft")
		response = "I'm here to help! Could you tell me a bit more about what you need?"
	}

	if st.Sentiment == model.SentimentFrustrated && !opensWithEmpathy(response) {
		response = empathyOpeners[rand.Intn(len(empathyOpeners))] + response
	}

	return &model.StateUpdate{
		FinalResponse: model.Ptr(response),
		Messages: []*schema.Message{
			{
				Role:    schema.User,
				Content: st.CurrentMessage,
				Extra:   map[string]any{"timestamp": st.StartedAt},
			},
			{
				Role:    schema.Assistant,
				Content: response,
				Extra: map[string]any{
					"timestamp": st.StartedAt,
					"intent":    st.Intent,
					"agent":     st.CurrentAgent,
				},
			},
		},
	}
}

// opensWithEmpathy checks the first 100 characters of the draft for an
// acknowledgment the customer will read first.
func opensWithEmpathy(response string) bool {
	opening := strings.ToLower(response)
	if len(opening) > 100 {
		opening = opening[:100]
	}
	for _, w := range empathyWords {
		if strings.Contains(opening, w) {
			return true
		}
	}
	return false
}
