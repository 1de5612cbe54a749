package model

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
)

func TestApplyMergesPresentFieldsOnly(t *testing.T) {
	st := NewTurnState("conv-1", "store-1", "hello", nil)
	st.Intent = IntentOrderStatus
	st.Confidence = 0.9

	st.Apply(&StateUpdate{
		Sentiment:          Ptr(SentimentFrustrated),
		SentimentIntensity: Ptr(4.5),
		EscalationContext:  Ptr("two failed delivery attempts"),
		TokensUsed:         12,
	})

	assert.Equal(t, IntentOrderStatus, st.Intent, "untouched field survives")
	assert.Equal(t, 0.9, st.Confidence)
	assert.Equal(t, SentimentFrustrated, st.Sentiment)
	assert.Equal(t, 4.5, st.SentimentIntensity)
	assert.Equal(t, "two failed delivery attempts", st.EscalationContext)
	assert.Equal(t, 12, st.TokensUsed)
}

func TestApplyAppendsAndAccumulates(t *testing.T) {
	st := NewTurnState("conv-1", "store-1", "hello", []*schema.Message{schema.UserMessage("earlier")})

	st.Apply(&StateUpdate{
		ActionsTaken: []ActionLog{{Type: "refund_processed"}},
		Messages:     []*schema.Message{schema.AssistantMessage("done", nil)},
		TokensUsed:   5,
	})
	st.Apply(&StateUpdate{
		ActionsTaken: []ActionLog{{Type: "escalation_created"}},
		TokensUsed:   7,
	})

	assert.Len(t, st.ActionsTaken, 2)
	assert.Len(t, st.Messages, 2)
	assert.Equal(t, 12, st.TokensUsed)
}

func TestApplyExplicitEmptyOverwrites(t *testing.T) {
	st := NewTurnState("conv-1", "store-1", "hello", nil)
	st.ResponseDraft = "draft"

	st.Apply(&StateUpdate{ResponseDraft: Ptr("")})
	assert.Empty(t, st.ResponseDraft, "a present empty value is an overwrite, not an omission")

	st.Apply(nil)
	assert.Empty(t, st.ResponseDraft)
}

func TestNewTurnStateDefaults(t *testing.T) {
	st := NewTurnState("conv-1", "store-1", "hello", nil)

	assert.Equal(t, SentimentNeutral, st.Sentiment)
	assert.Equal(t, 3.0, st.SentimentIntensity)
	assert.Equal(t, "professional", st.RecommendedTone)
	assert.Equal(t, "medium", st.EscalationPriority)
	assert.False(t, st.StartedAt.IsZero())
}
