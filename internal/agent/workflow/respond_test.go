package workflow

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopmate-ai/server/internal/agent/llm"
	"github.com/shopmate-ai/server/internal/agent/model"
)

func TestOpensWithEmpathy(t *testing.T) {
	assert.True(t, opensWithEmpathy("I'm so sorry about the delay."))
	assert.True(t, opensWithEmpathy("We understand how frustrating this is."))
	assert.False(t, opensWithEmpathy("Your order shipped yesterday."))

	// Acknowledgment buried past the opening does not count.
	late := strings.Repeat("Your order is on its way. ", 5) + "Sorry about that."
	assert.False(t, opensWithEmpathy(late))
}

func TestBuildResponsePrependsEmpathyForFrustrated(t *testing.T) {
	engine := newTestEngine(t, Dependencies{
		Models: &llm.Models{Analysis: &queueModel{}, Responder: &queueModel{}},
	})

	st := model.NewTurnState("conv-x", "store-1", "WHERE IS IT", nil)
	st.Sentiment = model.SentimentFrustrated
	st.ResponseDraft = "Your order shipped yesterday."

	u := engine.buildResponse(context.Background(), st)
	require.NotNil(t, u.FinalResponse)
	assert.True(t, opensWithEmpathy(*u.FinalResponse))
	assert.True(t, strings.HasSuffix(*u.FinalResponse, "Your order shipped yesterday."))
}

func TestBuildResponseLeavesEmpathicDraftAlone(t *testing.T) {
	engine := newTestEngine(t, Dependencies{
		Models: &llm.Models{Analysis: &queueModel{}, Responder: &queueModel{}},
	})

	st := model.NewTurnState("conv-x", "store-1", "WHERE IS IT", nil)
	st.Sentiment = model.SentimentFrustrated
	st.ResponseDraft = "I'm sorry for the wait. Your order shipped yesterday."

	u := engine.buildResponse(context.Background(), st)
	require.NotNil(t, u.FinalResponse)
	assert.Equal(t, st.ResponseDraft, *u.FinalResponse)
}

func TestBuildResponseAppendsTurnToHistory(t *testing.T) {
	engine := newTestEngine(t, Dependencies{
		Models: &llm.Models{Analysis: &queueModel{}, Responder: &queueModel{}},
	})

	st := model.NewTurnState("conv-x", "store-1", "where is my order?", nil)
	st.ResponseDraft = "It shipped yesterday."
	st.CurrentAgent = agentWISMO

	u := engine.buildResponse(context.Background(), st)
	require.Len(t, u.Messages, 2)
	assert.Equal(t, "where is my order?", u.Messages[0].Content)
	assert.Equal(t, "It shipped yesterday.", u.Messages[1].Content)
	assert.Equal(t, agentWISMO, u.Messages[1].Extra["agent"])
}
