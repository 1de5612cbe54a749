package workflow

import (
	"context"
	"strings"
	"unicode"

	"github.com/shopmate-ai/server/internal/agent/conversations"
	"github.com/shopmate-ai/server/internal/agent/llm"
	"github.com/shopmate-ai/server/internal/agent/model"
	"github.com/shopmate-ai/server/internal/agent/prompts"
	logx "github.com/shopmate-ai/server/pkg/logger"
)

type sentimentResult struct {
	Sentiment       string   `json:"sentiment"`
	Intensity       float64  `json:"intensity"`
	Indicators      []string `json:"indicators"`
	RecommendedTone string   `json:"recommended_tone"`
}

// analyzeSentiment scores the customer's emotional register. Surface signals
// (shouting, stacked exclamation marks) are detected lexically and can only
// raise the model's intensity, never lower it.
func (e *Engine) analyzeSentiment(ctx context.Context, st *model.ConversationState) *model.StateUpdate {
	agitated := looksAgitated(st.CurrentMessage)

	history := conversations.RenderWindow(st.Messages, e.deps.Conversation.SentimentMaxEntries)
	if history == "" {
		history = "No previous messages"
	}

	prompt, err := prompts.Sentiment(ctx, st.CurrentMessage, history)
	if err != nil {
		logx.Error().Err(err).Str("conversation_id", st.ConversationID).Msg("sentiment prompt render failed")
		return sentimentFallback(agitated)
	}

	reply, err := e.deps.Models.Analysis.Generate(ctx, prompt)
	if err != nil {
		logx.Error().Err(err).Str("conversation_id", st.ConversationID).Msg("sentiment analysis failed")
		return sentimentFallback(agitated)
	}

	var out sentimentResult
	if err := llm.DecodeJSON(reply.Content, &out); err != nil || out.Sentiment == "" {
		logx.Warn().Str("conversation_id", st.ConversationID).Msg("sentiment output unparseable")
		u := sentimentFallback(agitated)
		u.TokensUsed = reply.TotalTokens
		return u
	}

	intensity := clampIntensity(out.Intensity)
	if agitated && intensity < 5 {
		intensity++
	}

	logx.Debug().
		Str("conversation_id", st.ConversationID).
		Str("sentiment", out.Sentiment).
		Float64("intensity", intensity).
		Msg("analyzed sentiment")

	u := &model.StateUpdate{
		Sentiment:          model.Ptr(out.Sentiment),
		SentimentIntensity: model.Ptr(intensity),
		TokensUsed:         reply.TotalTokens,
	}
	if out.RecommendedTone != "" {
		u.RecommendedTone = model.Ptr(out.RecommendedTone)
	}
	return u
}

// sentimentFallback assumes the worst when the agitation signals fired and
// stays neutral otherwise.
func sentimentFallback(agitated bool) *model.StateUpdate {
	if agitated {
		return &model.StateUpdate{
			Sentiment:          model.Ptr(model.SentimentFrustrated),
			SentimentIntensity: model.Ptr(4.0),
			RecommendedTone:    model.Ptr("empathetic"),
		}
	}
	return &model.StateUpdate{
		Sentiment:          model.Ptr(model.SentimentNeutral),
		SentimentIntensity: model.Ptr(3.0),
		RecommendedTone:    model.Ptr("professional"),
	}
}

// looksAgitated reports surface agitation: mostly uppercase text, a doubled
// exclamation mark, or more than two exclamation marks overall.
func looksAgitated(message string) bool {
	runes := []rune(message)
	if len(runes) == 0 {
		return false
	}

	upper := 0
	for _, r := range runes {
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if float64(upper)/float64(len(runes)) > 0.5 {
		return true
	}

	return strings.Contains(message, "!!") || strings.Count(message, "!") > 2
}

func clampIntensity(v float64) float64 {
	if v < 1 {
		return 1
	}
	if v > 5 {
		return 5
	}
	return v
}
