package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shopmate-ai/server/internal/agent/model"
)

func TestLooksAgitated(t *testing.T) {
	tests := []struct {
		message string
		want    bool
	}{
		{"WHERE IS MY ORDER", true},
		{"this is fine!!", true},
		{"help! now! please! hurry!", true},
		{"where is my order?", false},
		{"I'm excited!", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, looksAgitated(tt.message), "message: %q", tt.message)
	}
}

func TestClampIntensity(t *testing.T) {
	assert.Equal(t, 1.0, clampIntensity(0))
	assert.Equal(t, 1.0, clampIntensity(-3))
	assert.Equal(t, 3.5, clampIntensity(3.5))
	assert.Equal(t, 5.0, clampIntensity(9))
}

func TestSentimentFallback(t *testing.T) {
	agitated := sentimentFallback(true)
	assert.Equal(t, model.SentimentFrustrated, *agitated.Sentiment)
	assert.Equal(t, 4.0, *agitated.SentimentIntensity)
	assert.Equal(t, "empathetic", *agitated.RecommendedTone)

	calm := sentimentFallback(false)
	assert.Equal(t, model.SentimentNeutral, *calm.Sentiment)
	assert.Equal(t, 3.0, *calm.SentimentIntensity)
}
