package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSONPlain(t *testing.T) {
	var out struct {
		Intent     string  `json:"intent"`
		Confidence float64 `json:"confidence"`
	}
	err := DecodeJSON(`{"intent":"order_status","confidence":0.92}`, &out)
	require.NoError(t, err)
	assert.Equal(t, "order_status", out.Intent)
	assert.InDelta(t, 0.92, out.Confidence, 1e-9)
}

func TestDecodeJSONFenced(t *testing.T) {
	var out map[string]any
	content := "```json\n{\"sentiment\": \"frustrated\", \"intensity\": 4}\n```"
	err := DecodeJSON(content, &out)
	require.NoError(t, err)
	assert.Equal(t, "frustrated", out["sentiment"])
}

func TestDecodeJSONFencedNoLanguage(t *testing.T) {
	var out map[string]any
	content := "```\n{\"eligible\": true}\n```"
	err := DecodeJSON(content, &out)
	require.NoError(t, err)
	assert.Equal(t, true, out["eligible"])
}

func TestDecodeJSONMalformed(t *testing.T) {
	var out map[string]any
	assert.Error(t, DecodeJSON("I am not JSON at all", &out))
	assert.Error(t, DecodeJSON("", &out))
}
