package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeJSON parses a reasoning-service reply into v. Models frequently wrap
// JSON in a markdown code fence; strip it before decoding. A schema mismatch
// or non-JSON body returns an error so the calling stage can take its
// documented fallback.
func DecodeJSON(content string, v any) error {
	content = StripFences(content)
	if content == "" {
		return fmt.Errorf("empty reasoning output")
	}
	if err := json.Unmarshal([]byte(content), v); err != nil {
		return fmt.Errorf("decode reasoning output: %w", err)
	}
	return nil
}

// StripFences removes an optional ```json ... ``` wrapper around a reply.
func StripFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	parts := strings.Split(content, "```")
	if len(parts) < 2 {
		return content
	}
	inner := parts[1]
	inner = strings.TrimPrefix(inner, "json")
	return strings.TrimSpace(inner)
}
