package conversations

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
)

func TestRenderWindow(t *testing.T) {
	msgs := []*schema.Message{
		schema.UserMessage("first"),
		schema.AssistantMessage("second", nil),
		schema.UserMessage("third"),
	}

	assert.Equal(t, "USER: first\nASSISTANT: second\nUSER: third", RenderWindow(msgs, 6))
	assert.Equal(t, "ASSISTANT: second\nUSER: third", RenderWindow(msgs, 2))
	assert.Empty(t, RenderWindow(nil, 4))
}

func TestRenderWindowSkipsEmptyAndSystem(t *testing.T) {
	msgs := []*schema.Message{
		schema.SystemMessage("internal"),
		{Role: schema.User, Content: ""},
		schema.UserMessage("hello"),
	}
	assert.Equal(t, "USER: hello", RenderWindow(msgs, 6))
}
