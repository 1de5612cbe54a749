package repo

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*RedisConversationRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisConversationRepository(client, time.Minute), mr
}

func TestAddAndLoadHistory(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.AddMessage(ctx, "conv-1", schema.UserMessage("where is my order #1234?")))
	require.NoError(t, r.AddMessage(ctx, "conv-1", schema.AssistantMessage("It shipped yesterday.", nil)))

	history, err := r.LoadHistory(ctx, "conv-1")
	require.NoError(t, err)
	require.Len(t, history.Messages, 2)
	assert.Equal(t, schema.User, history.Messages[0].Role)
	assert.Equal(t, "where is my order #1234?", history.Messages[0].Content)
	assert.Equal(t, schema.Assistant, history.Messages[1].Role)
}

func TestLoadHistoryEmpty(t *testing.T) {
	r, _ := newTestRepo(t)

	history, err := r.LoadHistory(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, history.Messages)
}

func TestAddMessageSetsTTL(t *testing.T) {
	r, mr := newTestRepo(t)

	require.NoError(t, r.AddMessage(context.Background(), "conv-ttl", schema.UserMessage("hi")))
	ttl := mr.TTL("conversation:conv-ttl:messages")
	assert.Greater(t, ttl, time.Duration(0))
}

func TestClearHistoryAndCount(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.AddMessage(ctx, "conv-2", schema.UserMessage("hello")))
	n, err := r.GetMessageCount(ctx, "conv-2")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, r.ClearHistory(ctx, "conv-2"))
	n, err = r.GetMessageCount(ctx, "conv-2")
	require.NoError(t, err)
	assert.Zero(t, n)
}
