package research

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/pe-research/pkg/anthropic"
)

type fakeAnthropicClient struct {
	resp    *anthropic.MessageResponse
	err     error
	lastReq anthropic.MessageRequest
}

func (f *fakeAnthropicClient) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.lastReq = req
	return f.resp, f.err
}

func TestAnthropicGeneratorGenerate(t *testing.T) {
	client := &fakeAnthropicClient{resp: &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: "  Apple  "}},
	}}
	g := NewAnthropicGenerator(client, "claude-sonnet-4-5-20250929", time.Second)

	got, err := g.Generate(context.Background(), "system text", "prompt text", 50)
	require.NoError(t, err)
	assert.Equal(t, "Apple", got)
	assert.True(t, g.Available())

	assert.Equal(t, "claude-sonnet-4-5-20250929", client.lastReq.Model)
	assert.Equal(t, int64(50), client.lastReq.MaxTokens)
	assert.Equal(t, "system text", client.lastReq.System)
	require.Len(t, client.lastReq.Messages, 1)
	assert.Equal(t, "prompt text", client.lastReq.Messages[0].Content)
}

func TestAnthropicGeneratorErrors(t *testing.T) {
	t.Run("api failure", func(t *testing.T) {
		client := &fakeAnthropicClient{err: errors.New("overloaded")}
		g := NewAnthropicGenerator(client, "m", time.Second)

		_, err := g.Generate(context.Background(), "s", "p", 10)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "overloaded")
	})

	t.Run("empty generation", func(t *testing.T) {
		client := &fakeAnthropicClient{resp: &anthropic.MessageResponse{}}
		g := NewAnthropicGenerator(client, "m", time.Second)

		_, err := g.Generate(context.Background(), "s", "p", 10)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty generation")
	})
}

func TestUnavailableGenerator(t *testing.T) {
	g := NewUnavailableGenerator()
	assert.False(t, g.Available())

	_, err := g.Generate(context.Background(), "s", "p", 10)
	assert.ErrorIs(t, err, ErrGeneratorUnavailable)
}
