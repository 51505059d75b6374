package research

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/pe-research/pkg/anthropic"
)

// ErrGeneratorUnavailable is returned by a generator that has no backend to
// call. Stages treat it like any other generation failure and take their
// deterministic path.
var ErrGeneratorUnavailable = eris.New("research: text generator unavailable")

// TextGenerator is the single AI contract every pipeline stage consumes: one
// system instruction, one prompt, bounded output. The Anthropic-backed and
// unavailable implementations let the whole pipeline run with or without a
// credential.
type TextGenerator interface {
	Generate(ctx context.Context, system, prompt string, maxTokens int64) (string, error)
	Available() bool
}

// anthropicGenerator backs TextGenerator with the Anthropic API. Every call
// is guarded by a timeout so one slow request cannot hang the pipeline.
type anthropicGenerator struct {
	client  anthropic.Client
	model   string
	timeout time.Duration
}

// NewAnthropicGenerator creates an AI-backed TextGenerator.
func NewAnthropicGenerator(client anthropic.Client, model string, timeout time.Duration) TextGenerator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &anthropicGenerator{client: client, model: model, timeout: timeout}
}

func (g *anthropicGenerator) Available() bool { return true }

func (g *anthropicGenerator) Generate(ctx context.Context, system, prompt string, maxTokens int64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     g.model,
		MaxTokens: maxTokens,
		System:    system,
		Messages: []anthropic.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "research: generate")
	}

	resp.Usage.LogCost(g.model, "research")

	text := strings.TrimSpace(resp.FirstText())
	if text == "" {
		return "", eris.New("research: empty generation")
	}
	return text, nil
}

// unavailableGenerator is the no-credential mode: every stage falls through
// to its deterministic path.
type unavailableGenerator struct{}

// NewUnavailableGenerator creates a TextGenerator that always fails, forcing
// fallback paths throughout the pipeline.
func NewUnavailableGenerator() TextGenerator {
	return unavailableGenerator{}
}

func (unavailableGenerator) Available() bool { return false }

func (unavailableGenerator) Generate(context.Context, string, string, int64) (string, error) {
	return "", ErrGeneratorUnavailable
}
