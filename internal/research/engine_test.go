package research

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/pe-research/internal/model"
)

func newFallbackEngine(t *testing.T, provider *mockMarketData, fetcher *mockContentFetcher) *Engine {
	t.Helper()
	gen := &mockGenerator{err: ErrGeneratorUnavailable}
	return NewEngine(gen, provider, fetcher, loadTables(t), "https://en.wikipedia.org")
}

func TestAnalyzeFallbackOnly(t *testing.T) {
	provider := &mockMarketData{profile: fullProfile()}
	fetcher := &mockContentFetcher{text: strings.Repeat("Apple designs phones. ", 10)}
	e := newFallbackEngine(t, provider, fetcher)

	res := e.Analyze(context.Background(), "Tell me about Apple", nil)

	require.NotNil(t, res)
	assert.Equal(t, "Apple", res.Company)
	assert.False(t, res.FollowUp)
	assert.True(t, strings.HasPrefix(res.Report, "# Apple Inc. - PE Research Analysis"))
	assertHeadingsInOrder(t, res.Report)
	assert.ElementsMatch(t, []string{"resolve", "competitors", "synthesize"}, res.Degraded)
}

func TestAnalyzeProviderFailureStillReports(t *testing.T) {
	provider := &mockMarketData{fetchErr: errors.New("upstream 503")}
	fetcher := &mockContentFetcher{err: errors.New("status 404")}
	e := newFallbackEngine(t, provider, fetcher)

	res := e.Analyze(context.Background(), "Analyze Tesla", nil)

	assert.Equal(t, "Tesla", res.Company)
	assert.True(t, strings.HasPrefix(res.Report, "# Tesla - PE Research Analysis"))
	assertHeadingsInOrder(t, res.Report)
	assert.Contains(t, res.Report, "Financial data is currently unavailable for Tesla")
	assert.Contains(t, res.Degraded, "finance")
	assert.Contains(t, res.Degraded, "web")
}

func TestAnalyzeUnrecognizedQuery(t *testing.T) {
	provider := &mockMarketData{fetchErr: errors.New("not found")}
	fetcher := &mockContentFetcher{err: errors.New("status 404")}
	e := newFallbackEngine(t, provider, fetcher)

	res := e.Analyze(context.Background(), "how is the weather", nil)

	assert.Equal(t, UnknownCompany, res.Company)
	assert.True(t, strings.HasPrefix(res.Report, "# Unknown Company - PE Research Analysis"))
	assertHeadingsInOrder(t, res.Report)
}

func TestAnalyzeShortWebContentNeverLeaks(t *testing.T) {
	provider := &mockMarketData{fetchErr: errors.New("not found")}
	fetcher := &mockContentFetcher{text: "tiny stub"}
	e := newFallbackEngine(t, provider, fetcher)

	res := e.Analyze(context.Background(), "Tell me about Acme", nil)

	assert.NotContains(t, res.Report, "tiny stub")
}

func TestAnalyzeIdempotentFallback(t *testing.T) {
	provider := &mockMarketData{profile: fullProfile()}
	fetcher := &mockContentFetcher{text: strings.Repeat("Apple designs phones. ", 10)}
	e := newFallbackEngine(t, provider, fetcher)

	first := e.Analyze(context.Background(), "Tell me about Apple", nil)
	second := e.Analyze(context.Background(), "Tell me about Apple", nil)

	assert.Equal(t, first.Report, second.Report)
}

func TestAnalyzeFollowUpDetection(t *testing.T) {
	history := []model.Message{{Role: model.RoleUser, Content: "Tell me about Apple"}}
	tests := []struct {
		name    string
		query   string
		history []model.Message
		want    bool
	}{
		{name: "keyword with history", query: "tell me more", history: history, want: true},
		{name: "what about with history", query: "What about their competitors?", history: history, want: true},
		{name: "keyword without history", query: "tell me more", want: false},
		{name: "fresh topic", query: "Analyze Tesla", history: history, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isFollowUp(tt.query, tt.history))
		})
	}
}

func TestAnalyzeRecoversFromPanic(t *testing.T) {
	gen := &mockGenerator{panic: "nil map write"}
	provider := &mockMarketData{profile: fullProfile()}
	fetcher := &mockContentFetcher{err: errors.New("unreachable")}
	e := NewEngine(gen, provider, fetcher, loadTables(t), "https://en.wikipedia.org")

	res := e.Analyze(context.Background(), "Tell me about Apple", nil)

	require.NotNil(t, res)
	assert.Equal(t, "Apple", res.Company)
	assert.True(t, strings.HasPrefix(res.Report, "# Apple - PE Research Analysis"))
	assert.Contains(t, res.Report, "**Analysis Error**")
	assert.Contains(t, res.Report, "nil map write")
	assert.Contains(t, res.Report, `"Tell me about Apple"`)
}
