package research

import (
	"context"

	"github.com/sells-group/pe-research/internal/model"
)

// mockGenerator scripts the TextGenerator for a test.
type mockGenerator struct {
	reply string
	err   error
	panic string

	calls      int
	lastSystem string
	lastPrompt string
}

func (m *mockGenerator) Generate(_ context.Context, system, prompt string, _ int64) (string, error) {
	m.calls++
	m.lastSystem = system
	m.lastPrompt = prompt
	if m.panic != "" {
		panic(m.panic)
	}
	return m.reply, m.err
}

func (m *mockGenerator) Available() bool { return m.err == nil }

// mockMarketData scripts the provider.
type mockMarketData struct {
	searchSymbol string
	searchErr    error
	profile      *model.FinancialProfile
	fetchErr     error

	searchedName  string
	fetchedTicker string
}

func (m *mockMarketData) SearchTicker(_ context.Context, name string) (string, error) {
	m.searchedName = name
	return m.searchSymbol, m.searchErr
}

func (m *mockMarketData) FetchProfile(_ context.Context, ticker string) (*model.FinancialProfile, error) {
	m.fetchedTicker = ticker
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	// Copy so tests can mutate their fixture freely.
	p := *m.profile
	return &p, nil
}

// mockContentFetcher scripts the text-extraction collaborator.
type mockContentFetcher struct {
	text string
	err  error

	lastURL string
}

func (m *mockContentFetcher) Extract(_ context.Context, url string) (string, error) {
	m.lastURL = url
	return m.text, m.err
}

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }
