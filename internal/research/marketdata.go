package research

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/pe-research/internal/model"
	"github.com/sells-group/pe-research/pkg/yahoo"
)

// MarketData is the provider contract the finance stage consumes. SearchTicker
// returns "" (no error) when the provider has no match for the name.
type MarketData interface {
	SearchTicker(ctx context.Context, name string) (string, error)
	FetchProfile(ctx context.Context, ticker string) (*model.FinancialProfile, error)
}

// YahooProvider adapts the Yahoo Finance client to the MarketData contract.
type YahooProvider struct {
	client yahoo.Client
}

// NewYahooProvider creates a MarketData backed by Yahoo Finance.
func NewYahooProvider(client yahoo.Client) *YahooProvider {
	return &YahooProvider{client: client}
}

func (p *YahooProvider) SearchTicker(ctx context.Context, name string) (string, error) {
	result, err := p.client.Search(ctx, name)
	if err != nil {
		return "", eris.Wrap(err, "marketdata: search")
	}
	if result == nil {
		return "", nil
	}
	return result.Symbol, nil
}

func (p *YahooProvider) FetchProfile(ctx context.Context, ticker string) (*model.FinancialProfile, error) {
	s, err := p.client.QuoteSummary(ctx, ticker)
	if err != nil {
		return nil, eris.Wrap(err, "marketdata: quote summary")
	}

	return &model.FinancialProfile{
		Ticker:          s.Symbol,
		CompanyName:     s.Name,
		MarketCap:       s.MarketCap,
		Revenue:         s.TotalRevenue,
		Sector:          s.Sector,
		Industry:        s.Industry,
		Employees:       s.Employees,
		Website:         s.Website,
		BusinessSummary: s.BusinessSummary,
		CurrentPrice:    s.CurrentPrice,
		PERatio:         s.TrailingPE,
		ProfitMargin:    s.ProfitMargin,
		RevenueGrowth:   s.RevenueGrowth,
		Headquarters:    formatHeadquarters(s.City, s.State, s.Country),
	}, nil
}

// formatHeadquarters joins the location parts as "City, State Country",
// dropping whatever is missing.
func formatHeadquarters(city, state, country string) string {
	tail := strings.TrimSpace(strings.Join(nonEmpty(state, country), " "))
	parts := nonEmpty(city, tail)
	return strings.Join(parts, ", ")
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, strings.TrimSpace(v))
		}
	}
	return out
}
