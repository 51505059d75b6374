package research

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/pe-research/internal/model"
	"github.com/sells-group/pe-research/internal/refdata"
)

// FinanceFetcher resolves a company name to a ticker and pulls its financial
// profile from the market-data provider.
type FinanceFetcher struct {
	provider MarketData
	tables   *refdata.Tables
}

// NewFinanceFetcher creates a FinanceFetcher.
func NewFinanceFetcher(provider MarketData, tables *refdata.Tables) *FinanceFetcher {
	return &FinanceFetcher{provider: provider, tables: tables}
}

// Fetch retrieves the financial profile for a company name. Resolution order:
// provider symbol search, then the static name→ticker table, then the name
// uppercased as a literal ticker guess. Any failure degrades to a profile
// carrying Err; the pipeline never aborts here.
func (f *FinanceFetcher) Fetch(ctx context.Context, name string) Outcome[*model.FinancialProfile] {
	ticker := f.resolveTicker(ctx, name)

	profile, err := f.provider.FetchProfile(ctx, ticker)
	if err != nil {
		zap.L().Warn("finance: profile fetch failed",
			zap.String("company", name),
			zap.String("ticker", ticker),
			zap.Error(err),
		)
		return Degraded(&model.FinancialProfile{
			CompanyName: name,
			Err:         fmt.Sprintf("Could not retrieve financial data: %v", err),
		}, "provider fetch failed")
	}

	if profile.CompanyName == "" {
		profile.CompanyName = name
	}
	return Ok(profile)
}

func (f *FinanceFetcher) resolveTicker(ctx context.Context, name string) string {
	if sym, err := f.provider.SearchTicker(ctx, name); err == nil && sym != "" {
		return sym
	} else if err != nil {
		zap.L().Debug("finance: provider search failed", zap.String("company", name), zap.Error(err))
	}

	if sym, ok := f.tables.Ticker(name); ok {
		return sym
	}

	// Last resort: treat the name itself as a ticker.
	return strings.ToUpper(strings.TrimSpace(name))
}
