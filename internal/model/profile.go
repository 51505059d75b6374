package model

// FinancialProfile is the fixed attribute set retrieved from the market-data
// provider for one company. Numeric fields are pointers because not every
// issuer publishes every metric; a nil field is rendered as absent, never as
// a placeholder.
//
// Err, when non-empty, supersedes every other field and means the fetch
// failed entirely. Downstream stages must treat such a profile as "no usable
// financial data" and keep going.
type FinancialProfile struct {
	Ticker          string   `json:"ticker,omitempty"`
	CompanyName     string   `json:"company_name,omitempty"`
	MarketCap       *float64 `json:"market_cap,omitempty"`
	Revenue         *float64 `json:"revenue,omitempty"`
	Sector          string   `json:"sector,omitempty"`
	Industry        string   `json:"industry,omitempty"`
	Employees       *int64   `json:"employees,omitempty"`
	Website         string   `json:"website,omitempty"`
	BusinessSummary string   `json:"business_summary,omitempty"`
	CurrentPrice    *float64 `json:"current_price,omitempty"`
	PERatio         *float64 `json:"pe_ratio,omitempty"`
	ProfitMargin    *float64 `json:"profit_margin,omitempty"`
	RevenueGrowth   *float64 `json:"revenue_growth,omitempty"`
	Headquarters    string   `json:"headquarters,omitempty"`

	Err string `json:"error,omitempty"`
}

// Failed reports whether the profile carries a fetch error instead of data.
func (p *FinancialProfile) Failed() bool {
	return p == nil || p.Err != ""
}

// DisplayName returns the canonical name when the provider supplied one,
// otherwise the given fallback.
func (p *FinancialProfile) DisplayName(fallback string) string {
	if p != nil && !p.Failed() && p.CompanyName != "" {
		return p.CompanyName
	}
	return fallback
}
