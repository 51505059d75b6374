package research

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/pe-research/internal/model"
)

func TestFormatProfile(t *testing.T) {
	tests := []struct {
		name    string
		profile *model.FinancialProfile
		want    string
	}{
		{
			name:    "market cap in billions",
			profile: &model.FinancialProfile{MarketCap: f64(3_000_000_000)},
			want:    "- Market Cap: $3.0B",
		},
		{
			name:    "employees with separators",
			profile: &model.FinancialProfile{Employees: i64(164000)},
			want:    "- Employees: 164,000",
		},
		{
			name:    "margin fraction as percentage",
			profile: &model.FinancialProfile{ProfitMargin: f64(0.253)},
			want:    "- Profit Margin: 25.3%",
		},
		{
			name: "all fields in order",
			profile: &model.FinancialProfile{
				MarketCap:    f64(3_450_000_000_000),
				Revenue:      f64(394_300_000_000),
				CurrentPrice: f64(227.5),
				PERatio:      f64(34.2),
				ProfitMargin: f64(0.253),
				Employees:    i64(164000),
				Headquarters: "Cupertino, CA United States",
			},
			want: "- Market Cap: $3450.0B\n" +
				"- Annual Revenue: $394.3B\n" +
				"- Stock Price: $227.50\n" +
				"- P/E Ratio: 34.2\n" +
				"- Profit Margin: 25.3%\n" +
				"- Employees: 164,000\n" +
				"- Headquarters: Cupertino, CA United States",
		},
		{
			name:    "no fields at all",
			profile: &model.FinancialProfile{CompanyName: "Ghost Co"},
			want:    "",
		},
		{
			name:    "failed fetch",
			profile: &model.FinancialProfile{Err: "Could not retrieve financial data: timeout"},
			want:    "Financial data unavailable: Could not retrieve financial data: timeout",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatProfile(tt.profile))
		})
	}
}

func TestFormatProfileIsPure(t *testing.T) {
	p := &model.FinancialProfile{MarketCap: f64(3_000_000_000), Employees: i64(12345)}
	assert.Equal(t, FormatProfile(p), FormatProfile(p))
}
