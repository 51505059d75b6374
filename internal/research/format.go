package research

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/pe-research/internal/model"
)

// groupedPrinter renders integers with thousands separators.
var groupedPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatProfile renders a financial profile as human-readable bullet lines.
// Pure: same profile in, same text out. Market cap and revenue are shown in
// billions with one decimal, the profit-margin fraction as a percentage.
// Absent fields produce no line at all.
func FormatProfile(p *model.FinancialProfile) string {
	if p.Failed() {
		reason := "no profile"
		if p != nil {
			reason = p.Err
		}
		return fmt.Sprintf("Financial data unavailable: %s", reason)
	}

	var b strings.Builder
	if p.MarketCap != nil {
		fmt.Fprintf(&b, "- Market Cap: $%.1fB\n", *p.MarketCap/1e9)
	}
	if p.Revenue != nil {
		fmt.Fprintf(&b, "- Annual Revenue: $%.1fB\n", *p.Revenue/1e9)
	}
	if p.CurrentPrice != nil {
		fmt.Fprintf(&b, "- Stock Price: $%.2f\n", *p.CurrentPrice)
	}
	if p.PERatio != nil {
		fmt.Fprintf(&b, "- P/E Ratio: %.1f\n", *p.PERatio)
	}
	if p.ProfitMargin != nil {
		fmt.Fprintf(&b, "- Profit Margin: %.1f%%\n", *p.ProfitMargin*100)
	}
	if p.Employees != nil {
		b.WriteString(groupedPrinter.Sprintf("- Employees: %d\n", *p.Employees))
	}
	if p.Headquarters != "" {
		fmt.Fprintf(&b, "- Headquarters: %s\n", p.Headquarters)
	}

	return strings.TrimRight(b.String(), "\n")
}
