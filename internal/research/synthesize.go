package research

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/pe-research/internal/model"
)

const synthesisSystem = `You are a Private Equity research analyst providing comprehensive company analysis.
Your responses should be professional, detailed, and focused on PE investment considerations.

Structure your response with clear sections:
- Company Overview
- Financial Highlights
- Key Competitors
- Investment Considerations (Strengths, Challenges, Opportunities)
- PE Relevance

Use the provided data to give accurate, specific insights. If data is limited, acknowledge this clearly.
Format your response in markdown with clear headings and bullet points for readability.`

const (
	// historyWindow is how many trailing turns feed the synthesis context.
	historyWindow = 5
	// historyTurnBudget caps each serialized turn.
	historyTurnBudget = 200
	// webContextBudget caps the supplementary-content slice in the prompt.
	webContextBudget = 1000
	// overviewBudget caps the business summary in the fallback overview.
	overviewBudget = 600
)

// reportTitleSuffix is the user-visible heading contract; both synthesis
// paths produce `# {name} - PE Research Analysis`.
const reportTitleSuffix = " - PE Research Analysis"

// SynthesisInput bundles everything the final report draws on.
type SynthesisInput struct {
	Company     string
	Profile     *model.FinancialProfile
	WebContent  string
	Competitors string
	Query       string
	History     []model.Message
}

// Synthesizer composes the final research report.
type Synthesizer struct {
	gen TextGenerator
}

// NewSynthesizer creates a Synthesizer.
func NewSynthesizer(gen TextGenerator) *Synthesizer {
	return &Synthesizer{gen: gen}
}

// Synthesize merges all pipeline outputs into the final report. The AI path
// writes the body from the full context bundle; when it is out, a
// deterministic template assembles the same five sections. Either way the
// report opens with the title-line contract.
func (s *Synthesizer) Synthesize(ctx context.Context, in SynthesisInput) Outcome[string] {
	name := in.Profile.DisplayName(in.Company)
	title := "# " + name + reportTitleSuffix + "\n\n"

	body, err := s.gen.Generate(ctx, synthesisSystem, buildContext(in), 1500)
	if err == nil {
		return Ok(title + body)
	}
	zap.L().Debug("synthesize: falling back to templated report", zap.Error(err))

	return Degraded(title+templatedBody(name, in), "ai synthesis unavailable")
}

// buildContext serializes the bundle for the AI path.
func buildContext(in SynthesisInput) string {
	profileJSON, err := json.MarshalIndent(in.Profile, "", "  ")
	if err != nil {
		profileJSON = []byte("{}")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s\n", in.Company)
	fmt.Fprintf(&b, "Financial Data: %s\n", profileJSON)
	fmt.Fprintf(&b, "Web Content: %s\n", clip(in.WebContent, webContextBudget))
	fmt.Fprintf(&b, "Competitor Analysis: %s\n\n", in.Competitors)
	fmt.Fprintf(&b, "User Query: %s\n", in.Query)
	b.WriteString("Chat History:\n")
	b.WriteString(serializeHistory(in.History))
	return b.String()
}

// serializeHistory renders the last historyWindow turns oldest-first, each
// clipped to its budget.
func serializeHistory(history []model.Message) string {
	if len(history) == 0 {
		return "None\n"
	}
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	var b strings.Builder
	for _, m := range history {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, clip(m.Content, historyTurnBudget))
	}
	return b.String()
}

// templatedBody assembles the five mandatory sections without AI help. It is
// fully deterministic: identical inputs yield identical bytes.
func templatedBody(name string, in SynthesisInput) string {
	p := in.Profile
	var b strings.Builder

	b.WriteString("## Company Overview\n")
	switch {
	case !p.Failed() && p.BusinessSummary != "":
		b.WriteString(clip(p.BusinessSummary, overviewBudget))
	case in.WebContent != "" && in.WebContent != NoWebContent:
		b.WriteString(clip(in.WebContent, overviewBudget))
	default:
		fmt.Fprintf(&b, "Limited public information is available for %s. "+
			"No business summary could be retrieved from the data provider.", name)
	}
	b.WriteString("\n\n")

	b.WriteString("## Financial Highlights\n")
	if p.Failed() {
		fmt.Fprintf(&b, "Financial data is currently unavailable for %s. %s\n", name, p.Err)
	} else if lines := FormatProfile(p); lines != "" {
		b.WriteString(lines + "\n")
	} else {
		fmt.Fprintf(&b, "No financial metrics were reported for %s.\n", name)
	}
	b.WriteString("\n")

	b.WriteString("## Key Competitors\n")
	b.WriteString(in.Competitors)
	b.WriteString("\n\n")

	b.WriteString("## Investment Considerations\n\n")
	writeConsiderations(&b, name, p)

	b.WriteString("## PE Relevance\n")
	b.WriteString(peRelevance(name, p))
	b.WriteString("\n")

	return strings.TrimRight(b.String(), "\n")
}

func writeConsiderations(b *strings.Builder, name string, p *model.FinancialProfile) {
	b.WriteString("### Strengths\n")
	var strengths []string
	if !p.Failed() {
		if p.MarketCap != nil {
			strengths = append(strengths, fmt.Sprintf("- Established market capitalization of $%.1fB.", *p.MarketCap/1e9))
		}
		if p.Revenue != nil {
			strengths = append(strengths, fmt.Sprintf("- Annual revenue base of $%.1fB.", *p.Revenue/1e9))
		}
		if p.ProfitMargin != nil {
			strengths = append(strengths, fmt.Sprintf("- Profit margin of %.1f%%.", *p.ProfitMargin*100))
		}
	}
	if len(strengths) == 0 {
		strengths = append(strengths, "- Available data is insufficient to identify specific strengths; further diligence required.")
	}
	b.WriteString(strings.Join(strengths, "\n") + "\n\n")

	b.WriteString("### Challenges\n")
	var challenges []string
	if !p.Failed() {
		if p.PERatio != nil {
			challenges = append(challenges, fmt.Sprintf("- Valuation discipline required at a trailing P/E of %.1f.", *p.PERatio))
		}
		if p.Sector != "" {
			challenges = append(challenges, fmt.Sprintf("- Competitive pressure from established peers in the %s sector.", p.Sector))
		}
	}
	challenges = append(challenges, fmt.Sprintf("- Public-market scale may limit conventional buyout structures for %s.", name))
	b.WriteString(strings.Join(challenges, "\n") + "\n\n")

	b.WriteString("### Opportunities\n")
	var opportunities []string
	if !p.Failed() {
		if p.RevenueGrowth != nil {
			opportunities = append(opportunities, fmt.Sprintf("- Revenue growth of %.1f%% indicates expansion momentum.", *p.RevenueGrowth*100))
		}
		if p.Employees != nil {
			opportunities = append(opportunities, groupedPrinter.Sprintf("- Operational leverage across a workforce of %d employees.", *p.Employees))
		}
	}
	opportunities = append(opportunities, "- Carve-out, growth-equity, or take-private angles may exist in adjacent business lines.")
	b.WriteString(strings.Join(opportunities, "\n") + "\n\n")
}

func peRelevance(name string, p *model.FinancialProfile) string {
	if p.Failed() || p.MarketCap == nil {
		return fmt.Sprintf("%s could not be fully sized from available data. "+
			"PE relevance hinges on verified financials; treat this analysis as a "+
			"starting point and confirm fundamentals through primary diligence.", name)
	}

	capB := *p.MarketCap / 1e9
	var scale string
	switch {
	case capB >= 10:
		scale = "a large-cap business, placing it beyond typical buyout fund reach but relevant for club deals, PIPEs, or divisional carve-outs"
	case capB >= 2:
		scale = "a mid-cap business, within reach of large buyout funds and well suited to take-private evaluation"
	default:
		scale = "a small-cap business, squarely in scope for conventional PE acquisition strategies"
	}
	return fmt.Sprintf("At a market capitalization of $%.1fB, %s is %s. "+
		"Sector dynamics and the competitive landscape above should anchor any "+
		"investment thesis.", capB, name, scale)
}

// clip truncates s to at most n bytes, appending an ellipsis when cut.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
