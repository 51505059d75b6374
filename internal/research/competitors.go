package research

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/pe-research/internal/model"
	"github.com/sells-group/pe-research/internal/refdata"
)

const competitorSystem = "You are a financial analyst specializing in " +
	"competitive analysis. Provide a comprehensive competitor analysis " +
	"including direct competitors, market positioning, and competitive advantages."

// maxListedCompetitors caps the table-driven fallback list.
const maxListedCompetitors = 5

// CompetitorAnalyzer produces a competitor narrative for a company.
type CompetitorAnalyzer struct {
	gen    TextGenerator
	tables *refdata.Tables
}

// NewCompetitorAnalyzer creates a CompetitorAnalyzer.
func NewCompetitorAnalyzer(gen TextGenerator, tables *refdata.Tables) *CompetitorAnalyzer {
	return &CompetitorAnalyzer{gen: gen, tables: tables}
}

// Analyze generates the competitor narrative, conditioned on the profile's
// sector, industry, and name. AI path first; when the backend is out, a
// static sector table supplies representative names. Both paths return
// non-empty prose.
func (a *CompetitorAnalyzer) Analyze(ctx context.Context, profile *model.FinancialProfile) Outcome[string] {
	sector := fieldOr(profile.Sector, "Unknown")
	industry := fieldOr(profile.Industry, "Unknown")
	name := fieldOr(profile.CompanyName, "Unknown")
	if profile.Failed() {
		sector, industry = "Unknown", "Unknown"
	}

	prompt := fmt.Sprintf("Analyze the competitive landscape for %s in the %s sector, "+
		"specifically in %s. Include direct competitors, market share considerations, "+
		"and competitive positioning.", name, sector, industry)

	text, err := a.gen.Generate(ctx, competitorSystem, prompt, 800)
	if err == nil {
		return Ok(text)
	}
	zap.L().Debug("competitors: falling back to sector table", zap.String("sector", sector), zap.Error(err))

	return Degraded(a.tableNarrative(name, sector, industry), "ai analysis unavailable")
}

// tableNarrative builds the deterministic fallback from the sector table. The
// subject company never appears in its own competitor list.
func (a *CompetitorAnalyzer) tableNarrative(name, sector, industry string) string {
	candidates, ok := a.tables.Competitors(sector)
	if !ok || len(candidates) == 0 {
		return fmt.Sprintf("Competitor analysis for %s in the %s sector requires additional "+
			"research. The sector is not covered by the reference data, so market positioning "+
			"and competitive factors such as pricing power, scale, and differentiation within "+
			"the %s industry should be assessed through primary sources.", name, sector, industry)
	}

	var competitors []string
	for _, c := range candidates {
		if strings.EqualFold(c, name) {
			continue
		}
		competitors = append(competitors, c)
		if len(competitors) == maxListedCompetitors {
			break
		}
	}

	if len(competitors) == 0 {
		return fmt.Sprintf("Competitor analysis for %s in the %s sector requires additional "+
			"research. No peers beyond the company itself are covered by the reference data "+
			"for the %s industry.", name, sector, industry)
	}

	return fmt.Sprintf("%s operates in the %s sector, within the %s industry. "+
		"Direct competitors include %s. Market positioning among these names is "+
		"typically driven by scale, brand strength, and product differentiation, "+
		"while the key competitive factors in the sector are pricing power, "+
		"distribution reach, and the pace of innovation.",
		name, sector, industry, strings.Join(competitors, ", "))
}

func fieldOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
