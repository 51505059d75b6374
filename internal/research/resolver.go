package research

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// UnknownCompany is the sentinel identifier when no company name can be
// extracted. It seeds every downstream stage, so resolution never fails.
const UnknownCompany = "Unknown Company"

const extractSystem = "Extract the company name from the user query. " +
	"Return only the company name, nothing else. If multiple companies are " +
	"mentioned, return the primary one being asked about."

// maxExtractedLen rejects AI extractions that clearly returned prose instead
// of a name.
const maxExtractedLen = 80

// namePatterns match known query phrasings, in priority order.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)about\s+([A-Za-z0-9\s&.\-]+?)(?:\s|\?|$)`),
	regexp.MustCompile(`(?i)([A-Za-z0-9\s&.\-]+)'s\s+`),
	regexp.MustCompile(`(?i)analyze\s+([A-Za-z0-9\s&.\-]+?)(?:\s|\?|$)`),
	regexp.MustCompile(`(?i)tell\s+me\s+about\s+([A-Za-z0-9\s&.\-]+?)(?:\s|\?|$)`),
	regexp.MustCompile(`(?i)research\s+([A-Za-z0-9\s&.\-]+?)(?:\s|\?|$)`),
}

// corporateSuffixes are trailing tokens stripped from extracted names.
var corporateSuffixes = map[string]bool{
	"company":     true,
	"corp":        true,
	"corporation": true,
	"inc":         true,
	"ltd":         true,
	"llc":         true,
}

// NameResolver turns a free-text query into a company name candidate.
type NameResolver struct {
	gen TextGenerator
}

// NewNameResolver creates a NameResolver.
func NewNameResolver(gen TextGenerator) *NameResolver {
	return &NameResolver{gen: gen}
}

// Resolve extracts a company name from the query. AI extraction first, then
// pattern matching, then the UnknownCompany sentinel. Never fails.
func (r *NameResolver) Resolve(ctx context.Context, query string) Outcome[string] {
	text, err := r.gen.Generate(ctx, extractSystem, query, 50)
	if err == nil {
		if name := cleanName(text); name != "" && len(name) <= maxExtractedLen {
			return Ok(name)
		}
		zap.L().Debug("resolver: rejected AI extraction", zap.String("raw", text))
	}

	if name := PatternExtract(query); name != "" {
		return Degraded(name, "ai extraction unavailable, matched query pattern")
	}
	return Degraded(UnknownCompany, "no pattern matched query")
}

// PatternExtract applies the fallback phrasings to a query and returns the
// first match, or "" when none apply. Exported for the outer error boundary,
// which re-attempts extraction without touching the AI backend.
func PatternExtract(query string) string {
	for _, re := range namePatterns {
		if m := re.FindStringSubmatch(query); m != nil {
			if name := cleanName(m[1]); name != "" {
				return name
			}
		}
	}
	return ""
}

// cleanName trims the candidate and strips trailing punctuation and
// corporate-suffix tokens.
func cleanName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "?!.,")

	tokens := strings.Fields(s)
	for len(tokens) > 1 {
		last := strings.ToLower(strings.Trim(tokens[len(tokens)-1], "."))
		if !corporateSuffixes[last] {
			break
		}
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, " ")
}
