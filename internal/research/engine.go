// Package research implements the query-to-report pipeline: extract a company
// name from free text, resolve it to a ticker, aggregate financial, web, and
// competitor data, and synthesize a PE-oriented report. Every stage degrades
// instead of failing, so a query always yields a displayable answer.
package research

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/pe-research/internal/model"
	"github.com/sells-group/pe-research/internal/refdata"
)

// followupKeywords mark a query as continuing the previous topic.
var followupKeywords = []string{"more", "tell me more", "continue", "what about", "also", "additionally"}

// Result is the outcome of one pipeline run. Report is always non-empty.
type Result struct {
	Report   string
	Company  string
	FollowUp bool
	// Degraded lists the stages that took their fallback path.
	Degraded []string
}

// Engine is the pipeline orchestrator. Construct once per process with
// injected collaborators; safe for concurrent use.
type Engine struct {
	resolver    *NameResolver
	finance     *FinanceFetcher
	web         *WebFetcher
	competitors *CompetitorAnalyzer
	synth       *Synthesizer
}

// NewEngine wires the pipeline stages from their collaborators. gen may be an
// unavailable generator: the pipeline then runs entirely on fallback paths.
func NewEngine(gen TextGenerator, provider MarketData, fetcher ContentFetcher, tables *refdata.Tables, webBaseURL string) *Engine {
	if !gen.Available() {
		zap.L().Warn("research: no AI backend configured, running fallback paths only")
	}
	return &Engine{
		resolver:    NewNameResolver(gen),
		finance:     NewFinanceFetcher(provider, tables),
		web:         NewWebFetcher(fetcher, webBaseURL),
		competitors: NewCompetitorAnalyzer(gen, tables),
		synth:       NewSynthesizer(gen),
	}
}

// Analyze runs the full pipeline for one query. History is read-only context;
// the caller owns appending the resulting turns. Analyze never returns an
// error and never panics past its own boundary: a catastrophic failure is
// rendered as a user-facing error report.
func (e *Engine) Analyze(ctx context.Context, query string, history []model.Message) (res *Result) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("research: pipeline panic", zap.Any("panic", r), zap.String("query", query))
			res = errorResult(query, fmt.Sprintf("%v", r))
		}
	}()

	log := zap.L().With(zap.String("query", query))
	res = &Result{FollowUp: isFollowUp(query, history)}

	named := e.resolver.Resolve(ctx, query)
	res.Company = named.Value
	res.trackStage("resolve", named.Degraded, named.Reason)

	fetched := e.finance.Fetch(ctx, named.Value)
	res.trackStage("finance", fetched.Degraded, fetched.Reason)

	web := e.web.Fetch(ctx, named.Value)
	res.trackStage("web", web.Degraded, web.Reason)

	competitors := e.competitors.Analyze(ctx, fetched.Value)
	res.trackStage("competitors", competitors.Degraded, competitors.Reason)

	report := e.synth.Synthesize(ctx, SynthesisInput{
		Company:     named.Value,
		Profile:     fetched.Value,
		WebContent:  web.Value,
		Competitors: competitors.Value,
		Query:       query,
		History:     history,
	})
	res.trackStage("synthesize", report.Degraded, report.Reason)
	res.Report = report.Value

	log.Info("research: analysis complete",
		zap.String("company", res.Company),
		zap.Bool("follow_up", res.FollowUp),
		zap.Strings("degraded_stages", res.Degraded),
	)
	return res
}

func (r *Result) trackStage(name string, degraded bool, reason string) {
	if !degraded {
		return
	}
	r.Degraded = append(r.Degraded, name)
	zap.L().Debug("research: stage degraded", zap.String("stage", name), zap.String("reason", reason))
}

// isFollowUp detects queries that continue an earlier topic. Only meaningful
// when history exists.
func isFollowUp(query string, history []model.Message) bool {
	if len(history) == 0 {
		return false
	}
	lowered := strings.ToLower(query)
	for _, kw := range followupKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// errorResult renders the outer-boundary error report. Name extraction is
// re-attempted on the pattern path only; any further failure collapses to the
// sentinel.
func errorResult(query, errMsg string) *Result {
	name := PatternExtract(query)
	if name == "" {
		name = UnknownCompany
	}

	var b strings.Builder
	b.WriteString("# " + name + reportTitleSuffix + "\n\n")
	b.WriteString("**Analysis Error**\n\n")
	fmt.Fprintf(&b, "I encountered an issue while researching %s:\n\n", name)
	fmt.Fprintf(&b, "**Error Details:** %s\n\n", errMsg)
	b.WriteString(`**Possible Solutions:**
- Check if the company name is spelled correctly
- Try using the full company name or stock ticker
- Ensure the company is publicly traded or well-known
- Rephrase your question

**Example Queries:**
- "Tell me about Apple"
- "Analyze Tesla's market position"
- "Who are Microsoft's competitors?"

Please try again with a different approach.`)

	return &Result{Report: b.String(), Company: name}
}
