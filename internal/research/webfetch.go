package research

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// NoWebContent is the sentinel when no usable supplementary content could be
// fetched. Distinct from absence: downstream prompt assembly includes it
// verbatim so the AI knows the source was tried.
const NoWebContent = "No additional web content found."

const (
	// minContentLen rejects stub pages and error fragments.
	minContentLen = 100
	// maxContentLen caps what a single reference page may contribute.
	maxContentLen = 2000
)

// ContentFetcher is the text-extraction collaborator: given a URL, return the
// page's main-body text or fail.
type ContentFetcher interface {
	Extract(ctx context.Context, url string) (string, error)
}

// WebFetcher pulls supplementary descriptive text about a company from its
// reference page.
type WebFetcher struct {
	fetcher ContentFetcher
	baseURL string
}

// NewWebFetcher creates a WebFetcher. baseURL is the reference site root,
// normally https://en.wikipedia.org.
func NewWebFetcher(fetcher ContentFetcher, baseURL string) *WebFetcher {
	return &WebFetcher{fetcher: fetcher, baseURL: strings.TrimRight(baseURL, "/")}
}

// Fetch builds the canonical article URL for the company and returns its
// extracted text, truncated to the content budget. Fetch failure, extraction
// failure, and content too short to be signal all yield the NoWebContent
// sentinel.
func (w *WebFetcher) Fetch(ctx context.Context, name string) Outcome[string] {
	url := fmt.Sprintf("%s/wiki/%s", w.baseURL, strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))

	text, err := w.fetcher.Extract(ctx, url)
	if err != nil {
		zap.L().Debug("webfetch: extraction failed", zap.String("url", url), zap.Error(err))
		return Degraded(NoWebContent, "fetch or extraction failed")
	}

	text = strings.TrimSpace(text)
	if len(text) <= minContentLen {
		return Degraded(NoWebContent, "content below minimum length")
	}

	if len(text) > maxContentLen {
		text = text[:maxContentLen] + "..."
	}
	return Ok(fmt.Sprintf("Source: %s\n%s", url, text))
}
