// Package webcontent fetches a public reference page and reduces it to
// readable main-body text for prompt inclusion.
package webcontent

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

// Extractor fetches HTML via net/http and extracts the article body.
type Extractor struct {
	client *http.Client
}

// NewExtractor creates an Extractor with sensible defaults.
func NewExtractor() *Extractor {
	return &Extractor{
		client: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

// WithHTTPClient overrides the default http.Client.
func (e *Extractor) WithHTTPClient(hc *http.Client) *Extractor {
	e.client = hc
	return e
}

// bodySelectors are tried in order; the first non-empty match wins. The
// mw-content-text id is Wikipedia's article container.
var bodySelectors = []string{"#mw-content-text", "article", "main", "body"}

// chrome we never want in extracted text.
const strippedNodes = "script, style, nav, header, footer, table, figure, sup.reference, .mw-editsection, .infobox, .navbox, .reflist"

// Extract fetches a URL and returns its main-body plaintext.
func (e *Extractor) Extract(ctx context.Context, targetURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return "", eris.Wrap(err, "webcontent: create request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; PEResearchBot/1.0)")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "webcontent: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return "", eris.Errorf("webcontent: status %d for %s", resp.StatusCode, targetURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", eris.Wrap(err, "webcontent: read body")
	}

	return extractText(targetURL, body)
}

func extractText(targetURL string, html []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", eris.Wrap(err, "webcontent: parse html")
	}

	doc.Find(strippedNodes).Remove()

	var sel *goquery.Selection
	for _, s := range bodySelectors {
		if found := doc.Find(s); found.Length() > 0 {
			sel = found.First()
			break
		}
	}
	if sel == nil {
		return "", eris.Errorf("webcontent: no readable body in %s", targetURL)
	}

	inner, err := sel.Html()
	if err != nil {
		return "", eris.Wrap(err, "webcontent: serialize body")
	}

	converter := md.NewConverter(targetURL, true, nil)
	text, err := converter.ConvertString(inner)
	if err != nil {
		return "", eris.Wrap(err, "webcontent: convert to text")
	}

	return collapseWhitespace(stripMarkup(text)), nil
}

var (
	linkRe  = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	blankRe = regexp.MustCompile(`\n{3,}`)
)

// stripMarkup reduces converted markdown to plain prose: links become their
// label, emphasis and heading markers are dropped.
func stripMarkup(s string) string {
	s = linkRe.ReplaceAllString(s, "$1")
	s = strings.NewReplacer("**", "", "*", "", "# ", "", "## ", "", "### ", "").Replace(s)
	return s
}

func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimSpace(ln)
	}
	s = strings.Join(lines, "\n")
	s = blankRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
