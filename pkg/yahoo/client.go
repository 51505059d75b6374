// Package yahoo is a minimal Yahoo Finance client covering the two calls the
// research engine needs: symbol search and the quoteSummary profile fetch.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://query2.finance.yahoo.com"
	defaultSeedURL = "https://fc.yahoo.com"
	userAgent      = "Mozilla/5.0 (compatible; PEResearchBot/1.0)"
	crumbTTL       = time.Hour

	quoteModules = "assetProfile,price,summaryDetail,financialData"
)

// Client performs lookups against the Yahoo Finance API.
type Client interface {
	// Search resolves a free-text company name to its best-matching equity
	// symbol. Returns nil (no error) when nothing matches.
	Search(ctx context.Context, query string) (*SearchResult, error)
	// QuoteSummary fetches the profile attribute set for a ticker.
	QuoteSummary(ctx context.Context, symbol string) (*Summary, error)
}

// SearchResult is the best match from symbol search.
type SearchResult struct {
	Symbol   string
	Name     string
	Exchange string
}

// Summary is the flattened quoteSummary attribute set. Numeric fields are
// pointers; Yahoo omits metrics an issuer does not report.
type Summary struct {
	Symbol          string
	Name            string
	Sector          string
	Industry        string
	Website         string
	BusinessSummary string
	City            string
	State           string
	Country         string
	Employees       *int64
	MarketCap       *float64
	TotalRevenue    *float64
	CurrentPrice    *float64
	TrailingPE      *float64
	ProfitMargin    *float64
	RevenueGrowth   *float64
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithSeedURL overrides the cookie-seeding URL used before crumb fetch.
func WithSeedURL(url string) Option {
	return func(c *httpClient) {
		c.seedURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL string
	seedURL string
	http    *http.Client
	limiter *rate.Limiter

	crumbMu  sync.Mutex
	crumb    string
	crumbExp time.Time
}

// NewClient creates a Yahoo Finance client. Requests are rate limited to two
// per second; Yahoo throttles aggressively above that.
func NewClient(opts ...Option) Client {
	jar, _ := cookiejar.New(nil)
	c := &httpClient{
		baseURL: defaultBaseURL,
		seedURL: defaultSeedURL,
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 2),
		http: &http.Client{
			Timeout: 15 * time.Second,
			Jar:     jar,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// getCrumb fetches Yahoo's anti-scraping crumb token, seeding session cookies
// first. Best-effort: a missing crumb degrades to unauthenticated requests,
// which still work for most symbols.
func (c *httpClient) getCrumb(ctx context.Context) string {
	c.crumbMu.Lock()
	defer c.crumbMu.Unlock()

	if c.crumb != "" && time.Now().Before(c.crumbExp) {
		return c.crumb
	}

	seedReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.seedURL, nil)
	if err == nil {
		seedReq.Header.Set("User-Agent", userAgent)
		if resp, seedErr := c.http.Do(seedReq); seedErr == nil {
			_ = resp.Body.Close()
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/test/getcrumb", nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		zap.L().Debug("yahoo: crumb fetch failed", zap.Error(err))
		return ""
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil || resp.StatusCode != http.StatusOK {
		zap.L().Debug("yahoo: crumb unavailable", zap.Int("status", resp.StatusCode))
		return ""
	}

	c.crumb = strings.TrimSpace(string(body))
	c.crumbExp = time.Now().Add(crumbTTL)
	return c.crumb
}

func (c *httpClient) get(ctx context.Context, url string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "yahoo: rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return eris.Wrap(err, "yahoo: create request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "yahoo: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return eris.Wrap(err, "yahoo: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("yahoo: status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "yahoo: decode response")
	}
	return nil
}

type searchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		Exchange  string `json:"exchange"`
		QuoteType string `json:"quoteType"`
	} `json:"quotes"`
}

func (c *httpClient) Search(ctx context.Context, query string) (*SearchResult, error) {
	url := fmt.Sprintf("%s/v1/finance/search?q=%s&quotesCount=5&newsCount=0",
		c.baseURL, strings.ReplaceAll(strings.TrimSpace(query), " ", "+"))

	var sr searchResponse
	if err := c.get(ctx, url, &sr); err != nil {
		return nil, eris.Wrap(err, "yahoo: search")
	}

	for _, q := range sr.Quotes {
		if q.QuoteType != "EQUITY" || q.Symbol == "" {
			continue
		}
		name := q.LongName
		if name == "" {
			name = q.ShortName
		}
		return &SearchResult{Symbol: q.Symbol, Name: name, Exchange: q.Exchange}, nil
	}
	return nil, nil
}

// rawValue is Yahoo's {"raw": n, "fmt": "..."} number wrapper.
type rawValue struct {
	Raw *float64 `json:"raw"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile struct {
				Sector              string    `json:"sector"`
				Industry            string    `json:"industry"`
				Website             string    `json:"website"`
				LongBusinessSummary string    `json:"longBusinessSummary"`
				City                string    `json:"city"`
				State               string    `json:"state"`
				Country             string    `json:"country"`
				FullTimeEmployees   *int64    `json:"fullTimeEmployees"`
			} `json:"assetProfile"`
			Price struct {
				Symbol             string   `json:"symbol"`
				LongName           string   `json:"longName"`
				ShortName          string   `json:"shortName"`
				MarketCap          rawValue `json:"marketCap"`
				RegularMarketPrice rawValue `json:"regularMarketPrice"`
			} `json:"price"`
			SummaryDetail struct {
				TrailingPE rawValue `json:"trailingPE"`
			} `json:"summaryDetail"`
			FinancialData struct {
				TotalRevenue  rawValue `json:"totalRevenue"`
				ProfitMargins rawValue `json:"profitMargins"`
				RevenueGrowth rawValue `json:"revenueGrowth"`
				CurrentPrice  rawValue `json:"currentPrice"`
			} `json:"financialData"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

func (c *httpClient) QuoteSummary(ctx context.Context, symbol string) (*Summary, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, eris.New("yahoo: symbol is required")
	}

	url := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s", c.baseURL, symbol, quoteModules)
	if crumb := c.getCrumb(ctx); crumb != "" {
		url += "&crumb=" + crumb
	}

	var qs quoteSummaryResponse
	if err := c.get(ctx, url, &qs); err != nil {
		return nil, eris.Wrapf(err, "yahoo: quote summary %s", symbol)
	}

	if qs.QuoteSummary.Error != nil {
		return nil, eris.Errorf("yahoo: quote summary %s: %s", symbol, qs.QuoteSummary.Error.Description)
	}
	if len(qs.QuoteSummary.Result) == 0 {
		return nil, eris.Errorf("yahoo: no data for symbol %s", symbol)
	}

	r := qs.QuoteSummary.Result[0]
	name := r.Price.LongName
	if name == "" {
		name = r.Price.ShortName
	}
	price := r.FinancialData.CurrentPrice.Raw
	if price == nil {
		price = r.Price.RegularMarketPrice.Raw
	}

	return &Summary{
		Symbol:          symbol,
		Name:            name,
		Sector:          r.AssetProfile.Sector,
		Industry:        r.AssetProfile.Industry,
		Website:         r.AssetProfile.Website,
		BusinessSummary: r.AssetProfile.LongBusinessSummary,
		City:            r.AssetProfile.City,
		State:           r.AssetProfile.State,
		Country:         r.AssetProfile.Country,
		Employees:       r.AssetProfile.FullTimeEmployees,
		MarketCap:       r.Price.MarketCap.Raw,
		TotalRevenue:    r.FinancialData.TotalRevenue.Raw,
		CurrentPrice:    price,
		TrailingPE:      r.SummaryDetail.TrailingPE.Raw,
		ProfitMargin:    r.FinancialData.ProfitMargins.Raw,
		RevenueGrowth:   r.FinancialData.RevenueGrowth.Raw,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
