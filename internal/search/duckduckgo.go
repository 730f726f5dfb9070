// Package search provides the web-search client used to fetch external
// context. It talks to the DuckDuckGo HTML endpoint, paces its own requests,
// and degrades to an empty result set on any failure; a failed search is
// never an error the chat pipeline has to handle.
package search

import (
	"context"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/glimpselabs/glimpse/internal/engine"
	"github.com/glimpselabs/glimpse/pkg/types"
)

const defaultEndpoint = "https://html.duckduckgo.com/html/"

// Result markup of the DuckDuckGo HTML endpoint.
var (
	resultLinkPattern    = regexp.MustCompile(`(?s)<a[^>]+class="result__a"[^>]+href="([^"]+)"[^>]*>(.*?)</a>`)
	resultSnippetPattern = regexp.MustCompile(`(?s)<a[^>]+class="result__snippet"[^>]*>(.*?)</a>`)
	tagPattern           = regexp.MustCompile(`<[^>]*>`)
)

// Config tunes the search client.
type Config struct {
	// Endpoint overrides the search URL, for tests.
	Endpoint string

	// MaxResults is the default result count when the caller's params leave
	// it unset.
	MaxResults int

	// SafeSearch is "off", "moderate", or "strict".
	SafeSearch string

	// TimeLimit is the default recency window ("d", "w", "m", "y").
	TimeLimit string

	// RequestsPerMinute paces outbound searches. Zero means 30.
	RequestsPerMinute int

	// Timeout bounds a single search request. Zero means 10s.
	Timeout time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Endpoint:          defaultEndpoint,
		MaxResults:        5,
		SafeSearch:        "moderate",
		TimeLimit:         "y",
		RequestsPerMinute: 30,
		Timeout:           10 * time.Second,
	}
}

// Client performs web searches. Safe for concurrent use.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient builds a search client from cfg, filling zero fields with
// defaults.
func NewClient(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.Endpoint == "" {
		cfg.Endpoint = def.Endpoint
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = def.MaxResults
	}
	if cfg.SafeSearch == "" {
		cfg.SafeSearch = def.SafeSearch
	}
	if cfg.TimeLimit == "" {
		cfg.TimeLimit = def.TimeLimit
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = def.RequestsPerMinute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1),
	}
}

// Search runs one query with the given params (nil means client defaults)
// and returns up to MaxResults hits. Failures yield an empty result set.
func (c *Client) Search(ctx context.Context, query string, params *engine.SearchParams) types.WebSearchResponse {
	resp := types.WebSearchResponse{Query: query}
	if strings.TrimSpace(query) == "" {
		return resp
	}

	maxResults := c.cfg.MaxResults
	timeLimit := c.cfg.TimeLimit
	safeSearch := c.cfg.SafeSearch
	if params != nil {
		if params.MaxResults > 0 {
			maxResults = params.MaxResults
		}
		if params.TimeLimit != "" {
			timeLimit = params.TimeLimit
		}
		if params.SafeSearch != "" {
			safeSearch = params.SafeSearch
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return resp
	}

	body, err := c.fetch(ctx, query, timeLimit, safeSearch)
	if err != nil {
		return resp
	}

	resp.Results = parseResults(body, maxResults)
	return resp
}

// SearchFormatted runs a search and renders its plain-text prompt block.
// Returns "" when there are no results.
func (c *Client) SearchFormatted(ctx context.Context, query string, params *engine.SearchParams) string {
	return c.Search(ctx, query, params).Formatted()
}

func (c *Client) fetch(ctx context.Context, query, timeLimit, safeSearch string) (string, error) {
	form := url.Values{}
	form.Set("q", query)
	if timeLimit != "" {
		form.Set("df", timeLimit)
	}
	switch safeSearch {
	case "off":
		form.Set("kp", "-2")
	case "strict":
		form.Set("kp", "1")
	default:
		form.Set("kp", "-1")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "glimpse-assistant/1.0")

	res, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	// Keep pathological responses bounded.
	body, err := io.ReadAll(io.LimitReader(res.Body, 2<<20))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// parseResults extracts (title, href, body) triples from the result markup.
func parseResults(body string, maxResults int) []types.WebSearchResult {
	links := resultLinkPattern.FindAllStringSubmatch(body, -1)
	snippets := resultSnippetPattern.FindAllStringSubmatch(body, -1)

	var results []types.WebSearchResult
	for i, link := range links {
		if len(results) >= maxResults {
			break
		}

		title := cleanFragment(link[2])
		href := resolveHref(link[1])
		var snippet string
		if i < len(snippets) {
			snippet = cleanFragment(snippets[i][1])
		}

		if title == "" && href == "" && snippet == "" {
			continue
		}
		results = append(results, types.WebSearchResult{
			Title: title,
			Href:  href,
			Body:  snippet,
		})
	}
	return results
}

// resolveHref unwraps DuckDuckGo's redirect links (/l/?uddg=<encoded-url>).
func resolveHref(href string) string {
	href = html.UnescapeString(href)
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

func cleanFragment(fragment string) string {
	text := tagPattern.ReplaceAllString(fragment, "")
	return strings.TrimSpace(html.UnescapeString(text))
}
