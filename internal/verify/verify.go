// Package verify looks a claim up on a public web search API and returns a
// short list of citations.
package verify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Limits on the returned citations.
const (
	MaxSources     = 5
	MaxSnippet     = 260
	relatedSources = 5
)

// ErrUpstream reports a non-success response from the search provider.
var ErrUpstream = errors.New("verify: upstream error")

// Source is one web citation.
type Source struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Result is the outcome of one verification.
type Result struct {
	Query   string   `json:"query"`
	Summary string   `json:"summary"`
	Sources []Source `json:"sources"`
}

// Verifier checks a query against the web.
type Verifier interface {
	Verify(ctx context.Context, query string) (Result, error)
}

// ─── Client ──────────────────────────────────────────────────────────────────

// Config holds web verification client configuration.
type Config struct {
	Endpoint string
	Timeout  time.Duration
}

// DefaultConfig returns the DuckDuckGo instant answer defaults.
func DefaultConfig() Config {
	return Config{
		Endpoint: "https://api.duckduckgo.com/",
		Timeout:  8 * time.Second,
	}
}

// Client is a Verifier backed by the DuckDuckGo instant answer API.
type Client struct {
	http     *resty.Client
	endpoint string
}

// New creates a Client.
func New(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.Endpoint == "" {
		cfg.Endpoint = def.Endpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: client, endpoint: cfg.Endpoint}
}

type topic struct {
	Text     string  `json:"Text"`
	FirstURL string  `json:"FirstURL"`
	Topics   []topic `json:"Topics"`
}

type instantAnswer struct {
	AbstractText  string  `json:"AbstractText"`
	AbstractURL   string  `json:"AbstractURL"`
	Heading       string  `json:"Heading"`
	RelatedTopics []topic `json:"RelatedTopics"`
}

// Verify queries the provider and builds the citation list: the abstract
// first, then up to five related topics, de-duplicated by URL.
func (c *Client) Verify(ctx context.Context, query string) (Result, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":             query,
			"format":        "json",
			"no_html":       "1",
			"skip_disambig": "1",
			"no_redirect":   "1",
		}).
		Get(c.endpoint)
	if err != nil {
		return Result{}, fmt.Errorf("verify: request: %w", err)
	}
	if resp.IsError() {
		return Result{}, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode())
	}

	var payload instantAnswer
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return Result{}, fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}
	sources := collectSources(payload)
	return Result{Query: query, Summary: Summarize(query, len(sources)), Sources: sources}, nil
}

func collectSources(p instantAnswer) []Source {
	var sources []Source
	if strings.TrimSpace(p.AbstractText) != "" && p.AbstractURL != "" {
		title := strings.TrimSpace(p.Heading)
		if title == "" {
			title = "Abstract"
		}
		sources = append(sources, Source{
			Title:   title,
			URL:     p.AbstractURL,
			Snippet: truncate(strings.TrimSpace(p.AbstractText), MaxSnippet),
		})
	}

	related := 0
	for _, t := range flatten(p.RelatedTopics) {
		if related == relatedSources {
			break
		}
		text := strings.TrimSpace(t.Text)
		if text == "" || strings.TrimSpace(t.FirstURL) == "" {
			continue
		}
		related++
		title, _, _ := strings.Cut(text, " - ")
		sources = append(sources, Source{
			Title:   strings.TrimSpace(title),
			URL:     t.FirstURL,
			Snippet: truncate(text, MaxSnippet),
		})
	}

	seen := make(map[string]int, len(sources))
	unique := make([]Source, 0, len(sources))
	for _, s := range sources {
		if i, dup := seen[s.URL]; dup {
			unique[i] = s
			continue
		}
		seen[s.URL] = len(unique)
		unique = append(unique, s)
	}
	if len(unique) > MaxSources {
		unique = unique[:MaxSources]
	}
	return unique
}

func flatten(topics []topic) []topic {
	var out []topic
	for _, t := range topics {
		if t.Topics != nil {
			out = append(out, flatten(t.Topics)...)
			continue
		}
		out = append(out, t)
	}
	return out
}

// Summarize renders the one-line verification summary.
func Summarize(query string, n int) string {
	if n == 0 {
		return fmt.Sprintf("No high-confidence web matches were found for %q. Refine the query and retry verify.", query)
	}
	plural := ""
	if n > 1 {
		plural = "s"
	}
	return fmt.Sprintf("Found %d web source%s for %q. Review citations below.", n, plural, query)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
