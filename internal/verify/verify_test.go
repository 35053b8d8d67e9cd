package verify_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/labos/internal/verify"
)

func serve(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVerify_SendsQueryParams(t *testing.T) {
	var query map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = map[string]string{}
		for k := range r.URL.Query() {
			query[k] = r.URL.Query().Get(k)
		}
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := verify.New(verify.Config{Endpoint: srv.URL}).Verify(context.Background(), "go generics")
	require.NoError(t, err)
	assert.Equal(t, "go generics", query["q"])
	assert.Equal(t, "json", query["format"])
	assert.Equal(t, "1", query["no_html"])
	assert.Equal(t, "1", query["skip_disambig"])
	assert.Equal(t, "1", query["no_redirect"])
}

func TestVerify_AbstractAndRelated(t *testing.T) {
	srv := serve(t, `{
		"Heading": "Go",
		"AbstractText": "Go is a programming language.",
		"AbstractURL": "https://go.dev",
		"RelatedTopics": [
			{"Text": "Gopher - the mascot", "FirstURL": "https://example.com/gopher"},
			{"Name": "Group", "Topics": [
				{"Text": "Goroutine - lightweight thread", "FirstURL": "https://example.com/goroutine"}
			]},
			{"Text": "", "FirstURL": "https://example.com/empty"}
		]
	}`)

	res, err := verify.New(verify.Config{Endpoint: srv.URL}).Verify(context.Background(), "go")
	require.NoError(t, err)
	require.Len(t, res.Sources, 3)
	assert.Equal(t, verify.Source{Title: "Go", URL: "https://go.dev", Snippet: "Go is a programming language."}, res.Sources[0])
	assert.Equal(t, "Gopher", res.Sources[1].Title)
	assert.Equal(t, "Gopher - the mascot", res.Sources[1].Snippet)
	assert.Equal(t, "Goroutine", res.Sources[2].Title)
	assert.Equal(t, `Found 3 web sources for "go". Review citations below.`, res.Summary)
}

func TestVerify_AbstractNeedsURL(t *testing.T) {
	srv := serve(t, `{"AbstractText": "orphan", "AbstractURL": ""}`)
	res, err := verify.New(verify.Config{Endpoint: srv.URL}).Verify(context.Background(), "x")
	require.NoError(t, err)
	assert.Empty(t, res.Sources)
	assert.Equal(t, `No high-confidence web matches were found for "x". Refine the query and retry verify.`, res.Summary)
}

func relatedTopics(urls ...string) string {
	var topics []string
	for _, u := range urls {
		topics = append(topics, `{"Text":"T `+u+`","FirstURL":"https://x/`+u+`"}`)
	}
	return strings.Join(topics, ",")
}

func TestVerify_DedupeByURL(t *testing.T) {
	srv := serve(t, `{"AbstractText":"abs","AbstractURL":"https://x/a","RelatedTopics":[`+relatedTopics("a", "b", "a", "c", "d", "e")+`]}`)

	res, err := verify.New(verify.Config{Endpoint: srv.URL}).Verify(context.Background(), "q")
	require.NoError(t, err)
	var urls []string
	for _, s := range res.Sources {
		urls = append(urls, s.URL)
	}
	// Only the first five related topics are considered.
	assert.Equal(t, []string{"https://x/a", "https://x/b", "https://x/c", "https://x/d"}, urls)
	assert.Equal(t, "T a", res.Sources[0].Snippet)
}

func TestVerify_CapsSources(t *testing.T) {
	srv := serve(t, `{"AbstractText":"abs","AbstractURL":"https://x/z","RelatedTopics":[`+relatedTopics("b", "c", "d", "e", "f")+`]}`)

	res, err := verify.New(verify.Config{Endpoint: srv.URL}).Verify(context.Background(), "q")
	require.NoError(t, err)
	require.Len(t, res.Sources, verify.MaxSources)
	assert.Equal(t, "https://x/z", res.Sources[0].URL)
	assert.Equal(t, "https://x/e", res.Sources[4].URL)
}

func TestVerify_SnippetTruncated(t *testing.T) {
	long := strings.Repeat("y", 400)
	srv := serve(t, `{"AbstractText":"`+long+`","AbstractURL":"https://x"}`)
	res, err := verify.New(verify.Config{Endpoint: srv.URL}).Verify(context.Background(), "q")
	require.NoError(t, err)
	require.Len(t, res.Sources, 1)
	assert.Len(t, res.Sources[0].Snippet, verify.MaxSnippet)
	assert.Equal(t, "Abstract", res.Sources[0].Title)
}

func TestVerify_Upstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := verify.New(verify.Config{Endpoint: srv.URL}).Verify(context.Background(), "q")
	assert.ErrorIs(t, err, verify.ErrUpstream)
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, `Found 1 web source for "q". Review citations below.`, verify.Summarize("q", 1))
}
