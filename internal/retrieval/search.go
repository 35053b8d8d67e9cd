// Package retrieval ranks knowledge entries against a free-text query and
// expands ranked hits along entry relations.
package retrieval

import (
	"cmp"
	"regexp"
	"slices"
	"strings"

	"github.com/HendryAvila/labos/internal/knowledge"
)

// Field weights for a token match.
const (
	TitleWeight = 4
	TagWeight   = 3
	BodyWeight  = 2
)

var splitPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Hit is a ranked entry. Depth and Via are set on entries added by Expand.
type Hit struct {
	knowledge.Entry
	Score int    `json:"score"`
	Depth int    `json:"depth,omitempty"`
	Via   string `json:"via,omitempty"`
}

// Tokenize lower-cases text, splits it on non-alphanumeric runs and returns
// the distinct tokens of two or more characters in first-seen order.
func Tokenize(text string) []string {
	parts := splitPattern.Split(strings.ToLower(text), -1)
	seen := make(map[string]bool, len(parts))
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if len(p) < 2 || seen[p] {
			continue
		}
		seen[p] = true
		tokens = append(tokens, p)
	}
	return tokens
}

// Search returns up to k entries of idx with a positive score for query,
// best first. Equal scores keep index order. k <= 0 is treated as 1.
func Search(idx *knowledge.Index, query string, k int) []Hit {
	k = max(k, 1)
	tokens := Tokenize(query)
	if len(tokens) == 0 || idx == nil {
		return nil
	}

	var hits []Hit
	for _, e := range idx.All() {
		if score := Score(tokens, e); score > 0 {
			hits = append(hits, Hit{Entry: e, Score: score})
		}
	}

	slices.SortStableFunc(hits, func(a, b Hit) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// Score sums the weighted substring matches of tokens against e.
func Score(tokens []string, e knowledge.Entry) int {
	title := strings.ToLower(e.Title)
	tags := strings.ToLower(strings.Join(e.Tags, " "))
	body := strings.ToLower(e.Body)

	score := 0
	for _, tok := range tokens {
		if strings.Contains(title, tok) {
			score += TitleWeight
		}
		if strings.Contains(tags, tok) {
			score += TagWeight
		}
		if strings.Contains(body, tok) {
			score += BodyWeight
		}
	}
	return score
}
