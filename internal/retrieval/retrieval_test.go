package retrieval_test

import (
	"testing"

	"github.com/HendryAvila/labos/internal/corpus"
	"github.com/HendryAvila/labos/internal/knowledge"
	"github.com/HendryAvila/labos/internal/retrieval"
)

// newTestIndex builds an index with a small relation graph:
// a -> b -> c -> d, d -> a (cycle), plus x with a dangling relation.
func newTestIndex(t *testing.T) *knowledge.Index {
	t.Helper()
	c := &corpus.Corpus{
		Projects: []corpus.Project{
			{ID: "twin-one", Title: "Signal Twin", Summary: "shared words"},
			{ID: "twin-two", Title: "Signal Twin", Summary: "shared words"},
			{ID: "ghosted", Title: "Ghosted", Related: []string{"ghost", "a"}},
		},
		Notes: []corpus.Note{
			{ID: "memory", Kind: corpus.NoteEssay, Title: "Memory Systems", Subtitle: "memory things", Tags: []string{"memory"}},
			{ID: "empower", Kind: corpus.NoteDeepDive, Title: "The Imperative", Subtitle: "flourishing", Tags: []string{"empowerment"}},
		},
		Network: []corpus.NetworkNode{
			{ID: "a", Title: "Alpha Node"},
			{ID: "b", Title: "Beta Node"},
			{ID: "c", Title: "Gamma Node"},
			{ID: "d", Title: "Delta Node"},
			{ID: "x", Title: "Lone Node"},
		},
		Edges: []corpus.Edge{
			{From: "a", To: "b"},
			{From: "b", To: "c"},
			{From: "c", To: "d"},
			{From: "d", To: "a"},
		},
	}
	idx, err := knowledge.Build(c)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return idx
}

func seed(t *testing.T, idx *knowledge.Index, id string, score int) retrieval.Hit {
	t.Helper()
	e, ok := idx.ByID(id)
	if !ok {
		t.Fatalf("entry %q not found", id)
	}
	return retrieval.Hit{Entry: e, Score: score}
}

func ids(hits []retrieval.Hit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.ID
	}
	return out
}

func assertIDs(t *testing.T, got []retrieval.Hit, want ...string) {
	t.Helper()
	g := ids(got)
	if len(g) != len(want) {
		t.Fatalf("ids = %v, want %v", g, want)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("ids = %v, want %v", g, want)
		}
	}
}

// ─── Tokenize ────────────────────────────────────────────────────────────────

func TestTokenize(t *testing.T) {
	got := retrieval.Tokenize("Memory, memory & AGENTS! a x-y go")
	want := []string{"memory", "agents", "go"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// ─── Search ──────────────────────────────────────────────────────────────────

func TestSearch_ShortTokensEmpty(t *testing.T) {
	idx := newTestIndex(t)
	for _, q := range []string{"", "   ", "a b c", "x - y ! z"} {
		if hits := retrieval.Search(idx, q, 5); len(hits) != 0 {
			t.Errorf("Search(%q) = %v, want empty", q, ids(hits))
		}
	}
}

func TestSearch_Weights(t *testing.T) {
	idx := newTestIndex(t)
	hits := retrieval.Search(idx, "memory", 5)
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1", len(hits))
	}
	// title 4 + tag 3 + body 2
	if hits[0].Score != 9 {
		t.Errorf("score = %d, want 9", hits[0].Score)
	}
}

func TestSearch_SubstringMatch(t *testing.T) {
	idx := newTestIndex(t)
	hits := retrieval.Search(idx, "empower", 5)
	if len(hits) != 1 || hits[0].ID != "note-empower" {
		t.Fatalf("hits = %v, want [note-empower]", ids(hits))
	}
	if hits[0].Score != retrieval.TagWeight {
		t.Errorf("score = %d, want %d", hits[0].Score, retrieval.TagWeight)
	}
}

func TestSearch_StableTies(t *testing.T) {
	idx := newTestIndex(t)
	hits := retrieval.Search(idx, "signal twin", 5)
	assertIDs(t, hits, "project-twin-one", "project-twin-two")
	if hits[0].Score != hits[1].Score {
		t.Errorf("scores %d != %d", hits[0].Score, hits[1].Score)
	}
}

func TestSearch_OrderedByScore(t *testing.T) {
	idx := newTestIndex(t)
	// "node" hits every network title; "alpha" lifts one above the rest.
	hits := retrieval.Search(idx, "alpha node", 10)
	if len(hits) == 0 || hits[0].ID != "network-a" {
		t.Fatalf("first hit = %v, want network-a", ids(hits))
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Errorf("hits not sorted at %d: %v", i, ids(hits))
		}
	}
}

func TestSearch_KClamp(t *testing.T) {
	idx := newTestIndex(t)
	if hits := retrieval.Search(idx, "node", 0); len(hits) != 1 {
		t.Errorf("k=0 returned %d hits, want 1", len(hits))
	}
	if hits := retrieval.Search(idx, "node", 3); len(hits) != 3 {
		t.Errorf("k=3 returned %d hits, want 3", len(hits))
	}
}

// ─── Expand ──────────────────────────────────────────────────────────────────

func TestExpand_DefaultDepth(t *testing.T) {
	idx := newTestIndex(t)
	out := retrieval.Expand(idx, []retrieval.Hit{seed(t, idx, "network-a", 6)}, retrieval.Options{Limit: 10})
	assertIDs(t, out, "network-a", "network-b", "network-c")

	if out[1].Score != 5 || out[2].Score != 4 {
		t.Errorf("scores = %d, %d; want 5, 4", out[1].Score, out[2].Score)
	}
	if out[2].Via != "network-b" || out[2].Depth != 2 {
		t.Errorf("via=%q depth=%d, want network-b 2", out[2].Via, out[2].Depth)
	}
}

func TestExpand_CycleTerminates(t *testing.T) {
	idx := newTestIndex(t)
	out := retrieval.Expand(idx, []retrieval.Hit{seed(t, idx, "network-a", 3)},
		retrieval.Options{Limit: 50, MaxDepth: retrieval.MaxDepth})
	assertIDs(t, out, "network-a", "network-b", "network-c", "network-d")
}

func TestExpand_DepthClamp(t *testing.T) {
	idx := newTestIndex(t)
	s := []retrieval.Hit{seed(t, idx, "network-a", 3)}

	if out := retrieval.Expand(idx, s, retrieval.Options{Limit: 10, MaxDepth: 1}); len(out) != 2 {
		t.Errorf("depth 1: %v", ids(out))
	}
	if out := retrieval.Expand(idx, s, retrieval.Options{Limit: 10, MaxDepth: 99}); len(out) != 4 {
		t.Errorf("depth 99: %v", ids(out))
	}
}

func TestExpand_ScoreFloor(t *testing.T) {
	idx := newTestIndex(t)
	out := retrieval.Expand(idx, []retrieval.Hit{seed(t, idx, "network-a", 1)}, retrieval.Options{Limit: 3})
	for _, h := range out {
		if h.Score != 1 {
			t.Errorf("%s score = %d, want 1", h.ID, h.Score)
		}
	}
}

func TestExpand_GroupsFollowSeed(t *testing.T) {
	idx := newTestIndex(t)
	seeds := []retrieval.Hit{
		seed(t, idx, "network-c", 9),
		seed(t, idx, "network-x", 7),
	}
	out := retrieval.Expand(idx, seeds, retrieval.Options{Limit: 10})
	assertIDs(t, out, "network-c", "network-d", "network-a", "network-x")
}

func TestExpand_SeedAlreadyEmitted(t *testing.T) {
	idx := newTestIndex(t)
	seeds := []retrieval.Hit{
		seed(t, idx, "network-a", 9),
		seed(t, idx, "network-b", 8),
	}
	out := retrieval.Expand(idx, seeds, retrieval.Options{Limit: 10, MaxDepth: 1})
	assertIDs(t, out, "network-a", "network-b")
	if out[1].Via != "network-a" {
		t.Errorf("b via = %q, want network-a (introduced by expansion)", out[1].Via)
	}
}

func TestExpand_DanglingSkipped(t *testing.T) {
	idx := newTestIndex(t)
	out := retrieval.Expand(idx, []retrieval.Hit{seed(t, idx, "project-ghosted", 4)}, retrieval.Options{Limit: 3})
	assertIDs(t, out, "project-ghosted", "network-a", "network-b")
}

func TestExpand_Limit(t *testing.T) {
	idx := newTestIndex(t)
	seeds := []retrieval.Hit{
		seed(t, idx, "network-a", 5),
		seed(t, idx, "network-x", 5),
		seed(t, idx, "note-memory", 5),
	}
	for _, limit := range []int{-1, 0, 1, 2, 3, 5} {
		out := retrieval.Expand(idx, seeds, retrieval.Options{Limit: limit, MaxDepth: 5})
		want := max(limit, 1)
		if len(out) > want {
			t.Errorf("limit %d: got %d hits", limit, len(out))
		}
		seen := map[string]bool{}
		for _, h := range out {
			if seen[h.ID] {
				t.Errorf("limit %d: duplicate %s", limit, h.ID)
			}
			seen[h.ID] = true
		}
	}
}
