package knowledge_test

import (
	"errors"
	"testing"

	"github.com/HendryAvila/labos/internal/corpus"
	"github.com/HendryAvila/labos/internal/knowledge"
)

func testCorpus() *corpus.Corpus {
	return &corpus.Corpus{
		Profile: corpus.Profile{
			Name:      "DG-Labs",
			OwnerName: "Dessi",
			Aliases:   []string{"dg", " "},
			Role:      "Creative Technologist",
			RoleFocus: "tools that feel alive",
			Location:  "Remote",
			Website:   "dg-labs",
		},
		Projects: []corpus.Project{
			{ID: "alpha", Category: "Platforms", Title: "Alpha", Subtitle: "First", Summary: "The first one.",
				Stack: []string{"Go"}, Links: corpus.Links{Repo: "https://example.com/alpha"}, Related: []string{"n1"}},
		},
		Notes: []corpus.Note{
			{ID: "essay", Kind: corpus.NoteEssay, Title: "Essay", Subtitle: "Thoughts", ReadingTime: "5 min", Tags: []string{"ethics"}},
		},
		Network: []corpus.NetworkNode{
			{ID: "n1", Kind: corpus.KindProject, Title: "Node One", Subtitle: "Lab", Period: "2025", Bullets: []string{"Did things."}},
			{ID: "n2", Kind: corpus.KindResearch, Title: "Node Two", Subtitle: "Lab"},
		},
		Edges: []corpus.Edge{
			{From: "n1", To: "n2", Idea: "a"},
			{From: "n2", To: "n1", Idea: "b"},
		},
		Chunks: []corpus.Chunk{
			{ID: "c1", Type: "research", Title: "Chunk", Content: "one two three four five", Related: []string{"c1", "note-essay"}},
		},
	}
}

func buildIndex(t *testing.T) *knowledge.Index {
	t.Helper()
	idx, err := knowledge.Build(testCorpus())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return idx
}

// ─── Build ───────────────────────────────────────────────────────────────────

func TestBuild_Order(t *testing.T) {
	idx := buildIndex(t)
	want := []string{"profile", "project-alpha", "note-essay", "network-n1", "network-n2", "chunk-c1"}
	all := idx.All()
	if len(all) != len(want) {
		t.Fatalf("got %d entries, want %d", len(all), len(want))
	}
	for i, id := range want {
		if all[i].ID != id {
			t.Errorf("entry[%d] = %q, want %q", i, all[i].ID, id)
		}
		if idx.Position(id) != i {
			t.Errorf("Position(%q) = %d, want %d", id, idx.Position(id), i)
		}
	}
}

func TestBuild_Relations(t *testing.T) {
	idx := buildIndex(t)

	p, _ := idx.ByID("project-alpha")
	if len(p.RelatedIDs) != 1 || p.RelatedIDs[0] != "network-n1" {
		t.Errorf("project related = %v, want [network-n1]", p.RelatedIDs)
	}
	n, _ := idx.ByID("network-n1")
	if len(n.RelatedIDs) != 1 || n.RelatedIDs[0] != "network-n2" {
		t.Errorf("node related = %v, want [network-n2]", n.RelatedIDs)
	}
	c, _ := idx.ByID("chunk-c1")
	if len(c.RelatedIDs) != 2 || c.RelatedIDs[0] != "chunk-c1" || c.RelatedIDs[1] != "note-essay" {
		t.Errorf("chunk related = %v", c.RelatedIDs)
	}
}

func TestBuild_ProfileEntry(t *testing.T) {
	idx := buildIndex(t)
	p, ok := idx.ByID("profile")
	if !ok {
		t.Fatal("profile entry missing")
	}
	if p.Title != "DG-Labs profile" {
		t.Errorf("Title = %q, want %q", p.Title, "DG-Labs profile")
	}
	found := false
	for _, tag := range p.Tags {
		if tag == "Dessi" {
			found = true
		}
		if tag == " " {
			t.Error("blank alias kept in tags")
		}
	}
	if !found {
		t.Errorf("tags %v missing owner alias", p.Tags)
	}
}

func TestBuild_DuplicateID(t *testing.T) {
	c := testCorpus()
	c.Projects = append(c.Projects, corpus.Project{ID: "alpha", Title: "Again"})
	_, err := knowledge.Build(c)
	if !errors.Is(err, knowledge.ErrDuplicateID) {
		t.Errorf("err = %v, want ErrDuplicateID", err)
	}
}

func TestBuild_EmptySources(t *testing.T) {
	idx, err := knowledge.Build(&corpus.Corpus{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if idx.Len() != 0 {
		t.Errorf("Len() = %d, want 0", idx.Len())
	}

	nilIdx, err := knowledge.Build(nil)
	if err != nil || nilIdx.Len() != 0 {
		t.Errorf("Build(nil) = %d entries, err %v", nilIdx.Len(), err)
	}
}

func TestBuild_DefaultCorpus(t *testing.T) {
	c, err := corpus.Default()
	if err != nil {
		t.Fatal(err)
	}
	idx, err := knowledge.Build(c)
	if err != nil {
		t.Fatalf("Build(default) error: %v", err)
	}
	if idx.Len() != 1+len(c.Projects)+len(c.Notes)+len(c.Network) {
		t.Errorf("Len() = %d", idx.Len())
	}
}

// ─── Accessors ───────────────────────────────────────────────────────────────

func TestBySource(t *testing.T) {
	idx := buildIndex(t)
	if got := len(idx.BySource(knowledge.SourceNetwork)); got != 2 {
		t.Errorf("network entries = %d, want 2", got)
	}
	// Chunks count as notes.
	if got := len(idx.BySource(knowledge.SourceNote)); got != 2 {
		t.Errorf("note entries = %d, want 2", got)
	}
}

func TestStats(t *testing.T) {
	s := buildIndex(t).Stats()
	if s.Profile != 1 || s.Project != 1 || s.Note != 2 || s.Network != 2 || s.Chunks != 1 || s.Total != 6 {
		t.Errorf("Stats() = %+v", s)
	}
	if s.Tokens <= 0 {
		t.Errorf("Tokens = %d, want > 0", s.Tokens)
	}
}

func TestByID_Missing(t *testing.T) {
	if _, ok := buildIndex(t).ByID("nope"); ok {
		t.Error("expected missing entry")
	}
}

// ─── TokenEstimate / Classify ────────────────────────────────────────────────

func TestTokenEstimate(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 1},
		{"one", 1},
		{"one two three four", 3},
		{"one two three four five", 4},
	}
	for _, tt := range tests {
		if got := knowledge.TokenEstimate(tt.text); got != tt.want {
			t.Errorf("TokenEstimate(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		query string
		want  knowledge.Class
	}{
		{"tell me about yourself", knowledge.ClassIdentity},
		{"what platform have you built", knowledge.ClassProject},
		{"summarize the phenomenology research", knowledge.ClassResearch},
		{"which python stack", knowledge.ClassCapability},
		{"can you prove it with evidence", knowledge.ClassVerification},
		{"open the notes app", knowledge.ClassNavigation},
		{"zzz", knowledge.ClassIdentity},
	}
	for _, tt := range tests {
		if got := knowledge.Classify(tt.query); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}
