package corpus_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/HendryAvila/labos/internal/corpus"
)

// ─── Default ────────────────────────────────────────────────────────────────

func TestDefault_Parses(t *testing.T) {
	c, err := corpus.Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	if c.Profile.Name == "" {
		t.Error("profile name is empty")
	}
	if len(c.Projects) == 0 || len(c.Notes) == 0 || len(c.Network) == 0 {
		t.Errorf("projects=%d notes=%d network=%d, want all > 0",
			len(c.Projects), len(c.Notes), len(c.Network))
	}
}

func TestDefault_ProjectIDsUnique(t *testing.T) {
	c, err := corpus.Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	seen := map[string]bool{}
	for _, p := range c.Projects {
		if p.ID == "" {
			t.Fatal("project with empty id")
		}
		if seen[p.ID] {
			t.Errorf("duplicate project id %q", p.ID)
		}
		seen[p.ID] = true
	}
}

func TestDefault_EdgesResolve(t *testing.T) {
	c, err := corpus.Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	nodes := map[string]bool{}
	for _, n := range c.Network {
		nodes[n.ID] = true
	}
	for _, e := range c.Edges {
		if !nodes[e.From] || !nodes[e.To] {
			t.Errorf("edge %s -> %s references unknown node", e.From, e.To)
		}
	}
}

func TestCountKind(t *testing.T) {
	c := &corpus.Corpus{Network: []corpus.NetworkNode{
		{ID: "a", Kind: corpus.KindProject},
		{ID: "b", Kind: corpus.KindResearch},
		{ID: "c", Kind: corpus.KindProject},
	}}
	if got := c.CountKind(corpus.KindProject); got != 2 {
		t.Errorf("CountKind(Project) = %d, want 2", got)
	}
	if got := c.CountKind(corpus.KindOrg); got != 0 {
		t.Errorf("CountKind(Org) = %d, want 0", got)
	}
}

func TestLinksPrimary(t *testing.T) {
	tests := []struct {
		links corpus.Links
		want  string
	}{
		{corpus.Links{Repo: "r", Site: "s"}, "s"},
		{corpus.Links{Repo: "r", Demo: "d"}, "r"},
		{corpus.Links{Demo: "d"}, "d"},
		{corpus.Links{}, ""},
	}
	for _, tt := range tests {
		if got := tt.links.Primary(); got != tt.want {
			t.Errorf("Primary(%+v) = %q, want %q", tt.links, got, tt.want)
		}
	}
}

// ─── Load / Parse ───────────────────────────────────────────────────────────

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.yaml")
	doc := "profile:\n  name: Test\nprojects:\n  - id: p1\n    title: One\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := corpus.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if c.Profile.Name != "Test" {
		t.Errorf("name = %q, want %q", c.Profile.Name, "Test")
	}
	if len(c.Projects) != 1 || c.Projects[0].Title != "One" {
		t.Errorf("projects = %+v, want one titled One", c.Projects)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := corpus.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "corpus: read") {
		t.Errorf("error = %q, want corpus: read prefix", err)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := corpus.Parse([]byte("profile: [unclosed")); err == nil {
		t.Fatal("expected decode error")
	}
}

// ─── Chunks ─────────────────────────────────────────────────────────────────

const validChunk = `---
id: memory-architecture
type: research
title: Memory Architecture
tags: [memory, agents]
confidence: verified
sources: [https://example.com/memory]
last_verified: "2025-01-10"
related: [memory-and-agency]
---

Agents distil episodic traces into durable beliefs.
`

func TestParseChunk_Valid(t *testing.T) {
	c, ok := corpus.ParseChunk(validChunk)
	if !ok {
		t.Fatal("expected chunk to parse")
	}
	if c.ID != "memory-architecture" {
		t.Errorf("ID = %q, want %q", c.ID, "memory-architecture")
	}
	if c.LastVerified != "2025-01-10" {
		t.Errorf("LastVerified = %q, want %q", c.LastVerified, "2025-01-10")
	}
	if c.Content != "Agents distil episodic traces into durable beliefs." {
		t.Errorf("Content = %q", c.Content)
	}
	if len(c.Tags) != 2 || len(c.Related) != 1 {
		t.Errorf("tags=%v related=%v", c.Tags, c.Related)
	}
}

func TestParseChunk_CamelCaseLastVerified(t *testing.T) {
	raw := "---\nid: a\ntype: meta\ntitle: A\nconfidence: inferred\nlastVerified: \"2024-12-01\"\n---\nbody"
	c, ok := corpus.ParseChunk(raw)
	if !ok {
		t.Fatal("expected chunk to parse")
	}
	if c.LastVerified != "2024-12-01" {
		t.Errorf("LastVerified = %q, want %q", c.LastVerified, "2024-12-01")
	}
}

func TestParseChunk_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no frontmatter", "just text"},
		{"missing id", "---\ntype: meta\ntitle: A\nconfidence: verified\n---\nbody"},
		{"missing title", "---\nid: a\ntype: meta\nconfidence: verified\n---\nbody"},
		{"unknown type", "---\nid: a\ntype: gossip\ntitle: A\nconfidence: verified\n---\nbody"},
		{"unknown confidence", "---\nid: a\ntype: meta\ntitle: A\nconfidence: maybe\n---\nbody"},
		{"bad yaml", "---\nid: [a\n---\nbody"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := corpus.ParseChunk(tt.raw); ok {
				t.Error("expected chunk to be rejected")
			}
		})
	}
}

func TestLoadChunksFS_SkipsInvalid(t *testing.T) {
	fsys := fstest.MapFS{
		"b-valid.md":   {Data: []byte(validChunk)},
		"a-invalid.md": {Data: []byte("no frontmatter here")},
		"ignored.txt":  {Data: []byte(validChunk)},
	}
	chunks, err := corpus.LoadChunksFS(fsys)
	if err != nil {
		t.Fatalf("LoadChunksFS() error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].File != "b-valid.md" {
		t.Errorf("File = %q, want %q", chunks[0].File, "b-valid.md")
	}
}

func TestLoadChunks_MissingDir(t *testing.T) {
	chunks, err := corpus.LoadChunks(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("LoadChunks() error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("got %d chunks, want 0", len(chunks))
	}
}

// ─── Apps ───────────────────────────────────────────────────────────────────

func TestResolveApp(t *testing.T) {
	tests := []struct {
		name string
		href string
		ok   bool
	}{
		{"network", "/apps/network", true},
		{" Workbench ", "/apps/projects", true},
		{"desktop", "/desktop", true},
		{"casino", "", false},
	}
	for _, tt := range tests {
		href, ok := corpus.ResolveApp(tt.name)
		if href != tt.href || ok != tt.ok {
			t.Errorf("ResolveApp(%q) = %q, %v; want %q, %v", tt.name, href, ok, tt.href, tt.ok)
		}
	}
}
