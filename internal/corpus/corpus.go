// Package corpus holds the static content tables behind the portfolio
// terminal: the owner profile, workbench projects, lab notes, the
// relationship graph and long-form knowledge chunks.
//
// The corpus is read-only after load. It is authored as YAML (an embedded
// default ships with the binary) plus optional markdown chunks carrying a
// YAML frontmatter block.
package corpus

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// ─── Types ───────────────────────────────────────────────────────────────────

// Social holds public profile links.
type Social struct {
	GitHub   string `yaml:"github" json:"github,omitempty"`
	LinkedIn string `yaml:"linkedin" json:"linkedin,omitempty"`
}

// Profile is the owner identity record.
type Profile struct {
	Name      string   `yaml:"name" json:"name"`
	OwnerName string   `yaml:"owner_name" json:"owner_name,omitempty"`
	Aliases   []string `yaml:"aliases" json:"aliases,omitempty"`
	Role      string   `yaml:"role" json:"role"`
	RoleFocus string   `yaml:"role_focus" json:"role_focus"`
	Location  string   `yaml:"location" json:"location"`
	Email     string   `yaml:"email" json:"email"`
	Phone     string   `yaml:"phone" json:"phone,omitempty"`
	Website   string   `yaml:"website" json:"website,omitempty"`
	ResumeURL string   `yaml:"resume_url" json:"resume_url,omitempty"`
	Social    Social   `yaml:"social" json:"social"`
	Focus     []string `yaml:"focus" json:"focus,omitempty"`
}

// Links groups the optional outbound links of a project or graph node.
type Links struct {
	Site    string `yaml:"site" json:"site,omitempty"`
	Repo    string `yaml:"repo" json:"repo,omitempty"`
	Article string `yaml:"article" json:"article,omitempty"`
	Demo    string `yaml:"demo" json:"demo,omitempty"`
}

// Primary returns the preferred link: site, then repo, article, demo.
func (l Links) Primary() string {
	for _, v := range []string{l.Site, l.Repo, l.Article, l.Demo} {
		if v != "" {
			return v
		}
	}
	return ""
}

// Project is one workbench item.
type Project struct {
	ID         string   `yaml:"id" json:"id"`
	Category   string   `yaml:"category" json:"category"`
	Title      string   `yaml:"title" json:"title"`
	Subtitle   string   `yaml:"subtitle" json:"subtitle"`
	Summary    string   `yaml:"summary" json:"summary"`
	Stack      []string `yaml:"stack" json:"stack,omitempty"`
	Links      Links    `yaml:"links" json:"links"`
	Highlights []string `yaml:"highlights" json:"highlights,omitempty"`
	// Related lists network node ids this project is part of.
	Related []string `yaml:"related" json:"related,omitempty"`
}

// Note kinds.
const (
	NoteDeepDive = "Deep Dive"
	NoteNews     = "News"
	NoteEssay    = "Essay"
)

// Note is one lab note (article, essay, news item).
type Note struct {
	ID          string   `yaml:"id" json:"id"`
	Kind        string   `yaml:"kind" json:"kind"`
	Title       string   `yaml:"title" json:"title"`
	Subtitle    string   `yaml:"subtitle" json:"subtitle"`
	ReadingTime string   `yaml:"reading_time" json:"reading_time"`
	URL         string   `yaml:"url" json:"url"`
	Tags        []string `yaml:"tags" json:"tags,omitempty"`
}

// Network node kinds.
const (
	KindEducation  = "Education"
	KindResearch   = "Research"
	KindProject    = "Project"
	KindOrg        = "Org"
	KindEvent      = "Event"
	KindExperience = "Experience"
)

// NetworkNode is one node of the career/research relationship graph.
type NetworkNode struct {
	ID       string   `yaml:"id" json:"id"`
	Kind     string   `yaml:"kind" json:"kind"`
	Title    string   `yaml:"title" json:"title"`
	Subtitle string   `yaml:"subtitle" json:"subtitle"`
	Period   string   `yaml:"period" json:"period,omitempty"`
	Weight   int      `yaml:"weight" json:"weight"`
	Tags     []string `yaml:"tags" json:"tags,omitempty"`
	Bullets  []string `yaml:"bullets" json:"bullets,omitempty"`
	Links    Links    `yaml:"links" json:"links"`
}

// Edge is a directed idea link between two network nodes.
type Edge struct {
	From     string `yaml:"from" json:"from"`
	To       string `yaml:"to" json:"to"`
	Idea     string `yaml:"idea" json:"idea"`
	Strength int    `yaml:"strength" json:"strength,omitempty"`
}

// Corpus is the complete read-only content bundle.
type Corpus struct {
	Profile  Profile       `yaml:"profile"`
	Projects []Project     `yaml:"projects"`
	Notes    []Note        `yaml:"notes"`
	Network  []NetworkNode `yaml:"network"`
	Edges    []Edge        `yaml:"edges"`
	Chunks   []Chunk       `yaml:"-"`
}

// CountKind returns how many network nodes have the given kind.
func (c *Corpus) CountKind(kind string) int {
	n := 0
	for _, node := range c.Network {
		if node.Kind == kind {
			n++
		}
	}
	return n
}

// ─── Loading ─────────────────────────────────────────────────────────────────

// Default returns the corpus embedded in the binary.
func Default() (*Corpus, error) {
	return Parse(defaultYAML)
}

// Load reads a corpus YAML document from disk.
func Load(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a corpus YAML document.
func Parse(data []byte) (*Corpus, error) {
	var c Corpus
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("corpus: decode: %w", err)
	}
	return &c, nil
}
