package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Chunk types accepted in frontmatter.
var chunkTypes = []string{"identity", "experience", "project", "research", "capability", "meta"}

// Confidence levels accepted in frontmatter.
var chunkConfidence = []string{"verified", "self-reported", "inferred"}

var frontmatterPattern = regexp.MustCompile(`(?s)^---\n(.*?)\n---\n?(.*)$`)

// Chunk is one long-form knowledge unit authored as markdown.
type Chunk struct {
	ID           string   `yaml:"id" json:"id"`
	Type         string   `yaml:"type" json:"type"`
	Title        string   `yaml:"title" json:"title"`
	Tags         []string `yaml:"tags" json:"tags,omitempty"`
	Confidence   string   `yaml:"confidence" json:"confidence"`
	Sources      []string `yaml:"sources" json:"sources,omitempty"`
	LastVerified string   `yaml:"last_verified" json:"last_verified"`
	Related      []string `yaml:"related" json:"related,omitempty"`
	Content      string   `yaml:"-" json:"content"`
	File         string   `yaml:"-" json:"file"`
}

// chunkHeader mirrors the frontmatter; camelCase lastVerified is accepted
// as a fallback key.
type chunkHeader struct {
	Chunk         `yaml:",inline"`
	LastVerifiedC string `yaml:"lastVerified"`
}

// LoadChunks reads every *.md file in dir. A missing directory yields no
// chunks and no error.
func LoadChunks(dir string) ([]Chunk, error) {
	if dir == "" {
		return nil, nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	return LoadChunksFS(os.DirFS(dir))
}

// LoadChunksFS reads every *.md file at the root of fsys in name order.
// Files without valid frontmatter are skipped.
func LoadChunksFS(fsys fs.FS) ([]Chunk, error) {
	names, err := fs.Glob(fsys, "*.md")
	if err != nil {
		return nil, fmt.Errorf("corpus: list chunks: %w", err)
	}

	var chunks []Chunk
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("corpus: read chunk %s: %w", name, err)
		}
		chunk, ok := ParseChunk(string(raw))
		if !ok {
			continue
		}
		chunk.File = path.Base(name)
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// ParseChunk splits a markdown document into frontmatter and body. It
// reports false when the frontmatter is missing or incomplete.
func ParseChunk(raw string) (Chunk, bool) {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	m := frontmatterPattern.FindStringSubmatch(raw)
	if m == nil {
		return Chunk{}, false
	}

	var h chunkHeader
	if err := yaml.Unmarshal([]byte(m[1]), &h); err != nil {
		return Chunk{}, false
	}
	c := h.Chunk
	c.ID = strings.TrimSpace(c.ID)
	c.Title = strings.TrimSpace(c.Title)
	if c.ID == "" || c.Title == "" {
		return Chunk{}, false
	}
	if !slices.Contains(chunkTypes, c.Type) || !slices.Contains(chunkConfidence, c.Confidence) {
		return Chunk{}, false
	}
	if c.LastVerified == "" {
		c.LastVerified = h.LastVerifiedC
	}
	if c.LastVerified == "" {
		c.LastVerified = time.Now().UTC().Format("2006-01-02")
	}
	c.Tags = trimAll(c.Tags)
	c.Sources = trimAll(c.Sources)
	c.Related = trimAll(c.Related)
	c.Content = strings.TrimSpace(m[2])
	return c, true
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
