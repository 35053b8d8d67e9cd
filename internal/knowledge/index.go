// Package knowledge flattens the corpus into a single list of searchable
// entries tagged with their provenance.
//
// The index is built once and never mutated. Corpus order is preserved and
// is the tie-break order used by retrieval.
package knowledge

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/HendryAvila/labos/internal/corpus"
)

// ErrDuplicateID is returned by Build when two entries share an id.
var ErrDuplicateID = errors.New("knowledge: duplicate entry id")

// ─── Types ───────────────────────────────────────────────────────────────────

// Source is the provenance category of an entry.
type Source string

const (
	SourceProfile Source = "profile"
	SourceProject Source = "project"
	SourceNote    Source = "note"
	SourceNetwork Source = "network"
)

// Sources lists every category in index order.
var Sources = []Source{SourceProfile, SourceProject, SourceNote, SourceNetwork}

// Entry is one searchable unit of the index.
type Entry struct {
	ID            string   `json:"id"`
	Source        Source   `json:"source"`
	Title         string   `json:"title"`
	Body          string   `json:"body"`
	Tags          []string `json:"tags,omitempty"`
	RelatedIDs    []string `json:"related_ids,omitempty"`
	URL           string   `json:"url,omitempty"`
	TokenEstimate int      `json:"token_estimate"`
}

// Stats counts entries per source.
type Stats struct {
	Profile int `json:"profile"`
	Project int `json:"project"`
	Note    int `json:"note"`
	Network int `json:"network"`
	Chunks  int `json:"chunks"`
	Total   int `json:"total"`
	Tokens  int `json:"tokens"`
}

// Index is the immutable, ordered entry list.
type Index struct {
	entries []Entry
	byID    map[string]int
	stats   Stats
}

// ─── Build ───────────────────────────────────────────────────────────────────

// Build flattens c into an Index: the profile, then projects, notes,
// network nodes and chunks in corpus order. A nil corpus yields an empty
// index.
func Build(c *corpus.Corpus) (*Index, error) {
	idx := &Index{byID: make(map[string]int)}
	if c == nil {
		return idx, nil
	}

	if c.Profile.Name != "" {
		if err := idx.add(profileEntry(c.Profile)); err != nil {
			return nil, err
		}
	}

	for _, p := range c.Projects {
		related := make([]string, 0, len(p.Related))
		for _, id := range p.Related {
			related = append(related, NetworkID(id))
		}
		err := idx.add(Entry{
			ID:         ProjectID(p.ID),
			Source:     SourceProject,
			Title:      p.Title,
			Body:       joinSentences(p.Subtitle, p.Summary),
			Tags:       append(append([]string{}, p.Stack...), p.Category),
			RelatedIDs: related,
			URL:        p.Links.Primary(),
		})
		if err != nil {
			return nil, err
		}
	}

	for _, n := range c.Notes {
		body := n.Subtitle
		if n.ReadingTime != "" {
			body = joinSentences(n.Subtitle, "Reading time: "+n.ReadingTime)
		}
		err := idx.add(Entry{
			ID:     NoteID(n.ID),
			Source: SourceNote,
			Title:  n.Title,
			Body:   body,
			Tags:   append([]string{n.Kind}, n.Tags...),
			URL:    n.URL,
		})
		if err != nil {
			return nil, err
		}
	}

	outgoing := make(map[string][]string)
	for _, e := range c.Edges {
		outgoing[e.From] = append(outgoing[e.From], NetworkID(e.To))
	}
	for _, n := range c.Network {
		subtitle := n.Subtitle
		if n.Period != "" {
			subtitle = fmt.Sprintf("%s (%s)", n.Subtitle, n.Period)
		}
		err := idx.add(Entry{
			ID:         NetworkID(n.ID),
			Source:     SourceNetwork,
			Title:      n.Title,
			Body:       joinSentences(subtitle, strings.Join(n.Bullets, " ")),
			Tags:       append([]string{n.Kind}, n.Tags...),
			RelatedIDs: outgoing[n.ID],
			URL:        n.Links.Primary(),
		})
		if err != nil {
			return nil, err
		}
	}

	chunkIDs := make(map[string]bool, len(c.Chunks))
	for _, ch := range c.Chunks {
		chunkIDs[ch.ID] = true
	}
	for _, ch := range c.Chunks {
		related := make([]string, 0, len(ch.Related))
		for _, id := range ch.Related {
			if chunkIDs[id] {
				id = ChunkID(id)
			}
			related = append(related, id)
		}
		url := ""
		if len(ch.Sources) > 0 {
			url = ch.Sources[0]
		}
		err := idx.add(Entry{
			ID:         ChunkID(ch.ID),
			Source:     SourceNote,
			Title:      ch.Title,
			Body:       ch.Content,
			Tags:       append([]string{ch.Type}, ch.Tags...),
			RelatedIDs: related,
			URL:        url,
		})
		if err != nil {
			return nil, err
		}
		idx.stats.Chunks++
	}

	return idx, nil
}

func profileEntry(p corpus.Profile) Entry {
	aliases := []string{p.Name}
	if p.OwnerName != "" {
		aliases = append(aliases, p.OwnerName)
	}
	for _, a := range p.Aliases {
		if strings.TrimSpace(a) != "" {
			aliases = append(aliases, a)
		}
	}
	body := fmt.Sprintf("%s. Focus: %s. Location: %s. Identity aliases: %s.",
		p.Role, p.RoleFocus, p.Location, strings.Join(aliases, ", "))
	return Entry{
		ID:     "profile",
		Source: SourceProfile,
		Title:  p.Name + " profile",
		Body:   body,
		Tags:   append([]string{"identity", "profile", "focus", "location"}, aliases...),
		URL:    p.Website,
	}
}

func (idx *Index) add(e Entry) error {
	if _, dup := idx.byID[e.ID]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicateID, e.ID)
	}
	e.TokenEstimate = TokenEstimate(e.Body)
	idx.byID[e.ID] = len(idx.entries)
	idx.entries = append(idx.entries, e)

	switch e.Source {
	case SourceProfile:
		idx.stats.Profile++
	case SourceProject:
		idx.stats.Project++
	case SourceNote:
		idx.stats.Note++
	case SourceNetwork:
		idx.stats.Network++
	}
	idx.stats.Total++
	idx.stats.Tokens += e.TokenEstimate
	return nil
}

// ─── Accessors ───────────────────────────────────────────────────────────────

// All returns every entry in index order. Callers must not modify it.
func (idx *Index) All() []Entry { return idx.entries }

// Len returns the number of entries.
func (idx *Index) Len() int { return len(idx.entries) }

// ByID returns the entry with the given id.
func (idx *Index) ByID(id string) (Entry, bool) {
	i, ok := idx.byID[id]
	if !ok {
		return Entry{}, false
	}
	return idx.entries[i], true
}

// Position returns the corpus-order position of id, or -1.
func (idx *Index) Position(id string) int {
	if i, ok := idx.byID[id]; ok {
		return i
	}
	return -1
}

// BySource returns the entries of one category in index order.
func (idx *Index) BySource(src Source) []Entry {
	var out []Entry
	for _, e := range idx.entries {
		if e.Source == src {
			out = append(out, e)
		}
	}
	return out
}

// Stats returns per-source entry counts.
func (idx *Index) Stats() Stats { return idx.stats }

// ─── Helpers ─────────────────────────────────────────────────────────────────

// ProjectID, NoteID, NetworkID and ChunkID derive entry ids from corpus ids.
func ProjectID(id string) string { return "project-" + id }
func NoteID(id string) string    { return "note-" + id }
func NetworkID(id string) string { return "network-" + id }
func ChunkID(id string) string   { return "chunk-" + id }

// TokenEstimate approximates the model token count of text as three
// quarters of its word count, minimum 1.
func TokenEstimate(text string) int {
	words := len(strings.Fields(text))
	return max(1, int(math.Ceil(float64(words)*0.75)))
}

func joinSentences(a, b string) string {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return strings.TrimSuffix(a, ".") + ". " + b
}
