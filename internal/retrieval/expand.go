package retrieval

import "github.com/HendryAvila/labos/internal/knowledge"

// Depth bounds for Expand.
const (
	DefaultDepth = 2
	MaxDepth     = 5
)

// Options bounds an expansion.
type Options struct {
	// Limit caps the output size. Values <= 0 are treated as 1.
	Limit int
	// MaxDepth bounds the relation walk per seed. 0 means DefaultDepth;
	// values are clamped to 1..MaxDepth.
	MaxDepth int
}

// Expand walks the relations of each seed breadth-first and returns the
// seeds interleaved with the entries they introduce. An introduced entry
// scores one less than its introducer (minimum 1) and follows its seed's
// group. Every id appears at most once and is traversed at most once, so
// cycles in the relation graph terminate. Relations that do not resolve in
// idx are skipped.
func Expand(idx *knowledge.Index, seeds []Hit, opts Options) []Hit {
	limit := max(opts.Limit, 1)
	depth := opts.MaxDepth
	if depth <= 0 {
		depth = DefaultDepth
	}
	depth = min(depth, MaxDepth)

	visited := make(map[string]bool, limit)
	out := make([]Hit, 0, limit)

	for _, seed := range seeds {
		if len(out) >= limit {
			break
		}
		if visited[seed.ID] {
			continue
		}
		visited[seed.ID] = true
		seed.Depth, seed.Via = 0, ""
		out = append(out, seed)

		queue := []Hit{seed}
		for len(queue) > 0 && len(out) < limit {
			current := queue[0]
			queue = queue[1:]

			if current.Depth >= depth || idx == nil {
				continue
			}
			for _, id := range current.RelatedIDs {
				if visited[id] {
					continue
				}
				entry, ok := idx.ByID(id)
				if !ok {
					continue
				}
				visited[id] = true

				hit := Hit{
					Entry: entry,
					Score: max(current.Score-1, 1),
					Depth: current.Depth + 1,
					Via:   current.ID,
				}
				out = append(out, hit)
				queue = append(queue, hit)
				if len(out) >= limit {
					break
				}
			}
		}
	}
	return out
}
