package docbase

import (
	"context"
	"sort"
)

// BuildIndex assembles chunks from all crawled pages into the persisted
// collection. Chunks are deduplicated by id with last-write-wins semantics
// and sorted by (title, section, id) so that repeated crawls of identical
// pages produce byte-identical artifacts.
func BuildIndex(chunks []Chunk) []Chunk {
	byID := make(map[string]int, len(chunks))
	out := make([]Chunk, 0, len(chunks))

	for _, c := range chunks {
		if idx, ok := byID[c.ID]; ok {
			out[idx] = c
			continue
		}
		byID[c.ID] = len(out)
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		if out[i].Section != out[j].Section {
			return out[i].Section < out[j].Section
		}
		return out[i].ID < out[j].ID
	})

	return out
}

// ChunkStore persists the chunk collection. Every write replaces the
// artifact wholesale; there are no incremental updates.
type ChunkStore interface {
	// WriteChunks replaces the persisted collection.
	WriteChunks(ctx context.Context, chunks []Chunk) error

	// LoadChunks reads the whole persisted collection.
	// Returns ENOTFOUND if no artifact exists.
	LoadChunks(ctx context.Context) ([]Chunk, error)
}
