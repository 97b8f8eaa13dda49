package docbase

import "context"

// Searcher implements two-tier retrieval: client-supplied candidates are
// ranked first; when none of them scores positive, the full persisted
// artifact is loaded (capped for cost control) and re-ranked.
type Searcher struct {
	// Store provides the persisted artifact for second-tier retrieval.
	Store ChunkStore

	// MaxCandidates caps how many stored chunks are scored per query.
	// Zero means MaxRankCandidates.
	MaxCandidates int

	// K is the number of results returned. Zero means DefaultTopK.
	K int
}

// Search ranks candidates for the query. If candidates is empty or nothing
// in it scores positive, the persisted artifact is consulted instead. A
// missing artifact surfaces as ENOTFOUND from the store; it is never
// silently reported as "no relevant sources".
func (s *Searcher) Search(ctx context.Context, query string, candidates []Chunk) ([]ScoredCandidate, error) {
	opts := RankOptions{K: s.K}

	if len(candidates) > 0 {
		if ranked := Rank(query, candidates, opts); len(ranked) > 0 {
			return ranked, nil
		}
	}

	if s.Store == nil {
		return nil, nil
	}

	all, err := s.Store.LoadChunks(ctx)
	if err != nil {
		return nil, err
	}

	maxC := s.MaxCandidates
	if maxC <= 0 || maxC > MaxRankCandidates {
		maxC = MaxRankCandidates
	}
	if len(all) > maxC {
		all = all[:maxC]
	}

	return Rank(query, all, opts), nil
}
