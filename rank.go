package docbase

import (
	"sort"
	"strings"
)

// Ranking parameters.
const (
	// DefaultTopK is the number of chunks returned to the answer generator.
	DefaultTopK = 6

	// MaxRankCandidates bounds the candidate set scored per query.
	MaxRankCandidates = 2000

	// noiseTextChars is the length below which a chunk is penalized as
	// probable boilerplate.
	noiseTextChars = 120
)

// Scoring weights. The absolute values are tunable; the relative ordering
// (exact > phrase > token, title > section > text) is the contract.
const (
	weightExactTitle   = 12.0
	weightExactSection = 8.0
	weightExactText    = 6.0

	weightPhraseTitle   = 3.0
	weightPhraseSection = 2.0
	weightPhraseText    = 1.5

	weightTokenTitle   = 2.0
	weightTokenSection = 1.5
	weightTokenText    = 1.0

	synonymFactor = 0.5

	intentBonus        = 2.0
	shortChunkPenalty  = 3.0
	coincidencePenalty = 2.5
)

// synonyms expands common query terms with related lower-weight tokens.
// Compiled in rather than configurable; the list is small and changes
// rarely.
var synonyms = map[string][]string{
	"best":    {"optimal", "top", "recommended"},
	"craft":   {"crafting", "recipe", "recipes"},
	"drop":    {"drops", "loot"},
	"error":   {"errors", "troubleshooting"},
	"fight":   {"combat", "battle", "boss"},
	"get":     {"obtain", "acquire", "find"},
	"install": {"installation", "setup"},
	"level":   {"leveling", "levels", "experience"},
	"upgrade": {"upgrades", "enhance", "improve"},
	"use":     {"usage", "using"},
}

// intentWords earn a bonus when they appear in both the query and the
// chunk's title or section.
var intentWords = map[string]bool{
	"how": true, "where": true, "what": true,
	"drop": true, "craft": true, "get": true, "use": true,
	"fight": true, "best": true, "level": true, "upgrade": true,
}

// ScoredCandidate pairs a chunk with its relevance score for one query.
// It is ephemeral: created per query and discarded after top-K selection.
type ScoredCandidate struct {
	Chunk Chunk
	Score float64
}

// Score computes the lexical relevance of a chunk to a free-text query.
// Signals are combined additively: exact normalized substring match
// (strongest, title above section above body), bigram/trigram phrase
// overlap, per-token field membership, synonym and intent-word expansion,
// and penalties for very short chunks and single-token coincidence matches.
// Query and chunk text are normalized first, so scoring is case- and
// punctuation-insensitive.
func Score(query string, c Chunk) float64 {
	nq := NormalizeQuery(query)
	if nq == "" {
		return 0
	}

	title := NormalizeQuery(c.Title)
	section := NormalizeQuery(c.Section)
	text := NormalizeQuery(c.Text)

	var score float64

	// Exact normalized-query substring: the single strongest signal.
	if strings.Contains(title, nq) {
		score += weightExactTitle
	}
	if strings.Contains(section, nq) {
		score += weightExactSection
	}
	if strings.Contains(text, nq) {
		score += weightExactText
	}

	// Phrase overlap: multi-word sequences beat independent word hits.
	words := strings.Fields(nq)
	for _, n := range []int{2, 3} {
		for i := 0; i+n <= len(words); i++ {
			phrase := strings.Join(words[i:i+n], " ")
			if strings.Contains(title, phrase) {
				score += weightPhraseTitle
			}
			if strings.Contains(section, phrase) {
				score += weightPhraseSection
			}
			if strings.Contains(text, phrase) {
				score += weightPhraseText
			}
		}
	}

	// Token membership, title weighted highest.
	tokens := Tokenize(query)
	matched := 0
	for _, tok := range tokens {
		hit := false
		if hasWord(title, tok) {
			score += weightTokenTitle
			hit = true
		}
		if hasWord(section, tok) {
			score += weightTokenSection
			hit = true
		}
		if hasWord(text, tok) {
			score += weightTokenText
			hit = true
		}
		if hit {
			matched++
		}

		for _, syn := range synonyms[tok] {
			if hasWord(title, syn) {
				score += weightTokenTitle * synonymFactor
			}
			if hasWord(section, syn) {
				score += weightTokenSection * synonymFactor
			}
			if hasWord(text, syn) {
				score += weightTokenText * synonymFactor
			}
		}
	}

	// Intent bonus: the query asks "how"/"craft"/... and the chunk's title
	// or section uses the same word.
	for _, w := range words {
		if intentWords[w] && (hasWord(title, w) || hasWord(section, w)) {
			score += intentBonus
			break
		}
	}

	// Very short chunks are statistically likely to be boilerplate.
	if len(c.Text) < noiseTextChars {
		score -= shortChunkPenalty
	}

	// A multi-word query matching at most one significant word is usually a
	// coincidence; keep it from inflating short chunks.
	if len(tokens) >= 3 && matched <= 1 {
		score -= coincidencePenalty
	}

	return score
}

// hasWord reports whether the normalized field contains tok as a whole word.
func hasWord(field, tok string) bool {
	return strings.Contains(" "+field+" ", " "+tok+" ")
}

// RankOptions configures Rank.
type RankOptions struct {
	// K is the maximum number of candidates returned. Zero means
	// DefaultTopK.
	K int
}

// Rank scores candidates against the query and returns the top K by
// descending score. Only strictly positive scores are kept: when nothing
// scores positive Rank returns an empty slice (strict policy); permissive
// fallback behavior belongs to the caller, see Searcher. Ties break on
// (title, section, id) so results are deterministic.
func Rank(query string, candidates []Chunk, opts RankOptions) []ScoredCandidate {
	k := opts.K
	if k <= 0 {
		k = DefaultTopK
	}
	if len(candidates) > MaxRankCandidates {
		candidates = candidates[:MaxRankCandidates]
	}

	scored := make([]ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, ScoredCandidate{Chunk: c, Score: Score(query, c)})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		a, b := scored[i].Chunk, scored[j].Chunk
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		if a.Section != b.Section {
			return a.Section < b.Section
		}
		return a.ID < b.ID
	})

	out := make([]ScoredCandidate, 0, k)
	for _, sc := range scored {
		if sc.Score <= 0 {
			break
		}
		out = append(out, sc)
		if len(out) == k {
			break
		}
	}
	return out
}
