package docbase

import (
	"strings"
	"unicode/utf8"
)

// Citation validation limits.
const (
	// MaxCitations caps how many citations survive validation.
	MaxCitations = 3

	// MaxQuoteChars clamps a citation's evidence excerpt.
	MaxQuoteChars = 160

	// DisclosurePrefix is prepended to an answer downgraded from grounded
	// to advisory after validation emptied its citation set.
	DisclosurePrefix = "No matching documentation was found for this question. "
)

// Answer modes. A grounded answer claims to be backed by the supplied
// sources; an advisory answer is general guidance.
const (
	ModeGrounded = "grounded"
	ModeAdvisory = "advisory"
)

// Citation references a source chunk by title and section, optionally with
// a source index and a short evidence excerpt.
type Citation struct {
	Title       string `json:"title"`
	Section     string `json:"section"`
	SourceIndex int    `json:"sourceIndex,omitempty"`
	Quote       string `json:"quote,omitempty"`
}

// Answer is the structured response from the answer generator.
type Answer struct {
	Mode      string     `json:"mode"`
	Text      string     `json:"text"`
	FollowUps []string   `json:"followUps,omitempty"`
	Citations []Citation `json:"citations,omitempty"`
}

// ValidateAnswer enforces the anti-hallucination guarantee against a
// possibly-unreliable answer generator. Citations whose (title, section)
// pair does not match one of the exposed source chunks are dropped;
// survivors are deduplicated by pair and capped at MaxCitations, with
// excerpts clamped to MaxQuoteChars. A grounded answer left with zero valid
// citations is downgraded to advisory and its text gains DisclosurePrefix:
// an answer can never claim source-grounding without at least one citation
// surviving validation.
func ValidateAnswer(ans *Answer, sources []Chunk) *Answer {
	if ans == nil {
		return nil
	}
	out := *ans

	var kept []Citation
	seen := make(map[string]bool)
	for _, cit := range ans.Citations {
		if !citationMatches(cit, sources) {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(cit.Title)) + "\x00" +
			strings.ToLower(strings.TrimSpace(cit.Section))
		if seen[key] {
			continue
		}
		seen[key] = true

		cit.Quote = clampQuote(cit.Quote)
		kept = append(kept, cit)
		if len(kept) == MaxCitations {
			break
		}
	}
	out.Citations = kept

	if out.Mode == ModeGrounded && len(kept) == 0 {
		out.Mode = ModeAdvisory
		if !strings.HasPrefix(out.Text, DisclosurePrefix) {
			out.Text = DisclosurePrefix + out.Text
		}
	}
	return &out
}

// clampQuote truncates an excerpt to MaxQuoteChars without splitting a
// multi-byte rune.
func clampQuote(quote string) string {
	if len(quote) <= MaxQuoteChars {
		return quote
	}
	cut := MaxQuoteChars
	for cut > 0 && !utf8.RuneStart(quote[cut]) {
		cut--
	}
	return quote[:cut]
}

// citationMatches reports whether a citation's (title, section) pair
// case-insensitively matches one of the exposed chunks.
func citationMatches(cit Citation, sources []Chunk) bool {
	title := strings.TrimSpace(cit.Title)
	section := strings.TrimSpace(cit.Section)
	for _, src := range sources {
		if strings.EqualFold(src.Title, title) && strings.EqualFold(src.Section, section) {
			return true
		}
	}
	return false
}
