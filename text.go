package docbase

import (
	"regexp"
	"strings"
)

// noiseLine matches boilerplate lines that carry no documentation content
// and commonly leak through extraction (theme chrome, copy buttons, etc.).
var noiseLine = regexp.MustCompile(`(?i)^(edit this page|skip to (main )?content|copy(?: to clipboard)?|on this page|table of contents|was this (page|article) helpful\??|share this (page|article))$`)

// zeroWidth strips zero-width and BOM characters.
var zeroWidth = strings.NewReplacer("\u200b", "", "\u200c", "", "\u200d", "", "\ufeff", "")

// Clean normalizes extracted text: line endings unified, horizontal
// whitespace collapsed, boilerplate lines removed, consecutive duplicate
// paragraphs dropped, paragraphs separated by a single blank line.
// Clean is idempotent: Clean(Clean(x)) == Clean(x).
func Clean(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = zeroWidth.Replace(s)

	var paragraphs []string
	var lines []string
	flush := func() {
		if len(lines) > 0 {
			para := strings.Join(lines, "\n")
			// Drop a paragraph identical to its predecessor; repeated
			// blocks are almost always template artifacts.
			if len(paragraphs) == 0 || paragraphs[len(paragraphs)-1] != para {
				paragraphs = append(paragraphs, para)
			}
			lines = nil
		}
	}

	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			flush()
			continue
		}
		if noiseLine.MatchString(line) {
			continue
		}
		lines = append(lines, line)
	}
	flush()

	return strings.Join(paragraphs, "\n\n")
}

// NormalizeQuery lower-cases text and collapses every non-alphanumeric run
// to a single space, making downstream comparison case- and
// punctuation-insensitive.
func NormalizeQuery(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	prevSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			prevSpace = false
		default:
			if !prevSpace {
				sb.WriteByte(' ')
				prevSpace = true
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

// stopwords are excluded from significant-token scoring.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "can": true, "do": true, "does": true, "for": true,
	"from": true, "i": true, "in": true, "is": true, "it": true, "my": true,
	"of": true, "on": true, "or": true, "that": true, "the": true, "this": true,
	"to": true, "with": true, "you": true, "your": true,
}

// Tokenize returns the normalized significant words of a query: stopwords
// and single characters are removed.
func Tokenize(s string) []string {
	var tokens []string
	for _, word := range strings.Fields(NormalizeQuery(s)) {
		if len(word) < 2 || stopwords[word] {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}
