package docbase

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Chunk size bounds. Chunks shorter than MinChunkChars are discarded as
// noise; text longer than the target size is split.
const (
	MinChunkChars       = 80
	DefaultChunkSize    = 1400
	DefaultChunkOverlap = 200
)

// Chunk is a bounded-size, citation-addressable unit of extracted text with
// stable identity. It is the persisted unit of the knowledge base.
type Chunk struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Section string `json:"section"`
	URL     string `json:"url"`
	Text    string `json:"text"`
}

// Validate returns an error if the chunk contains invalid fields.
func (c *Chunk) Validate() error {
	if c.URL == "" {
		return Errorf(EINVALID, "chunk URL required")
	}
	if c.Text == "" {
		return Errorf(EINVALID, "chunk text required")
	}
	return nil
}

// ChunkID computes the stable identifier for a chunk. It is a pure function
// of the source URL, section label and per-section sequence index: identical
// inputs yield a byte-identical id across runs.
func ChunkID(url, section string, seq int) string {
	h := xxhash.New()
	_, _ = h.WriteString(url)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(section)
	_, _ = fmt.Fprintf(h, "\x00%d", seq)
	return fmt.Sprintf("%016x", h.Sum64())
}

// SplitOptions configures SplitText. Zero values fall back to the package
// defaults.
type SplitOptions struct {
	// TargetSize is the maximum chunk length in characters.
	TargetSize int

	// Overlap is the number of trailing characters from an emitted chunk
	// used to seed the next one, so consecutive chunks share context.
	Overlap int

	// MinSize is the minimum chunk length; shorter results are discarded.
	MinSize int
}

func (o SplitOptions) withDefaults() SplitOptions {
	if o.TargetSize <= 0 {
		o.TargetSize = DefaultChunkSize
	}
	if o.Overlap < 0 || o.Overlap >= o.TargetSize {
		o.Overlap = DefaultChunkOverlap
	}
	if o.MinSize <= 0 {
		o.MinSize = MinChunkChars
	}
	return o
}

// SplitText splits a section's text into bounded strings. Text that already
// fits is returned whole. Otherwise paragraphs (blank-line delimited) are
// greedily packed up to the target size; when overlap is configured the tail
// of each emitted chunk seeds the next buffer. A single paragraph longer
// than the target is hard-sliced at fixed offsets advancing by
// target-overlap per step. Every result is re-cleaned and results below the
// minimum size are discarded.
//
// SplitText is pure and deterministic: same input and options always yield
// the same sequence.
func SplitText(text string, opts SplitOptions) []string {
	opts = opts.withDefaults()

	cleaned := Clean(text)
	if len(cleaned) < opts.MinSize {
		return nil
	}
	if len(cleaned) <= opts.TargetSize {
		return []string{cleaned}
	}

	const sep = "\n\n"
	var chunks []string
	var buf strings.Builder

	emit := func() string {
		out := Clean(buf.String())
		if len(out) >= opts.MinSize {
			chunks = append(chunks, out)
		}
		buf.Reset()
		return out
	}

	for _, para := range strings.Split(cleaned, sep) {
		// Pathological single paragraph (e.g. an unbroken code block):
		// hard-slice at fixed character offsets.
		if len(para) > opts.TargetSize {
			emit()
			step := opts.TargetSize - opts.Overlap
			for start := 0; start < len(para); start += step {
				end := min(start+opts.TargetSize, len(para))
				piece := Clean(para[start:end])
				if len(piece) >= opts.MinSize {
					chunks = append(chunks, piece)
				}
				if end == len(para) {
					break
				}
			}
			continue
		}

		if buf.Len() > 0 && buf.Len()+len(sep)+len(para) > opts.TargetSize {
			emitted := emit()
			seed := overlapTail(emitted, opts.Overlap)
			if seed != "" && len(seed)+len(sep)+len(para) <= opts.TargetSize {
				buf.WriteString(seed)
			}
		}
		if buf.Len() > 0 {
			buf.WriteString(sep)
		}
		buf.WriteString(para)
	}
	emit()

	return chunks
}

// overlapTail returns the last n characters of s, clamped forward to a
// paragraph or word boundary where one falls inside the window.
func overlapTail(s string, n int) string {
	if n <= 0 || len(s) == 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	tail := s[len(s)-n:]
	if idx := strings.Index(tail, "\n\n"); idx >= 0 {
		return strings.TrimSpace(tail[idx+2:])
	}
	if idx := strings.IndexByte(tail, ' '); idx >= 0 {
		return strings.TrimSpace(tail[idx+1:])
	}
	return strings.TrimSpace(tail)
}
