package crawl

import (
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
)

// Frontier is a FIFO crawl queue with Bloom filter deduplication. URLs are
// popped in first-discovery order, which keeps BFS traversal deterministic.
//
// Frontier is not safe for concurrent use: the crawl loop is strictly
// sequential by design, so no locking is needed.
type Frontier struct {
	seen  *bloom.BloomFilter
	queue []string
}

// NewFrontier creates a Frontier sized for n expected URLs with the given
// false positive rate for deduplication.
func NewFrontier(n uint, fpRate float64) *Frontier {
	return &Frontier{
		seen: bloom.NewWithEstimates(n, fpRate),
	}
}

// Push appends a URL to the queue tail. Returns false if the URL has
// already been seen. Fragments are stripped before deduplication, so URLs
// differing only by fragment are considered duplicates.
func (f *Frontier) Push(rawURL string) bool {
	u := stripFragment(rawURL)
	if u == "" || f.seen.TestString(u) {
		return false
	}
	f.seen.AddString(u)
	f.queue = append(f.queue, u)
	return true
}

// Pop removes and returns the URL at the queue head.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (string, bool) {
	if len(f.queue) == 0 {
		return "", false
	}
	u := f.queue[0]
	f.queue = f.queue[1:]
	return u, true
}

// Len returns the number of queued URLs.
func (f *Frontier) Len() int {
	return len(f.queue)
}

// Seen returns true if the URL has been queued or processed. Fragments are
// stripped before checking.
func (f *Frontier) Seen(rawURL string) bool {
	u := stripFragment(rawURL)
	return u != "" && f.seen.TestString(u)
}

func stripFragment(rawURL string) string {
	if idx := strings.IndexByte(rawURL, '#'); idx >= 0 {
		return rawURL[:idx]
	}
	return rawURL
}
