package docbase

import "context"

// Asker generates an answer to a question from ranked source chunks. It is
// the boundary to the external language model; callers must pass the result
// through ValidateAnswer with the same sources before trusting its
// citations.
type Asker interface {
	// Ask answers a question using the supplied source chunks.
	// Returns EINVALID if the question is empty.
	Ask(ctx context.Context, question string, sources []Chunk) (*Answer, error)
}
