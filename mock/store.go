package mock

import (
	"context"

	"github.com/owalsh/docbase"
)

var _ docbase.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is a mock implementation of docbase.ChunkStore.
type ChunkStore struct {
	WriteChunksFn func(ctx context.Context, chunks []docbase.Chunk) error
	LoadChunksFn  func(ctx context.Context) ([]docbase.Chunk, error)
}

func (s *ChunkStore) WriteChunks(ctx context.Context, chunks []docbase.Chunk) error {
	return s.WriteChunksFn(ctx, chunks)
}

func (s *ChunkStore) LoadChunks(ctx context.Context) ([]docbase.Chunk, error) {
	return s.LoadChunksFn(ctx)
}
