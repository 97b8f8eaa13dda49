// Package fs provides file-based persistence for the chunk artifact.
package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/owalsh/docbase"
)

// Ensure Store implements docbase.ChunkStore at compile time.
var _ docbase.ChunkStore = (*Store)(nil)

// Store persists the chunk collection as a single JSON file. Writes replace
// the artifact wholesale and are atomic: content goes to a temporary file
// in the same directory which is then renamed over the target.
type Store struct {
	path string
}

// NewStore creates a Store writing to the given artifact path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the artifact location.
func (s *Store) Path() string {
	return s.path
}

// envelope is the optional wrapper some producers put around the chunk
// sequence. LoadChunks accepts both forms.
type envelope struct {
	Chunks []json.RawMessage `json:"chunks"`
}

// WriteChunks replaces the persisted collection. A write failure is fatal
// for the run and surfaced to the caller.
func (s *Store) WriteChunks(ctx context.Context, chunks []docbase.Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(chunks, "", "  ")
	if err != nil {
		return docbase.Errorf(docbase.EINTERNAL, "encoding artifact: %v", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return docbase.Errorf(docbase.EINTERNAL, "creating artifact directory: %v", err)
	}

	tmp, err := os.CreateTemp(dir, ".docbase-*")
	if err != nil {
		return docbase.Errorf(docbase.EINTERNAL, "creating temporary artifact: %v", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return docbase.Errorf(docbase.EINTERNAL, "writing artifact: %v", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return docbase.Errorf(docbase.EINTERNAL, "closing artifact: %v", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return docbase.Errorf(docbase.EINTERNAL, "replacing artifact: %v", err)
	}
	return nil
}

// LoadChunks reads the whole persisted collection. It accepts a bare JSON
// array or a {"chunks": [...]} envelope, and adapts records whose producers
// used alternate field names. A missing artifact is a distinct ENOTFOUND
// error, never an empty result.
func (s *Store) LoadChunks(ctx context.Context) ([]docbase.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, docbase.Errorf(docbase.ENOTFOUND, "artifact not found at %s; run a crawl first", s.path)
		}
		return nil, docbase.Errorf(docbase.EINTERNAL, "reading artifact: %v", err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		var env envelope
		if envErr := json.Unmarshal(data, &env); envErr != nil || env.Chunks == nil {
			return nil, docbase.Errorf(docbase.EINVALID, "artifact is neither a chunk array nor a chunks envelope: %v", err)
		}
		raw = env.Chunks
	}

	chunks := make([]docbase.Chunk, 0, len(raw))
	for i, msg := range raw {
		var record map[string]any
		if err := json.Unmarshal(msg, &record); err != nil {
			return nil, docbase.Errorf(docbase.EINVALID, "artifact record %d: %v", i, err)
		}
		chunks = append(chunks, adaptRecord(record, i))
	}
	return chunks, nil
}

// Field precedence for records written by other producers. The first
// present, non-empty name wins; this is the contract, not an ad hoc
// fallback.
var (
	titleFields   = []string{"title", "file", "source", "doc"}
	sectionFields = []string{"section", "heading", "anchor"}
	urlFields     = []string{"url", "sourceUrl", "source_url", "link"}
	textFields    = []string{"text", "content", "body"}
)

// adaptRecord converts a raw artifact record into a canonical chunk,
// resolving alternate field names by fixed priority. Records without an id
// get a deterministic one computed from their resolved fields.
func adaptRecord(record map[string]any, seq int) docbase.Chunk {
	c := docbase.Chunk{
		Title:   firstString(record, titleFields),
		Section: firstString(record, sectionFields),
		URL:     firstString(record, urlFields),
		Text:    firstString(record, textFields),
	}
	if id, ok := record["id"].(string); ok && id != "" {
		c.ID = id
	} else {
		c.ID = docbase.ChunkID(c.URL, c.Section, seq)
	}
	return c
}

func firstString(record map[string]any, names []string) string {
	for _, name := range names {
		if v, ok := record[name].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
