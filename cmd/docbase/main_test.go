package main_test

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/owalsh/docbase"
	main "github.com/owalsh/docbase/cmd/docbase"
	"github.com/owalsh/docbase/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestMain returns a Main writing its artifact into a temp directory.
func newTestMain(t *testing.T) *main.Main {
	t.Helper()
	m := main.NewMain()
	m.ArtifactPath = filepath.Join(t.TempDir(), "chunks.json")
	return m
}

// seedArtifact writes chunks to the Main's artifact path.
func seedArtifact(t *testing.T, m *main.Main, chunks []docbase.Chunk) {
	t.Helper()
	store := fs.NewStore(m.ArtifactPath)
	require.NoError(t, store.WriteChunks(context.Background(), chunks))
}

var testChunks = []docbase.Chunk{
	{
		ID:      "a1",
		Title:   "Crafting Guide",
		Section: "Potions",
		URL:     "https://wiki.example.com/crafting",
		Text:    "Potions are brewed at the brewing stand using water bottles and reagents. " + strings.Repeat("More crafting detail. ", 5),
	},
	{
		ID:      "b2",
		Title:   "Fishing Guide",
		Section: "Rods",
		URL:     "https://wiki.example.com/fishing",
		Text:    "Fishing rods are upgraded at the dockside workbench. " + strings.Repeat("More fishing detail. ", 5),
	},
}

func TestRun_Help(t *testing.T) {
	t.Parallel()

	t.Run("no arguments prints help and errors", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		m := newTestMain(t)

		err := m.Run(context.Background(), nil, stdout, stderr)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no command specified")
		assert.Contains(t, stdout.String(), "Usage")
	})

	t.Run("help flag succeeds", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		m := newTestMain(t)

		err := m.Run(context.Background(), []string{"--help"}, stdout, stderr)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "crawl")
		assert.Contains(t, stdout.String(), "search")
		assert.Contains(t, stdout.String(), "ask")
	})

	t.Run("unknown command errors", func(t *testing.T) {
		t.Parallel()

		m := newTestMain(t)

		err := m.Run(context.Background(), []string{"bogus"}, &bytes.Buffer{}, &bytes.Buffer{})

		assert.Error(t, err)
	})
}

func TestCmdChunks(t *testing.T) {
	t.Parallel()

	t.Run("lists chunks from the artifact", func(t *testing.T) {
		t.Parallel()

		m := newTestMain(t)
		seedArtifact(t, m, testChunks)
		stdout := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{"chunks"}, stdout, &bytes.Buffer{})
		require.NoError(t, err)

		assert.Contains(t, stdout.String(), "2 total")
		assert.Contains(t, stdout.String(), "Crafting Guide")
		assert.Contains(t, stdout.String(), "https://wiki.example.com/fishing")
	})

	t.Run("full flag prints chunk text", func(t *testing.T) {
		t.Parallel()

		m := newTestMain(t)
		seedArtifact(t, m, testChunks)
		stdout := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{"chunks", "--full"}, stdout, &bytes.Buffer{})
		require.NoError(t, err)

		assert.Contains(t, stdout.String(), "brewing stand")
	})

	t.Run("missing artifact is an error with a hint", func(t *testing.T) {
		t.Parallel()

		m := newTestMain(t)
		stderr := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{"chunks"}, &bytes.Buffer{}, stderr)

		require.Error(t, err)
		assert.Equal(t, docbase.ENOTFOUND, docbase.ErrorCode(err))
		assert.Contains(t, stderr.String(), "error:")
	})
}

func TestCmdSearch(t *testing.T) {
	t.Parallel()

	t.Run("prints ranked results", func(t *testing.T) {
		t.Parallel()

		m := newTestMain(t)
		seedArtifact(t, m, testChunks)
		stdout := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{"search", "how do I craft potions"}, stdout, &bytes.Buffer{})
		require.NoError(t, err)

		out := stdout.String()
		assert.Contains(t, out, "Crafting Guide")
		assert.Contains(t, out, "https://wiki.example.com/crafting")
		assert.NotContains(t, out, "Fishing Guide")
	})

	t.Run("reports when nothing matches", func(t *testing.T) {
		t.Parallel()

		m := newTestMain(t)
		seedArtifact(t, m, testChunks)
		stdout := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{"search", "quantum chromodynamics lattice"}, stdout, &bytes.Buffer{})
		require.NoError(t, err)

		assert.Contains(t, stdout.String(), "No matching chunks found.")
	})

	t.Run("missing artifact is ENOTFOUND", func(t *testing.T) {
		t.Parallel()

		m := newTestMain(t)

		err := m.Run(context.Background(), []string{"search", "anything at all"}, &bytes.Buffer{}, &bytes.Buffer{})

		assert.Equal(t, docbase.ENOTFOUND, docbase.ErrorCode(err))
	})
}

func TestCmdAsk_MissingAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	m := newTestMain(t)
	seedArtifact(t, m, testChunks)
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"ask", "how do I craft potions"}, &bytes.Buffer{}, stderr)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
	assert.Contains(t, stderr.String(), "GEMINI_API_KEY")
}

func TestRun_GlobalFlagBeforeCommand(t *testing.T) {
	t.Run("verbose flag before chunks", func(t *testing.T) {
		t.Parallel()

		m := newTestMain(t)
		seedArtifact(t, m, testChunks)
		stdout := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{"-v", "chunks"}, stdout, &bytes.Buffer{})
		require.NoError(t, err)

		assert.Contains(t, stdout.String(), "2 total")
	})

	t.Run("verbose flag before ask still wires command dependencies", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")

		m := newTestMain(t)
		seedArtifact(t, m, testChunks)

		// Command wiring must key off the parsed command, so this surfaces
		// the missing API key instead of a nil Asker.
		err := m.Run(context.Background(), []string{"-v", "ask", "how do I craft potions"}, &bytes.Buffer{}, &bytes.Buffer{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "GEMINI_API_KEY")
	})
}
