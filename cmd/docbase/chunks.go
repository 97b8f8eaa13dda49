package main

import (
	"fmt"

	"github.com/owalsh/docbase"
)

// Run executes the chunks command.
func (c *ChunksCmd) Run(deps *Dependencies) error {
	chunks, err := deps.Store.LoadChunks(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docbase.ErrorMessage(err))
		return err
	}

	if len(chunks) == 0 {
		fmt.Fprintf(deps.Stderr, "error: artifact %s is empty. Run 'docbase crawl <url>' first.\n", deps.Store.Path())
		return docbase.Errorf(docbase.ENOTFOUND, "artifact is empty")
	}

	if c.Full {
		// Print full formatted content (same as what ask sends to the model)
		fmt.Fprintln(deps.Stdout, docbase.FormatSources(chunks))
		return nil
	}

	fmt.Fprintf(deps.Stdout, "Chunks in %s (%d total):\n\n", deps.Store.Path(), len(chunks))
	for i, chunk := range chunks {
		fmt.Fprintf(deps.Stdout, "  %d. %s — %s\n     %s\n", i+1, chunk.Title, chunk.Section, chunk.URL)
	}

	return nil
}
