package main

import (
	"fmt"
	"strings"

	"github.com/owalsh/docbase"
)

const snippetChars = 160

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	deps.Searcher.K = c.K

	results, err := deps.Searcher.Search(deps.Ctx, c.Query, nil)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docbase.ErrorMessage(err))
		return err
	}

	if len(results) == 0 {
		fmt.Fprintln(deps.Stdout, "No matching chunks found.")
		return nil
	}

	for i, result := range results {
		fmt.Fprintf(deps.Stdout, "%d. %s — %s (%.1f)\n   %s\n   %s\n",
			i+1, result.Chunk.Title, result.Chunk.Section, result.Score,
			result.Chunk.URL, snippet(result.Chunk.Text))
	}
	return nil
}

func snippet(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	if len(text) > snippetChars {
		return text[:snippetChars] + "..."
	}
	return text
}
