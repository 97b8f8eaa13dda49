package main

import (
	"fmt"

	"github.com/owalsh/docbase"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	deps.Searcher.K = c.K

	results, err := deps.Searcher.Search(deps.Ctx, c.Question, nil)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docbase.ErrorMessage(err))
		return err
	}

	if len(results) == 0 {
		fmt.Fprintf(deps.Stderr, "error: no relevant documentation found for %q\n", c.Question)
		return docbase.Errorf(docbase.ENOTFOUND, "no relevant documentation found")
	}

	sources := make([]docbase.Chunk, len(results))
	for i, result := range results {
		sources[i] = result.Chunk
	}

	answer, err := deps.Asker.Ask(deps.Ctx, c.Question, sources)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docbase.ErrorMessage(err))
		return err
	}

	validated := docbase.ValidateAnswer(answer, sources)

	fmt.Fprintln(deps.Stdout, validated.Text)

	if len(validated.Citations) > 0 {
		fmt.Fprintln(deps.Stdout, "\nSources:")
		for _, citation := range validated.Citations {
			fmt.Fprintf(deps.Stdout, "  [%d] %s — %s\n", citation.SourceIndex, citation.Title, citation.Section)
		}
	}

	if len(validated.FollowUps) > 0 {
		fmt.Fprintln(deps.Stdout, "\nFollow-up questions:")
		for _, followUp := range validated.FollowUps {
			fmt.Fprintf(deps.Stdout, "  - %s\n", followUp)
		}
	}

	return nil
}
