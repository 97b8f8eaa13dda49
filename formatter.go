package docbase

import "strings"

// FormatSources formats ranked chunks for display or LLM context. Each
// chunk is headed by its title and section, falling back to the source URL
// when the title is empty. Chunks are separated by blank lines.
func FormatSources(chunks []Chunk) string {
	if len(chunks) == 0 {
		return ""
	}

	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		header := c.Title
		if header == "" {
			header = c.URL
		}
		if c.Section != "" && c.Section != header {
			header += " — " + c.Section
		}
		parts = append(parts, "## Source: "+header+"\n"+c.Text)
	}

	return strings.Join(parts, "\n\n")
}
