package docbase

// LinkSelector discovers outgoing links from a page's markup.
type LinkSelector interface {
	// ExtractLinks parses HTML and returns canonicalized same-host links in
	// document order, deduplicated by first occurrence. The baseURL is used
	// to resolve relative hrefs.
	ExtractLinks(html string, baseURL string) ([]string, error)
}
