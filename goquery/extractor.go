// Package goquery provides CSS-selector based implementations of content
// extraction and link discovery over parsed HTML documents.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/owalsh/docbase"
	"golang.org/x/net/html"
)

// Region is a candidate main-content container. Extraction tries regions in
// order and uses the first selector that matches; supporting a new site
// template means adding a region, not branching deeper.
type Region struct {
	Name     string
	Selector string
}

// DefaultRegions returns the built-in region strategies, most specific
// first. The final "body" entry guarantees a region is always found.
func DefaultRegions() []Region {
	return []Region{
		{Name: "main", Selector: "main"},
		{Name: "article", Selector: "article"},
		{Name: "role-main", Selector: "[role='main']"},
		{Name: "content-class", Selector: ".content, .markdown-body, .docs-content, .mw-parser-output"},
		{Name: "body", Selector: "body"},
	}
}

// noiseSelector matches elements excluded from consideration entirely:
// navigation, sidebars, page chrome and interactive widgets.
const noiseSelector = "nav, aside, header, footer, script, style, noscript, form, button, iframe, [role='navigation'], [role='search'], .sidebar, .breadcrumb, .toc"

// blockSelector matches the elements walked in document order.
const blockSelector = "h1, h2, h3, h4, p, li, blockquote, pre, tr"

// Ensure Extractor implements docbase.Extractor at compile time.
var _ docbase.Extractor = (*Extractor)(nil)

// Extractor converts page markup into a title and ordered, heading-labeled
// content blocks.
type Extractor struct {
	regions  []Region
	minBlock int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRegions replaces the region strategy list.
func WithRegions(regions []Region) Option {
	return func(e *Extractor) { e.regions = regions }
}

// WithMinBlockSize sets the minimum cleaned length for a retained block.
// Defaults to docbase.MinChunkChars.
func WithMinBlockSize(n int) Option {
	return func(e *Extractor) { e.minBlock = n }
}

// NewExtractor creates an Extractor with the default region strategies.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		regions:  DefaultRegions(),
		minBlock: docbase.MinChunkChars,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract walks the page's main content region in document order. Headings
// (h1-h4) delimit sections; list items, code blocks, quotes and table rows
// are flattened into marked text lines. Blocks shorter than the minimum are
// silently dropped. A page whose region yields no usable blocks contributes
// a single clamped fallback block instead, so non-standard structure still
// produces content.
func (e *Extractor) Extract(rawHTML string, pageURL string) (*docbase.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, docbase.Errorf(docbase.EINVALID, "empty HTML input for %s", pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, docbase.Errorf(docbase.EINVALID, "failed to parse HTML for %s: %v", pageURL, err)
	}

	region := e.findRegion(doc)
	title := resolveTitle(doc, region)

	// Noise elements are removed up front so the walk never sees them.
	region.Find(noiseSelector).Remove()

	blocks := e.walk(region)

	if len(blocks) == 0 {
		if fb, ok := e.fallbackBlock(region); ok {
			blocks = []docbase.ContentBlock{fb}
		}
	}

	return &docbase.ExtractResult{Title: title, Blocks: blocks}, nil
}

// findRegion returns the first region strategy whose selector matches.
func (e *Extractor) findRegion(doc *goquery.Document) *goquery.Selection {
	for _, r := range e.regions {
		if sel := doc.Find(r.Selector).First(); sel.Length() > 0 {
			return sel
		}
	}
	return doc.Selection
}

// resolveTitle picks the page title: first h1 inside the content region,
// then first h1 anywhere, then the document title, then a fixed fallback.
// First non-empty result wins.
func resolveTitle(doc *goquery.Document, region *goquery.Selection) string {
	for _, sel := range []*goquery.Selection{
		region.Find("h1").First(),
		doc.Find("h1").First(),
		doc.Find("title").First(),
	} {
		if title := inlineText(sel); title != "" {
			return title
		}
	}
	return docbase.FallbackTitle
}

// walk traverses block-level elements in document order, flushing the
// current block whenever a heading starts a new section.
func (e *Extractor) walk(region *goquery.Selection) []docbase.ContentBlock {
	var blocks []docbase.ContentBlock
	section := docbase.RootSection
	var segments []string

	flush := func() {
		if len(segments) == 0 {
			return
		}
		text := docbase.Clean(strings.Join(segments, "\n\n"))
		segments = nil
		if len(text) >= e.minBlock {
			blocks = append(blocks, docbase.ContentBlock{Section: section, Text: text})
		}
	}

	region.Find(blockSelector).Each(func(_ int, sel *goquery.Selection) {
		node := sel.Get(0)
		if node == nil || skipNested(node) {
			return
		}

		switch node.Data {
		case "h1", "h2", "h3", "h4":
			flush()
			if heading := inlineText(sel); heading != "" {
				section = heading
			}
		case "li":
			if text := inlineText(sel); text != "" {
				segments = append(segments, "- "+text)
			}
		case "pre":
			if text := strings.TrimSpace(sel.Text()); text != "" {
				segments = append(segments, "Code: "+text)
			}
		case "blockquote":
			if text := inlineText(sel); text != "" {
				segments = append(segments, "Quote: "+text)
			}
		case "tr":
			if row := flattenRow(sel); row != "" {
				segments = append(segments, row)
			}
		default:
			if text := inlineText(sel); text != "" {
				segments = append(segments, text)
			}
		}
	})
	flush()

	return blocks
}

// fallbackBlock flattens the whole region into one clamped block.
func (e *Extractor) fallbackBlock(region *goquery.Selection) (docbase.ContentBlock, bool) {
	text := docbase.Clean(region.Text())
	if len(text) > docbase.MaxFallbackChars {
		text = docbase.Clean(text[:docbase.MaxFallbackChars])
	}
	if len(text) < e.minBlock {
		return docbase.ContentBlock{}, false
	}
	return docbase.ContentBlock{Section: docbase.RootSection, Text: text}, true
}

// nestingContainers are element types whose descendants are already handled
// when the container itself is walked.
var nestingContainers = map[string]bool{
	"blockquote": true,
	"li":         true,
	"pre":        true,
	"td":         true,
	"th":         true,
}

// skipNested reports whether the node sits inside another walked container
// and would duplicate its text.
func skipNested(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && nestingContainers[p.Data] {
			return true
		}
	}
	return false
}

// flattenRow renders a table row as a single pipe-delimited line with each
// cell cleaned individually.
func flattenRow(row *goquery.Selection) string {
	var cells []string
	row.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, inlineText(cell))
	})
	if len(cells) == 0 {
		return ""
	}
	return "Table: " + strings.Join(cells, " | ")
}

// inlineText returns the selection's text with all whitespace collapsed to
// single spaces.
func inlineText(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}
