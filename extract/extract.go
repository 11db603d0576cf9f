/*
	Package extract locates keyword occurrences within parsed HTML
	documents and distills them into structural paths and quality-filtered
	content blocks.

	For every whitespace-separated keyword word the extractor collects the
	elements whose own text contains the word, renders the bounded
	ancestor chain of each occurrence as a structural path and selects the
	best enclosing content block for it: the nearest semantic container
	when its cleaned text passes the quality filter, otherwise the nearest
	enclosing block element. Matching is plain substring containment, so a
	word also matches inside longer words.
*/
package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Defaults applied by Config.applyDefaults.
const (
	defaultMaxNodesPerWord  = 20
	defaultMaxPathDepth     = 8
	defaultMaxPathLen       = 200
	defaultMinContentLen    = 15
	defaultMaxStoredTextLen = 500
)

// Config bounds the work the extractor performs per document.
type Config struct {
	// MaxNodesPerWord caps the matched elements examined per keyword word.
	MaxNodesPerWord int

	// MaxPathDepth caps the ancestor levels rendered into a structural path.
	MaxPathDepth int

	// MaxPathLen caps the rendered length of a structural path.
	MaxPathLen int

	// MinContentLen is the minimum cleaned length for a block to qualify
	// as content.
	MinContentLen int

	// MaxStoredTextLen caps the stored form of accepted content. The
	// reported length still reflects the full cleaned block.
	MaxStoredTextLen int
}

func (c *Config) applyDefaults() {
	if c.MaxNodesPerWord <= 0 {
		c.MaxNodesPerWord = defaultMaxNodesPerWord
	}
	if c.MaxPathDepth <= 0 {
		c.MaxPathDepth = defaultMaxPathDepth
	}
	if c.MaxPathLen <= 0 {
		c.MaxPathLen = defaultMaxPathLen
	}
	if c.MinContentLen <= 0 {
		c.MinContentLen = defaultMinContentLen
	}
	if c.MaxStoredTextLen <= 0 {
		c.MaxStoredTextLen = defaultMaxStoredTextLen
	}
}

// Content is an accepted, cleaned and quality-passed content block
// together with the structural path of the occurrence it was selected for.
type Content struct {
	Path   string
	Text   string
	Length int
}

// Result aggregates everything extracted from a single document.
type Result struct {
	// Title is the cleaned document title, possibly empty.
	Title string

	// Paths holds the structural path of every matched element in
	// encounter order, including elements that yielded no content.
	// Duplicates are preserved; set semantics belong to the aggregation
	// layer.
	Paths []string

	// Contents holds the selected content blocks in encounter order.
	// Blocks with identical text may repeat; per-site deduplication
	// belongs to the aggregation layer.
	Contents []Content
}

// Extractor extracts keyword occurrence locations and content blocks from
// parsed documents. It is safe for concurrent use.
type Extractor struct {
	cfg     Config
	cleaner *Cleaner
}

// New returns an Extractor with unset config fields replaced by defaults.
func New(cfg Config) *Extractor {
	cfg.applyDefaults()

	return &Extractor{
		cfg:     cfg,
		cleaner: NewCleaner(),
	}
}

// Extract walks doc once per keyword word and returns the matched
// structural paths and selected content blocks. Extraction never fails:
// elements that cannot be resolved simply contribute nothing.
func (e *Extractor) Extract(doc *goquery.Document, keyword string) Result {
	var res Result
	if doc == nil {
		return res
	}

	res.Title = e.cleaner.Clean(doc.Find("title").First().Text())

	words := strings.Fields(strings.ToLower(keyword))
	if len(words) == 0 {
		return res
	}

	root := documentRoot(doc)
	if root == nil {
		return res
	}

	for _, word := range words {
		for _, n := range matchNodes(root, word, e.cfg.MaxNodesPerWord) {
			path := structuralPath(n, e.cfg.MaxPathDepth, e.cfg.MaxPathLen)
			if path == "" {
				continue
			}

			res.Paths = append(res.Paths, path)

			if content, ok := e.selectContent(n, path); ok {
				res.Contents = append(res.Contents, content)
			}
		}
	}

	return res
}

// selectContent picks the best quality-passing candidate block for a
// matched node: the longest cleaned text, ties resolved in candidate
// priority order. The second return value is false when no candidate
// passes the filter.
func (e *Extractor) selectContent(n Node, path string) (Content, bool) {
	var (
		best    string
		bestLen int
		found   bool
	)

	for _, cand := range candidatesFor(n) {
		cleaned := e.cleaner.Clean(cand.text)
		if !passesQualityFilter(cleaned, e.cfg.MinContentLen) {
			continue
		}

		if length := utf8.RuneCountInString(cleaned); !found || length > bestLen {
			best = cleaned
			bestLen = length
			found = true
		}
	}

	if !found {
		return Content{}, false
	}

	return Content{
		Path:   path,
		Text:   truncateRunes(best, e.cfg.MaxStoredTextLen),
		Length: bestLen,
	}, true
}

// matchNodes collects up to maxNodes elements under root, in document
// order, whose own lowercased text contains word as a substring.
func matchNodes(root Node, word string, maxNodes int) []Node {
	var matched []Node

	var walk func(n Node) bool
	walk = func(n Node) bool {
		if strings.Contains(strings.ToLower(n.OwnText()), word) {
			matched = append(matched, n)
			if len(matched) >= maxNodes {
				return false
			}
		}

		for _, child := range n.Children() {
			if !walk(child) {
				return false
			}
		}

		return true
	}

	walk(root)

	return matched
}

// truncateRunes shortens s to at most max runes.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}

	runes := []rune(s)

	return string(runes[:max])
}
