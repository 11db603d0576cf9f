package extract

import "strings"

// candidate is a text block scoped to an ancestor of a matched node that
// is considered for selection as the representative content for that
// occurrence. Candidates are transient and never persisted.
type candidate struct {
	origin Node
	text   string
}

// semanticContainerTags are elements that always qualify as content
// containers.
var semanticContainerTags = map[string]bool{
	"article": true,
	"main":    true,
}

// hintedContainerTags qualify as containers only when their id or class
// hints at page content.
var hintedContainerTags = map[string]bool{
	"div":     true,
	"section": true,
}

// containerHints are the id/class fragments that mark a div or section
// as a content container.
var containerHints = []string{"content", "article", "post", "entry", "main", "story"}

// blockTags are the elements eligible as fallback content blocks.
var blockTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true,
	"li": true, "td": true, "blockquote": true, "pre": true,
	"div": true, "span": true,
}

// candidatesFor builds the prioritized candidate list for a matched node:
// first the nearest semantic container, then the nearest enclosing block
// that is not already the container. Either may be absent.
func candidatesFor(n Node) []candidate {
	var candidates []candidate

	container := nearestContainer(n)
	if container != nil {
		candidates = append(candidates, candidate{
			origin: container,
			text:   container.Text(),
		})
	}

	if block := nearestBlock(n, container); block != nil {
		candidates = append(candidates, candidate{
			origin: block,
			text:   block.Text(),
		})
	}

	return candidates
}

// nearestContainer climbs from n to the closest ancestor-or-self element
// that acts as a semantic content container.
func nearestContainer(n Node) Node {
	for current := n; current != nil; current = current.Parent() {
		if isContainer(current) {
			return current
		}
	}

	return nil
}

// nearestBlock climbs from n to the closest ancestor-or-self block
// element, skipping the node already selected as the container so the
// fallback always contributes a distinct candidate.
func nearestBlock(n Node, container Node) Node {
	for current := n; current != nil; current = current.Parent() {
		if container != nil && sameNode(current, container) {
			continue
		}

		if blockTags[current.Tag()] {
			return current
		}
	}

	return nil
}

func isContainer(n Node) bool {
	tag := n.Tag()
	if semanticContainerTags[tag] {
		return true
	}

	if n.Attr("role") == "main" {
		return true
	}

	if !hintedContainerTags[tag] {
		return false
	}

	return hasContainerHint(n.Attr("id")) || hasContainerHintAny(classes(n))
}

func hasContainerHint(value string) bool {
	if value == "" {
		return false
	}

	lowered := strings.ToLower(value)
	for _, hint := range containerHints {
		if strings.Contains(lowered, hint) {
			return true
		}
	}

	return false
}

func hasContainerHintAny(values []string) bool {
	for _, v := range values {
		if hasContainerHint(v) {
			return true
		}
	}

	return false
}

// sameNode reports whether two Node views refer to the same underlying
// element.
func sameNode(a, b Node) bool {
	na, aOK := a.(*htmlNode)
	nb, bOK := b.(*htmlNode)
	if aOK && bOK {
		return na.n == nb.n
	}

	return a == b
}
