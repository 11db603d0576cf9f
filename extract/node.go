package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Node exposes the minimal set of element capabilities the extractor
// operates on. Occurrence matching, structural paths and candidate
// selection are implemented purely against this interface so they stay
// independent of the underlying DOM representation.
type Node interface {
	// Tag returns the lowercased element name.
	Tag() string

	// Attr returns the value of the named attribute or an empty string
	// when the attribute is absent.
	Attr(name string) string

	// Parent returns the parent element or nil at the top of the tree.
	Parent() Node

	// Children returns the element children in document order.
	Children() []Node

	// OwnText returns the text held directly by this element, excluding
	// the text of descendant elements.
	OwnText() string

	// Text returns the concatenated text of the element and all of its
	// descendants in document order.
	Text() string
}

// Compile-time check that htmlNode satisfies the Node interface.
var _ Node = (*htmlNode)(nil)

// htmlNode adapts a parsed html.Node element to the Node interface.
type htmlNode struct {
	n *html.Node
}

// wrapNode returns the Node view of n, or nil when n is not an element.
func wrapNode(n *html.Node) Node {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}

	return &htmlNode{n: n}
}

func (e *htmlNode) Tag() string {
	return strings.ToLower(e.n.Data)
}

func (e *htmlNode) Attr(name string) string {
	for _, attr := range e.n.Attr {
		if strings.EqualFold(attr.Key, name) {
			return attr.Val
		}
	}

	return ""
}

func (e *htmlNode) Parent() Node {
	for p := e.n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return &htmlNode{n: p}
		}
	}

	return nil
}

func (e *htmlNode) Children() []Node {
	var children []Node
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			children = append(children, &htmlNode{n: c})
		}
	}

	return children
}

func (e *htmlNode) OwnText() string {
	var sb strings.Builder
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}

	return sb.String()
}

func (e *htmlNode) Text() string {
	var sb strings.Builder
	appendText(&sb, e.n)

	return sb.String()
}

func appendText(sb *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)

		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		appendText(sb, c)
	}
}

// classes splits the element's class attribute into its individual names.
func classes(n Node) []string {
	return strings.Fields(n.Attr("class"))
}

// documentRoot returns the outermost element of a parsed document,
// normally the html element, or nil for an empty document.
func documentRoot(doc *goquery.Document) Node {
	if doc == nil || len(doc.Nodes) == 0 {
		return nil
	}

	for n := doc.Nodes[0].FirstChild; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode {
			return wrapNode(n)
		}
	}

	return nil
}
