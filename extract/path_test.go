package extract

import (
	"strings"

	check "gopkg.in/check.v1"
)

// Register an instance of the structural path test suite with the check
// runner.
var _ = check.Suite(new(pathTestSuite))

type pathTestSuite struct{}

// fakeNode is a hand-built Node used to exercise path construction and
// candidate selection without parsing any markup.
type fakeNode struct {
	tag      string
	attrs    map[string]string
	parent   Node
	children []Node
	ownText  string
}

func (f *fakeNode) Tag() string { return f.tag }

func (f *fakeNode) Attr(name string) string { return f.attrs[name] }

func (f *fakeNode) Parent() Node { return f.parent }

func (f *fakeNode) Children() []Node { return f.children }

func (f *fakeNode) OwnText() string { return f.ownText }

func (f *fakeNode) Text() string {
	var sb strings.Builder
	sb.WriteString(f.ownText)
	for _, child := range f.children {
		sb.WriteString(child.Text())
	}

	return sb.String()
}

// chain links the provided nodes root-first and returns the deepest one.
func chain(nodes ...*fakeNode) *fakeNode {
	for i := 1; i < len(nodes); i++ {
		nodes[i].parent = nodes[i-1]
		nodes[i-1].children = append(nodes[i-1].children, nodes[i])
	}

	return nodes[len(nodes)-1]
}

func (s *pathTestSuite) TestRendersTagIDAndClasses(c *check.C) {
	leaf := chain(
		&fakeNode{tag: "html"},
		&fakeNode{tag: "div", attrs: map[string]string{"id": "main", "class": "wrap grid"}},
		&fakeNode{tag: "p"},
	)

	path := structuralPath(leaf, 8, 200)
	c.Assert(path, check.Equals, "html > div#main.wrap.grid > p")
}

func (s *pathTestSuite) TestDepthBoundAddsSyntheticRoot(c *check.C) {
	leaf := chain(
		&fakeNode{tag: "html"},
		&fakeNode{tag: "body"},
		&fakeNode{tag: "div", attrs: map[string]string{"id": "one"}},
		&fakeNode{tag: "div", attrs: map[string]string{"id": "two"}},
		&fakeNode{tag: "p"},
	)

	// Only the three nearest levels fit, so the path cannot reach the
	// real root and must be prefixed with a synthetic one.
	path := structuralPath(leaf, 3, 200)
	c.Assert(path, check.Equals, "html > div#one > div#two > p")
}

func (s *pathTestSuite) TestDetachedChainGetsSyntheticRoot(c *check.C) {
	leaf := chain(
		&fakeNode{tag: "div"},
		&fakeNode{tag: "p"},
	)

	path := structuralPath(leaf, 8, 200)
	c.Assert(path, check.Equals, "html > div > p")
}

func (s *pathTestSuite) TestWalkStopsAtDocumentRoot(c *check.C) {
	leaf := chain(
		&fakeNode{tag: "html"},
		&fakeNode{tag: "body"},
		&fakeNode{tag: "p"},
	)

	path := structuralPath(leaf, 8, 200)
	c.Assert(path, check.Equals, "html > body > p")
	c.Assert(strings.Count(path, "html"), check.Equals, 1)
}

func (s *pathTestSuite) TestRenderedPathIsLengthBounded(c *check.C) {
	leaf := chain(
		&fakeNode{tag: "html"},
		&fakeNode{tag: "div", attrs: map[string]string{"id": strings.Repeat("verylongid", 10)}},
		&fakeNode{tag: "p"},
	)

	full := structuralPath(leaf, 8, 2000)
	bounded := structuralPath(leaf, 8, 40)

	c.Assert(len(bounded), check.Equals, 40)
	c.Assert(strings.HasPrefix(full, bounded), check.Equals, true)
}

func (s *pathTestSuite) TestNilNodeYieldsEmptyPath(c *check.C) {
	c.Assert(structuralPath(nil, 8, 200), check.Equals, "")
}
