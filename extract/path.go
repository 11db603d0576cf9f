package extract

import "strings"

// pathSeparator joins the segments of a rendered structural path.
const pathSeparator = " > "

// rootTag marks the outermost container of a parsed document. Paths that
// stop short of it get a synthetic root segment so every rendered path
// is anchored at the document root.
const rootTag = "html"

// structuralPath renders the ancestor chain of n as a bounded string of
// the form "html > div#main.wrap > p". The walk climbs at most maxDepth
// levels starting from n itself and stops early at the document root.
// The rendered string is truncated to maxLen characters.
func structuralPath(n Node, maxDepth, maxLen int) string {
	if n == nil {
		return ""
	}

	// Node-to-ancestor order while climbing.
	var reachedRoot bool
	segments := make([]string, 0, maxDepth)
	for current := n; current != nil && len(segments) < maxDepth; current = current.Parent() {
		segments = append(segments, pathSegment(current))

		if current.Tag() == rootTag {
			reachedRoot = true

			break
		}
	}

	if !reachedRoot {
		segments = append(segments, rootTag)
	}

	// Render ancestor-to-node order.
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}

	rendered := strings.Join(segments, pathSeparator)
	if len(rendered) > maxLen {
		rendered = rendered[:maxLen]
	}

	return rendered
}

// pathSegment renders one element as "tag", "tag#id" or "tag#id.class1.class2".
func pathSegment(n Node) string {
	var sb strings.Builder
	sb.WriteString(n.Tag())

	if id := n.Attr("id"); id != "" {
		sb.WriteByte('#')
		sb.WriteString(id)
	}

	for _, class := range classes(n) {
		sb.WriteByte('.')
		sb.WriteString(class)
	}

	return sb.String()
}
