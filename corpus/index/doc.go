package index

import (
	"time"

	"github.com/google/uuid"
)

// Document defines an extracted content block that has been accepted
// into the searchable corpus.
type Document struct {
	// ID of the content entry assigned by the aggregation layer.
	ID uuid.UUID

	// URL of the page the content was extracted from.
	URL string

	// Search rank of the page at discovery time.
	Rank int

	// Title of the page (if available).
	Title string

	// Structural path of the node the content was selected for.
	Path string

	// Cleaned content text.
	Content string

	// Length of the cleaned text in runes before storage capping.
	Length int

	// Last time the document was indexed.
	IndexedAt time.Time
}
