/*
	Package search defines the contract between the crawler and the
	keyword search backends that discover candidate page URLs.

	Rank captures the 1-based position at which a URL first appeared in
	the backend's concatenated result pages. Duplicate URLs are skipped
	by providers while still consuming their position, so ranks are
	strictly increasing but may contain gaps.
*/
package search

import "context"

// Hit pairs a candidate page URL with its immutable provider rank.
type Hit struct {
	URL  string
	Rank int
}

// Iterator is implemented by types that can lazily iterate the hits of a
// keyword search.
type Iterator interface {
	// Next advances the iterator, fetching further result pages as
	// needed. It returns false when the result cap is reached, the
	// backend has no more results or an error occurs.
	Next() bool

	// Hit returns the hit at the current iterator position.
	Hit() Hit

	// Error returns the last error encountered by the iterator. Hits
	// gathered before the error remain valid.
	Error() error

	// Close releases any resources associated with the iterator.
	Close() error
}

// Provider is implemented by search backends that resolve a keyword into
// a ranked, lazily paginated sequence of candidate URLs.
type Provider interface {
	// Search returns an iterator producing up to maxResults hits for the
	// keyword.
	Search(ctx context.Context, keyword string, maxResults int) (Iterator, error)
}
