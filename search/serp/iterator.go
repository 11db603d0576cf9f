package serp

import (
	"context"

	"github.com/mycok/kwScout/search"
)

// hitIterator lazily pages through the backend results for a keyword and
// yields ranked hits. It implements the search.Iterator interface.
type hitIterator struct {
	client     *Client
	ctx        context.Context
	keyword    string
	maxResults int

	// Hits decoded from the last fetched page that have not been
	// delivered yet.
	buffered []search.Hit
	next     int

	current  search.Hit
	produced int

	// Raw result position across all concatenated pages. Duplicate URLs
	// consume a position without producing a hit, so delivered ranks may
	// contain gaps.
	position int
	offset   int
	seenURLs map[string]struct{}

	exhausted bool
	lastErr   error
}

// Next advances the iterator to the next hit, requesting further result
// pages on demand. It returns false once maxResults hits have been
// produced, the backend has no more results or a page request fails.
func (it *hitIterator) Next() bool {
	for {
		if it.produced >= it.maxResults {
			return false
		}

		if it.next < len(it.buffered) {
			it.current = it.buffered[it.next]
			it.next++
			it.produced++

			return true
		}

		if it.exhausted || it.lastErr != nil {
			return false
		}

		it.fetchNextPage()
	}
}

// Hit returns the hit at the current iterator position.
func (it *hitIterator) Hit() search.Hit {
	return it.current
}

// Error returns the last error encountered by the iterator. Hits already
// delivered before the error remain valid partial results.
func (it *hitIterator) Error() error {
	return it.lastErr
}

// Close releases any resources associated with the iterator.
func (it *hitIterator) Close() error {
	it.exhausted = true
	it.buffered = nil

	return nil
}

// fetchNextPage requests the next result page and refills the delivery
// buffer with the hits the page contributes. An empty or short page marks
// the backend as exhausted so that no further pages are requested. Page
// offsets never advance past maxResults, which bounds the number of page
// requests even when duplicate results keep the produced hit count low.
func (it *hitIterator) fetchNextPage() {
	if it.offset >= it.maxResults {
		it.exhausted = true

		return
	}

	links, err := it.client.fetchPage(it.ctx, it.keyword, it.offset)
	if err != nil {
		it.lastErr = err

		return
	}

	if len(links) < it.client.cfg.PageSize {
		it.exhausted = true
	}

	if len(links) == 0 {
		return
	}

	it.offset += it.client.cfg.PageSize

	it.buffered = it.buffered[:0]
	it.next = 0

	for _, link := range links {
		if link == "" {
			continue
		}

		it.position++

		if _, seen := it.seenURLs[link]; seen {
			continue
		}

		it.seenURLs[link] = struct{}{}
		it.buffered = append(it.buffered, search.Hit{URL: link, Rank: it.position})
	}
}
