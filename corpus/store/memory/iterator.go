package memory

import (
	"fmt"

	"github.com/blevesearch/bleve"
	"github.com/google/uuid"

	"github.com/mycok/kwScout/corpus/index"
)

// Static and compile-time check to ensure docIterator implements
// index.Iterator interface.
var _ index.Iterator = (*docIterator)(nil)

// docIterator pages lazily through the bleve hits of a search and
// resolves each hit into its stored document.
type docIterator struct {
	idx       *InMemoryIndex
	searchReq *bleve.SearchRequest

	// Current result page and the position within it.
	searchRes    *bleve.SearchResult
	searchResIdx int

	// Absolute position across all result pages, bounded by the total
	// hit count of the search.
	cumIdx uint64

	doc     *index.Document
	lastErr error
}

// Next loads the next matching document, requesting further result pages
// on demand. It returns false once the result set is exhausted or an
// error occurs.
func (i *docIterator) Next() bool {
	if i.lastErr != nil || i.searchRes == nil || i.cumIdx >= i.searchRes.Total {
		return false
	}

	// Fetch the next result page once the current one is consumed.
	if i.searchResIdx >= i.searchRes.Hits.Len() {
		i.searchReq.From += i.searchReq.Size

		if i.searchRes, i.lastErr = i.idx.idx.Search(i.searchReq); i.lastErr != nil {
			return false
		}

		i.searchResIdx = 0
	}

	// Hits only carry the document key; resolve it through the store so
	// the lookup happens under the store lock and yields a copy.
	id, err := uuid.Parse(i.searchRes.Hits[i.searchResIdx].ID)
	if err != nil {
		i.lastErr = fmt.Errorf("iterate: %w", index.ErrNotFound)

		return false
	}

	doc, err := i.idx.FindByID(id)
	if err != nil {
		i.lastErr = err

		return false
	}

	i.doc = doc
	i.searchResIdx++
	i.cumIdx++

	return true
}

// Document returns the document at the current iterator position.
func (i *docIterator) Document() *index.Document {
	return i.doc
}

// TotalCount returns the total number of results the search matched.
func (i *docIterator) TotalCount() uint64 {
	if i.searchRes == nil {
		return 0
	}

	return i.searchRes.Total
}

// Error returns the last error encountered by the iterator.
func (i *docIterator) Error() error {
	return i.lastErr
}

// Close releases any resources allocated to the iterator.
func (i *docIterator) Close() error {
	if i.searchRes != nil {
		i.cumIdx = i.searchRes.Total
	}

	i.idx = nil
	i.searchReq = nil

	return nil
}
