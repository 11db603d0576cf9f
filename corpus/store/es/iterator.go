package es

import (
	"github.com/elastic/go-elasticsearch/v8"

	"github.com/mycok/kwScout/corpus/index"
)

// Static and compile-time check to ensure esIterator implements
// index.Iterator interface.
var _ index.Iterator = (*esIterator)(nil)

// esIterator pages lazily through the results of an elasticsearch query.
// Each fetched page is converted into documents once and then served
// position by position.
type esIterator struct {
	client    *elasticsearch.Client
	searchReq map[string]interface{}

	// Documents of the current result page and the position within it.
	page    []*index.Document
	pageIdx int

	// Total hit count reported by the search and the absolute position
	// across all result pages.
	total  uint64
	cumIdx uint64

	doc     *index.Document
	lastErr error
}

// newEsIterator primes an iterator with the first search response.
func newEsIterator(
	client *elasticsearch.Client, searchReq map[string]interface{},
	searchRes *esSearchRes, offset uint64,
) *esIterator {

	it := &esIterator{
		client:    client,
		searchReq: searchReq,
		total:     searchRes.Hits.Total.Count,
		cumIdx:    offset,
	}
	it.fillPage(searchRes)

	return it
}

// fillPage converts a search response into the iterator's document buffer.
func (i *esIterator) fillPage(searchRes *esSearchRes) {
	i.page = i.page[:0]
	i.pageIdx = 0

	for idx := range searchRes.Hits.HitList {
		i.page = append(i.page, esDocToDoc(&searchRes.Hits.HitList[idx].DocSource))
	}
}

// Next loads the next document, requesting further result pages on
// demand. It returns false once all hits have been served or an error
// occurs.
func (i *esIterator) Next() bool {
	if i.lastErr != nil || i.cumIdx >= i.total {
		return false
	}

	// Fetch and convert the next result page once the current one is
	// consumed.
	if i.pageIdx >= len(i.page) {
		i.searchReq["from"] = i.searchReq["from"].(uint64) + batchSize

		searchRes, err := performSearch(i.client, i.searchReq)
		if err != nil {
			i.lastErr = err

			return false
		}

		i.fillPage(searchRes)

		if len(i.page) == 0 {
			return false
		}
	}

	i.doc = i.page[i.pageIdx]
	i.pageIdx++
	i.cumIdx++

	return true
}

// Document returns the document at the current iterator position.
func (i *esIterator) Document() *index.Document {
	return i.doc
}

// TotalCount returns the total number of results the search matched.
func (i *esIterator) TotalCount() uint64 {
	return i.total
}

// Error returns the last error encountered by the iterator.
func (i *esIterator) Error() error {
	return i.lastErr
}

// Close releases any resources allocated to the iterator.
func (i *esIterator) Close() error {
	i.client = nil
	i.searchReq = nil
	i.page = nil
	i.cumIdx = i.total

	return nil
}
