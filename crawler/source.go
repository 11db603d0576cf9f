package crawler

import (
	"context"

	"github.com/mycok/kwScout/pipeline"
	"github.com/mycok/kwScout/search"
)

// Static and compile-time check to ensure hitSource implements
// pipeline.Source interface.
var _ pipeline.Source = (*hitSource)(nil)

type hitSource struct {
	hitIt   search.Iterator
	keyword string
	reports Reporter
}

// Next loads the next available payload from the source and returns true.
// When no more payloads are available or an error occurs, calls to Next
// return false.
func (s *hitSource) Next(ctx context.Context) bool {
	return s.hitIt.Next()
}

// Payload returns the current payload to be processed. Each emitted hit
// is registered with the reporter so the run owns a visit record for it
// even when the fetch never settles.
func (s *hitSource) Payload() pipeline.Payload {
	payload := payloadPool.Get().(*crawlerPayload)
	hit := s.hitIt.Hit()

	// Note: we populate the payload with the hit values, all the
	// remaining payload fields are populated by the various pipeline
	// stages during pipeline execution.
	payload.URL = hit.URL
	payload.Rank = hit.Rank
	payload.Keyword = s.keyword

	s.reports.Register(hit.URL, hit.Rank)

	return payload
}

// Error returns the last error encountered by the source. Search backend
// failures are deliberately not reported here: they end the hit sequence
// early and remain readable from the search iterator, so an exhausted
// provider never cancels fetches already in flight.
func (s *hitSource) Error() error {
	return nil
}
