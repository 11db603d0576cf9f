package crawler

import (
	"context"

	"github.com/mycok/kwScout/pipeline"
)

// Static and compile-time check to ensure tallySink implements
// pipeline.Sink interface.
var _ pipeline.Sink = (*tallySink)(nil)

// tallySink tallies the URLs whose visit settled during a crawl. The
// broadcast tail stage delivers one payload clone per branch, so the
// tally is keyed by URL to count each visit exactly once. Hit sequences
// are deduplicated upstream which keeps the key set collision free.
type tallySink struct {
	visited map[string]struct{}
}

func newTallySink() *tallySink {
	return &tallySink{visited: make(map[string]struct{})}
}

func (s *tallySink) Consume(_ context.Context, p pipeline.Payload) error {
	s.visited[p.(*crawlerPayload).URL] = struct{}{}

	return nil
}

func (s *tallySink) settledCount() int {
	return len(s.visited)
}
