package crawler

import (
	"context"

	"github.com/mycok/kwScout/corpus/index"
	"github.com/mycok/kwScout/pipeline"
	"github.com/mycok/kwScout/report"
)

// Static and compile-time check to ensure corpusIndexer implements
// pipeline.Processor interface.
var _ pipeline.Processor = (*corpusIndexer)(nil)

// corpusIndexer upserts each accepted content block into the searchable
// corpus. Duplicate texts within a page are skipped the same way the
// report aggregator skips them, so both broadcast branches agree on the
// accepted set and its content IDs.
type corpusIndexer struct {
	corpus Indexer
}

func newCorpusIndexer(corpus Indexer) *corpusIndexer {
	return &corpusIndexer{corpus: corpus}
}

// Process indexes the payload's deduplicated content blocks.
func (p *corpusIndexer) Process(
	ctx context.Context, payload pipeline.Payload,
) (pipeline.Payload, error) {

	cPayload, ok := payload.(*crawlerPayload)
	if !ok {
		return nil, nil
	}

	seen := make(map[string]struct{}, len(cPayload.Contents))

	for _, content := range cPayload.Contents {
		if content.Text == "" {
			continue
		}

		if _, dup := seen[content.Text]; dup {
			continue
		}

		seen[content.Text] = struct{}{}

		doc := &index.Document{
			ID:      report.ContentID(cPayload.URL, content.Text),
			URL:     cPayload.URL,
			Rank:    cPayload.Rank,
			Title:   cPayload.Title,
			Path:    content.Path,
			Content: content.Text,
			Length:  content.Length,
		}

		if err := p.corpus.Index(doc); err != nil {
			return nil, err
		}
	}

	return cPayload, nil
}
