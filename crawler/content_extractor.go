package crawler

import (
	"context"

	"github.com/mycok/kwScout/extract"
	"github.com/mycok/kwScout/pipeline"
)

// Static and compile-time check to ensure contentExtractor implements
// pipeline.Processor interface.
var _ pipeline.Processor = (*contentExtractor)(nil)

// contentExtractor runs keyword occurrence extraction over successfully
// fetched pages. Payloads without a parsed document pass through
// untouched so their visit records can still be finalized downstream.
type contentExtractor struct {
	extractor *extract.Extractor
}

func newContentExtractor() *contentExtractor {
	return &contentExtractor{extractor: extract.New(extract.Config{})}
}

// Process extracts the structural paths and content blocks for every
// keyword occurrence in the payload's document.
func (p *contentExtractor) Process(
	ctx context.Context, payload pipeline.Payload,
) (pipeline.Payload, error) {

	cPayload, ok := payload.(*crawlerPayload)
	if !ok {
		return nil, nil
	}

	if cPayload.Document == nil {
		return cPayload, nil
	}

	res := p.extractor.Extract(cPayload.Document, cPayload.Keyword)

	cPayload.Title = res.Title
	cPayload.Paths = res.Paths
	cPayload.Contents = res.Contents

	return cPayload, nil
}
