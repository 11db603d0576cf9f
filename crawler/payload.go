package crawler

import (
	"net/url"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/mycok/kwScout/extract"
	"github.com/mycok/kwScout/pipeline"
	"github.com/mycok/kwScout/report"
)

var (
	_ pipeline.Payload = (*crawlerPayload)(nil)

	payloadPool = sync.Pool{
		New: func() interface{} {
			return new(crawlerPayload)
		},
	}
)

type crawlerPayload struct {
	URL     string // populated by the input source (pipeline.Source) type.
	Rank    int    // populated by the input source (pipeline.Source) type.
	Keyword string // populated by the input source (pipeline.Source) type.

	StatusCode int               // populated by the page fetcher type.
	Outcome    report.Outcome    // populated by the page fetcher type.
	Document   *goquery.Document // populated by the page fetcher type, nil when the fetch failed.

	Title    string            // populated by the content extractor type.
	Paths    []string          // populated by the content extractor type.
	Contents []extract.Content // populated by the content extractor type.
}

// Clone returns a deep-copy of the original payload.
func (p *crawlerPayload) Clone() pipeline.Payload {
	payloadClone := payloadPool.Get().(*crawlerPayload)

	payloadClone.URL = p.URL
	payloadClone.Rank = p.Rank
	payloadClone.Keyword = p.Keyword
	payloadClone.StatusCode = p.StatusCode
	payloadClone.Outcome = p.Outcome
	payloadClone.Document = p.Document
	payloadClone.Title = p.Title
	payloadClone.Paths = append([]string(nil), p.Paths...)
	payloadClone.Contents = append([]extract.Content(nil), p.Contents...)

	return payloadClone
}

// MarkAsProcessed is invoked by the stage / stage runner when the payload
// either reaches the pipeline sink or it gets discarded by one of the
// pipeline stages.
func (p *crawlerPayload) MarkAsProcessed() {
	p.URL = ""
	p.Rank = 0
	p.Keyword = ""
	p.StatusCode = 0
	p.Outcome = ""
	p.Document = nil
	p.Title = ""
	p.Paths = p.Paths[:0]
	p.Contents = p.Contents[:0]

	// Put back a reset pointer to crawler payload into the pool for re-use.
	payloadPool.Put(p)
}

// payloadDomain returns the host component of the payload's URL. It keys
// the per-domain concurrency slots of the fetch stage.
func payloadDomain(p pipeline.Payload) string {
	cPayload, ok := p.(*crawlerPayload)
	if !ok {
		return ""
	}

	parsed, err := url.Parse(cPayload.URL)
	if err != nil {
		return cPayload.URL
	}

	return parsed.Hostname()
}
