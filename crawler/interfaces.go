package crawler

import (
	"context"
	"net/http"

	"github.com/mycok/kwScout/corpus/index"
	"github.com/mycok/kwScout/report"
)

// URLGetter should be implemented by objects that perform
// HTTP GET requests to fetch page data.
type URLGetter interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

// PrivateNetworkDetector should be implemented by objects that can detect
// whether a host resolves to a private network address.
type PrivateNetworkDetector interface {
	IsNetworkPrivate(address string) (bool, error)
}

// Reporter should be implemented by objects that can accumulate the
// per-URL visit state and extraction results of a crawl run.
type Reporter interface {
	// Register creates the pending report entry for a scheduled URL.
	Register(url string, rank int)

	// RecordVisit finalizes the fetch outcome for a URL.
	RecordVisit(rec report.VisitRecord)

	// SetTitle attaches the extracted page title to the URL's report.
	SetTitle(url, title string)

	// AddPaths merges structural paths into the URL's path set.
	AddPaths(url string, paths []string)

	// AddContents appends deduplicated content blocks to the URL's
	// content list.
	AddContents(url string, contents []report.Content)
}

// Indexer should be implemented by objects that can index content blocks
// accepted by the extraction stage.
type Indexer interface {
	// Index adds a new document or updates an existing index entry
	// in case of an existing document.
	Index(doc *index.Document) error
}
