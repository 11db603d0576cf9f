/*
	Package report accumulates the per-site results of a crawl run: the
	visit outcome for every scheduled URL plus the structural paths and
	deduplicated content blocks the extractor produced for it.

	An Aggregator instance is owned by a single run and finalized once
	into a rank-ordered sequence of site reports.
*/
package report

import (
	"github.com/google/uuid"
)

// Outcome classifies how the fetch for a scheduled URL settled.
type Outcome string

const (
	// OutcomePending marks a URL that has been scheduled but whose fetch
	// has not settled yet.
	OutcomePending Outcome = "pending"

	// OutcomeOK marks a successfully fetched URL.
	OutcomeOK Outcome = "ok"

	// OutcomeHTTPError marks a fetch answered with an HTTP error status.
	OutcomeHTTPError Outcome = "httpError"

	// OutcomeTimeout marks a fetch that exceeded its deadline on every
	// attempt.
	OutcomeTimeout Outcome = "timeout"

	// OutcomeNetworkError marks a fetch that failed below the HTTP layer
	// on every attempt.
	OutcomeNetworkError Outcome = "networkError"
)

// VisitRecord is the single fetch-outcome entry maintained for a distinct
// URL during a run. StatusCode is zero when the fetch never produced an
// HTTP response.
type VisitRecord struct {
	URL        string
	Rank       int
	StatusCode int
	Outcome    Outcome
}

// Content is an accepted content block attributed to a site. ID, URL and
// Rank are filled in by the aggregator when the block is first accepted.
type Content struct {
	ID     uuid.UUID
	URL    string
	Rank   int
	Path   string
	Text   string
	Length int
}

// ContentID derives the stable ID for a content block from its site URL
// and exact text. Any consumer attributing the same block to the same
// site arrives at the same ID, so downstream stores can upsert
// independently of the aggregator.
func ContentID(url, text string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(url+"\n"+text))
}

// SiteReport collects everything recorded for one distinct URL. Paths
// behaves as an insertion-ordered set; Contents is deduplicated by exact
// text match.
type SiteReport struct {
	URL        string
	Rank       int
	StatusCode int
	Outcome    Outcome
	Title      string
	Paths      []string
	Contents   []Content
}

// clone returns a deep copy of the report so callers can never mutate
// aggregator state through a returned value.
func (r *SiteReport) clone() *SiteReport {
	reportCopy := new(SiteReport)
	*reportCopy = *r

	if r.Paths != nil {
		reportCopy.Paths = make([]string, len(r.Paths))
		copy(reportCopy.Paths, r.Paths)
	}

	if r.Contents != nil {
		reportCopy.Contents = make([]Content, len(r.Contents))
		copy(reportCopy.Contents, r.Contents)
	}

	return reportCopy
}

// Iterator is implemented by types that can iterate a sequence of site
// reports.
type Iterator interface {
	// Next advances the iterator. It returns false when no more reports
	// are available or an error occurs.
	Next() bool

	// Report returns the report at the current iterator position.
	Report() *SiteReport

	// Error returns the last error encountered by the iterator.
	Error() error

	// Close releases any resources associated with the iterator.
	Close() error
}
