/*
	crawler package implements the keyword harvest pipeline. Given a
	ranked sequence of candidate URLs for a keyword, the harvesting
	process involves the following stages:
		1. Retrieve the page behind each candidate URL under global and
		per-domain concurrency limits and settle a visit outcome for
		every URL regardless of success.
		2. Locate keyword occurrences in each successfully fetched page
		and extract a structural path plus a cleaned, quality-filtered
		content block per occurrence.
		3. Merge the visit outcome and extraction results into the run
		report, and index the accepted content blocks into the
		searchable corpus.
*/
package crawler

import (
	"context"

	"github.com/mycok/kwScout/pipeline"
	"github.com/mycok/kwScout/search"
)

// Config serves as a configuration object for the crawler.
type Config struct {
	PrivateNetworkDetector PrivateNetworkDetector
	URLGetter              URLGetter
	Reports                Reporter
	Corpus                 Indexer

	// Maximum number of concurrent in-flight fetches.
	GlobalConcurrency int

	// Maximum number of concurrent in-flight fetches per host.
	PerDomainConcurrency int
}

// Crawler executes a keyword harvest pipeline.
type Crawler struct {
	reports Reporter
	p       *pipeline.Pipeline
}

// New configures and returns a pointer to a fully configured crawler type.
func New(cfg Config) *Crawler {
	return &Crawler{
		reports: cfg.Reports,
		p:       assembleHarvestPipeline(cfg),
	}
}

func assembleHarvestPipeline(cfg Config) *pipeline.Pipeline {
	return pipeline.New(
		pipeline.NewKeyedWorkerPool(
			newPageFetcher(cfg.URLGetter, cfg.PrivateNetworkDetector),
			payloadDomain,
			cfg.GlobalConcurrency,
			cfg.PerDomainConcurrency,
		),
		pipeline.NewFIFO(newContentExtractor()),
		pipeline.NewBroadcast(
			newReportUpdater(cfg.Reports),
			newCorpusIndexer(cfg.Corpus),
		),
	)
}

// Crawl executes the pipeline against the provided hit sequence. Calls
// to Crawl block until the pipeline execution is complete and return the
// number of URLs whose visit settled.
func (c *Crawler) Crawl(
	ctx context.Context, keyword string, hitIt search.Iterator,
) (int, error) {

	sink := newTallySink()

	err := c.p.Execute(ctx, &hitSource{
		hitIt:   hitIt,
		keyword: keyword,
		reports: c.reports,
	}, sink)

	return sink.settledCount(), err
}
