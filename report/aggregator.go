package report

import (
	"sort"
	"sync"
)

// Aggregator maintains one SiteReport per distinct URL for the lifetime
// of a crawl run. It is safe for concurrent use: registration happens on
// the scheduling path while updates arrive from the reporting stage.
type Aggregator struct {
	mu       sync.RWMutex
	reports  map[string]*SiteReport
	pathSeen map[string]map[string]struct{}
	textSeen map[string]map[string]struct{}
}

// NewAggregator returns an empty aggregator ready to track a run.
func NewAggregator() *Aggregator {
	return &Aggregator{
		reports:  make(map[string]*SiteReport),
		pathSeen: make(map[string]map[string]struct{}),
		textSeen: make(map[string]map[string]struct{}),
	}
}

// Register creates the pending report entry for a scheduled URL. The rank
// recorded at first registration is immutable; repeated registrations of
// the same URL are ignored.
func (a *Aggregator) Register(url string, rank int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.reports[url]; exists {
		return
	}

	a.reports[url] = &SiteReport{
		URL:     url,
		Rank:    rank,
		Outcome: OutcomePending,
	}
}

// RecordVisit finalizes the fetch outcome for a URL. The registered rank
// is preserved; a record for an unregistered URL creates the report entry.
func (a *Aggregator) RecordVisit(rec VisitRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()

	r, exists := a.reports[rec.URL]
	if !exists {
		r = &SiteReport{
			URL:  rec.URL,
			Rank: rec.Rank,
		}
		a.reports[rec.URL] = r
	}

	r.StatusCode = rec.StatusCode
	r.Outcome = rec.Outcome
}

// SetTitle attaches the extracted page title to the URL's report. Empty
// titles are ignored.
func (a *Aggregator) SetTitle(url, title string) {
	if title == "" {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if r, exists := a.reports[url]; exists {
		r.Title = title
	}
}

// AddPaths merges structural paths into the URL's path set, preserving
// first-seen order and dropping duplicates and empty strings.
func (a *Aggregator) AddPaths(url string, paths []string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	r, exists := a.reports[url]
	if !exists {
		return
	}

	seen := a.pathSeen[url]
	if seen == nil {
		seen = make(map[string]struct{})
		a.pathSeen[url] = seen
	}

	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, dup := seen[path]; dup {
			continue
		}

		seen[path] = struct{}{}
		r.Paths = append(r.Paths, path)
	}
}

// AddContents appends content blocks to the URL's content list, skipping
// any block whose exact text was already accepted for that URL. Accepted
// blocks are stamped with the report's URL and rank plus their content ID.
func (a *Aggregator) AddContents(url string, contents []Content) {
	a.mu.Lock()
	defer a.mu.Unlock()

	r, exists := a.reports[url]
	if !exists {
		return
	}

	seen := a.textSeen[url]
	if seen == nil {
		seen = make(map[string]struct{})
		a.textSeen[url] = seen
	}

	for _, content := range contents {
		if content.Text == "" {
			continue
		}

		if _, dup := seen[content.Text]; dup {
			continue
		}

		seen[content.Text] = struct{}{}

		content.ID = ContentID(r.URL, content.Text)
		content.URL = r.URL
		content.Rank = r.Rank
		r.Contents = append(r.Contents, content)
	}
}

// Count returns the number of distinct URLs tracked so far.
func (a *Aggregator) Count() int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return len(a.reports)
}

// Finalize returns an iterator over the accumulated reports in ascending
// rank order. The aggregator remains usable afterwards; late updates are
// not reflected by previously created iterators.
func (a *Aggregator) Finalize() Iterator {
	a.mu.RLock()
	defer a.mu.RUnlock()

	list := make([]*SiteReport, 0, len(a.reports))
	for _, r := range a.reports {
		list = append(list, r)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].Rank < list[j].Rank
	})

	return &reportIterator{aggregator: a, reports: list}
}
