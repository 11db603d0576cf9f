package report

// Compile-time check that reportIterator satisfies the Iterator interface.
var _ Iterator = (*reportIterator)(nil)

// reportIterator iterates a snapshot of aggregator reports.
type reportIterator struct {
	// Retained for access to the aggregator mutex while cloning.
	aggregator   *Aggregator
	reports      []*SiteReport
	currentIndex int
}

// Next advances the iterator. It returns false once all reports have been
// consumed.
func (i *reportIterator) Next() bool {
	if i.currentIndex >= len(i.reports) {
		return false
	}

	i.currentIndex++

	return true
}

// Error returns the last error encountered by the iterator.
func (i *reportIterator) Error() error {
	return nil
}

// Close releases any resources allocated to the iterator.
func (i *reportIterator) Close() error {
	return nil
}

// Report returns a clone of the report at the current position. Cloning
// under the read lock keeps late aggregator updates from racing with the
// caller.
func (i *reportIterator) Report() *SiteReport {
	i.aggregator.mu.RLock()
	defer i.aggregator.mu.RUnlock()

	return i.reports[i.currentIndex-1].clone()
}
