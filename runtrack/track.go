/*
	Package runtrack defines the contract for tracking which
	industry/keyword harvest runs have already completed.

	The harvest service consults a Tracker before starting a keyword run
	and marks the run once its report has been exported, so interrupted
	batches resume where they left off.
*/
package runtrack

// Tracker should be implemented by objects that can persist the
// completion state of harvest runs keyed by industry and keyword.
type Tracker interface {
	// IsComplete checks whether the run identified by the industry and
	// keyword pair has already completed.
	IsComplete(industry, keyword string) (bool, error)

	// MarkComplete records the run identified by the industry and
	// keyword pair as completed. Marking an already-completed run is a
	// no-op.
	MarkComplete(industry, keyword string) error
}
