package tracktest

import (
	check "gopkg.in/check.v1"

	"github.com/mycok/kwScout/runtrack"
)

// BaseSuite defines a set of re-usable tracker related tests that can
// be executed against any concrete type that implements the
// runtrack.Tracker interface.
type BaseSuite struct {
	tracker runtrack.Tracker
}

// SetTracker sets BaseSuite's tracker field.
func (s *BaseSuite) SetTracker(tracker runtrack.Tracker) {
	s.tracker = tracker
}

// TestUnknownRunIsIncomplete verifies that runs that were never marked
// report as incomplete.
func (s *BaseSuite) TestUnknownRunIsIncomplete(c *check.C) {
	complete, err := s.tracker.IsComplete("news", "trump")

	c.Assert(err, check.IsNil)
	c.Assert(complete, check.Equals, false)
}

// TestMarkCompleteIsIdempotent verifies that marking a run twice leaves
// it completed without errors.
func (s *BaseSuite) TestMarkCompleteIsIdempotent(c *check.C) {
	err := s.tracker.MarkComplete("news", "trump")
	c.Assert(err, check.IsNil)

	err = s.tracker.MarkComplete("news", "trump")
	c.Assert(err, check.IsNil)

	complete, err := s.tracker.IsComplete("news", "trump")
	c.Assert(err, check.IsNil)
	c.Assert(complete, check.Equals, true)
}

// TestRunsAreTrackedPerIndustryAndKeyword verifies that completion state
// does not leak across industry or keyword boundaries.
func (s *BaseSuite) TestRunsAreTrackedPerIndustryAndKeyword(c *check.C) {
	err := s.tracker.MarkComplete("news", "trump")
	c.Assert(err, check.IsNil)

	complete, err := s.tracker.IsComplete("news", "biden")
	c.Assert(err, check.IsNil)
	c.Assert(complete, check.Equals, false)

	complete, err = s.tracker.IsComplete("sports", "trump")
	c.Assert(err, check.IsNil)
	c.Assert(complete, check.Equals, false)

	complete, err = s.tracker.IsComplete("news", "trump")
	c.Assert(err, check.IsNil)
	c.Assert(complete, check.Equals, true)
}
