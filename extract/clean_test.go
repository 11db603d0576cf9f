package extract

import (
	check "gopkg.in/check.v1"
)

// Register an instance of the cleaner test suite with the check runner.
var _ = check.Suite(new(cleanerTestSuite))

type cleanerTestSuite struct {
	cleaner *Cleaner
}

func (s *cleanerTestSuite) SetUpSuite(_ *check.C) {
	s.cleaner = NewCleaner()
}

func (s *cleanerTestSuite) TestCollapsesWhitespace(c *check.C) {
	c.Assert(
		s.cleaner.Clean("  spread \t across\n\nlines  "),
		check.Equals,
		"spread across lines",
	)
}

func (s *cleanerTestSuite) TestDecodesEntities(c *check.C) {
	c.Assert(
		s.cleaner.Clean("Tom &amp; Jerry &quot;special&quot;"),
		check.Equals,
		`Tom & Jerry "special"`,
	)
}

func (s *cleanerTestSuite) TestStripsControlCharacters(c *check.C) {
	c.Assert(
		s.cleaner.Clean("broken\x00text\x1bhere"),
		check.Equals,
		"broken text here",
	)
}

func (s *cleanerTestSuite) TestStripsEscapedMarkup(c *check.C) {
	c.Assert(
		s.cleaner.Clean("&lt;script&gt;alert(1)&lt;/script&gt; real words"),
		check.Equals,
		"real words",
	)
}

func (s *cleanerTestSuite) TestNonBreakingSpacesNormalized(c *check.C) {
	c.Assert(
		s.cleaner.Clean("one two"),
		check.Equals,
		"one two",
	)
}
