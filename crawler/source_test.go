package crawler

import (
	"context"
	"errors"

	"github.com/golang/mock/gomock"
	check "gopkg.in/check.v1"

	mock_crawler "github.com/mycok/kwScout/crawler/mocks"
	"github.com/mycok/kwScout/search"
)

// Initialize and register a pointer instance of the hitSourceTestSuite
// to be executed by check testing package.
var _ = check.Suite(new(hitSourceTestSuite))

type hitSourceTestSuite struct{}

func (s *hitSourceTestSuite) TestEachEmittedHitIsRegistered(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	reports := mock_crawler.NewMockReporter(ctrl)
	reports.EXPECT().Register("https://example.com/a", 1)
	reports.EXPECT().Register("https://example.com/b", 2)

	source := &hitSource{
		hitIt: &stubHitIterator{hits: []search.Hit{
			{URL: "https://example.com/a", Rank: 1},
			{URL: "https://example.com/b", Rank: 2},
		}},
		keyword: "import tariffs",
		reports: reports,
	}

	var payloads []*crawlerPayload
	for source.Next(context.TODO()) {
		payloads = append(payloads, source.Payload().(*crawlerPayload))
	}

	c.Assert(payloads, check.HasLen, 2)
	c.Assert(payloads[0].URL, check.Equals, "https://example.com/a")
	c.Assert(payloads[0].Rank, check.Equals, 1)
	c.Assert(payloads[0].Keyword, check.Equals, "import tariffs")
	c.Assert(payloads[1].URL, check.Equals, "https://example.com/b")
	c.Assert(payloads[1].Rank, check.Equals, 2)
}

func (s *hitSourceTestSuite) TestProviderFailureEndsTheSequenceWithoutAnError(c *check.C) {
	source := &hitSource{
		hitIt: &stubHitIterator{err: errors.New("search: backend unavailable")},
	}

	// The provider failure ends the hit sequence early but must never
	// surface through the source, otherwise fetches already in flight
	// for the partial hit set would be cancelled.
	c.Assert(source.Next(context.TODO()), check.Equals, false)
	c.Assert(source.Error(), check.IsNil)
}

type stubHitIterator struct {
	hits    []search.Hit
	current int
	err     error
}

func (it *stubHitIterator) Next() bool {
	if it.err != nil || it.current >= len(it.hits) {
		return false
	}

	it.current++

	return true
}

func (it *stubHitIterator) Hit() search.Hit {
	return it.hits[it.current-1]
}

func (it *stubHitIterator) Error() error {
	return it.err
}

func (it *stubHitIterator) Close() error {
	return nil
}
