package crawler

import (
	"context"
	"errors"

	"github.com/golang/mock/gomock"
	check "gopkg.in/check.v1"

	"github.com/mycok/kwScout/corpus/index"
	mock_crawler "github.com/mycok/kwScout/crawler/mocks"
	"github.com/mycok/kwScout/extract"
	"github.com/mycok/kwScout/report"
)

// Initialize and register a pointer instance of the corpusIndexTestSuite
// to be executed by check testing package.
var _ = check.Suite(new(corpusIndexTestSuite))

type corpusIndexTestSuite struct {
	indexer *mock_crawler.MockIndexer
}

func (s *corpusIndexTestSuite) TestSuccessfulContentIndex(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	s.indexer = mock_crawler.NewMockIndexer(ctrl)

	payload := &crawlerPayload{
		URL:   "https://example.com",
		Rank:  2,
		Title: "Trade briefing",
		Contents: []extract.Content{
			{Path: "html > body > p", Text: "Import tariffs reshape budgets.", Length: 31},
			{Path: "html > body > li", Text: "Tariff schedules changed in May.", Length: 32},
		},
	}

	// Each accepted block is expected to be upsert under its stable
	// content ID so that re-runs stay idempotent.
	expect := s.indexer.EXPECT()
	expect.Index(&index.Document{
		ID:      report.ContentID("https://example.com", "Import tariffs reshape budgets."),
		URL:     "https://example.com",
		Rank:    2,
		Title:   "Trade briefing",
		Path:    "html > body > p",
		Content: "Import tariffs reshape budgets.",
		Length:  31,
	}).Return(nil)
	expect.Index(&index.Document{
		ID:      report.ContentID("https://example.com", "Tariff schedules changed in May."),
		URL:     "https://example.com",
		Rank:    2,
		Title:   "Trade briefing",
		Path:    "html > body > li",
		Content: "Tariff schedules changed in May.",
		Length:  32,
	}).Return(nil)

	p := s.indexContents(c, payload)
	c.Assert(p, check.Not(check.IsNil))
}

func (s *corpusIndexTestSuite) TestDuplicateAndEmptyTextsAreSkipped(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	s.indexer = mock_crawler.NewMockIndexer(ctrl)

	payload := &crawlerPayload{
		URL:  "https://example.com",
		Rank: 1,
		Contents: []extract.Content{
			{Path: "html > body > p", Text: "Import tariffs reshape budgets.", Length: 31},
			{Path: "html > body > div"},
			{Path: "html > body > div > p", Text: "Import tariffs reshape budgets.", Length: 31},
		},
	}

	s.indexer.EXPECT().Index(&index.Document{
		ID:      report.ContentID("https://example.com", "Import tariffs reshape budgets."),
		URL:     "https://example.com",
		Rank:    1,
		Path:    "html > body > p",
		Content: "Import tariffs reshape budgets.",
		Length:  31,
	}).Return(nil)

	p := s.indexContents(c, payload)
	c.Assert(p, check.Not(check.IsNil))
}

func (s *corpusIndexTestSuite) TestIndexingFailureAbortsTheRun(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	s.indexer = mock_crawler.NewMockIndexer(ctrl)

	payload := &crawlerPayload{
		URL:  "https://example.com",
		Rank: 1,
		Contents: []extract.Content{
			{Path: "html > body > p", Text: "Import tariffs reshape budgets.", Length: 31},
		},
	}

	s.indexer.EXPECT().Index(gomock.Any()).Return(errors.New("index unavailable"))

	output, err := newCorpusIndexer(s.indexer).Process(context.TODO(), payload)
	c.Assert(err, check.ErrorMatches, "index unavailable")
	c.Assert(output, check.IsNil)
}

func (s *corpusIndexTestSuite) indexContents(c *check.C, p *crawlerPayload) *crawlerPayload {
	output, err := newCorpusIndexer(s.indexer).Process(context.TODO(), p)
	c.Assert(err, check.IsNil)

	if output != nil {
		c.Assert(output, check.FitsTypeOf, p)

		return output.(*crawlerPayload)
	}

	return nil
}
