package crawler

import (
	"context"

	"github.com/golang/mock/gomock"
	check "gopkg.in/check.v1"

	mock_crawler "github.com/mycok/kwScout/crawler/mocks"
	"github.com/mycok/kwScout/extract"
	"github.com/mycok/kwScout/report"
)

// Initialize and register a pointer instance of the reportUpdateTestSuite
// to be executed by check testing package.
var _ = check.Suite(new(reportUpdateTestSuite))

type reportUpdateTestSuite struct {
	reports *mock_crawler.MockReporter
}

func (s *reportUpdateTestSuite) TestVisitOutcomeIsAlwaysRecorded(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	s.reports = mock_crawler.NewMockReporter(ctrl)

	// A failed fetch carries no extraction results, so only the visit
	// record itself is expected to reach the aggregator.
	payload := &crawlerPayload{
		URL:        "https://example.com",
		Rank:       3,
		StatusCode: 404,
		Outcome:    report.OutcomeHTTPError,
	}

	s.reports.EXPECT().RecordVisit(report.VisitRecord{
		URL:        "https://example.com",
		Rank:       3,
		StatusCode: 404,
		Outcome:    report.OutcomeHTTPError,
	})

	p := s.updateReport(c, payload)
	c.Assert(p, check.Not(check.IsNil))
}

func (s *reportUpdateTestSuite) TestExtractionResultsAreMerged(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	s.reports = mock_crawler.NewMockReporter(ctrl)

	payload := &crawlerPayload{
		URL:        "https://example.com",
		Rank:       1,
		StatusCode: 200,
		Outcome:    report.OutcomeOK,
		Title:      "Trade briefing",
		Paths:      []string{"html > body > p#intro"},
		Contents: []extract.Content{
			{
				Path:   "html > body > p#intro",
				Text:   "Solar import tariffs reshape procurement budgets.",
				Length: 49,
			},
		},
	}

	expect := s.reports.EXPECT()
	expect.RecordVisit(report.VisitRecord{
		URL:        "https://example.com",
		Rank:       1,
		StatusCode: 200,
		Outcome:    report.OutcomeOK,
	})
	expect.SetTitle("https://example.com", "Trade briefing")
	expect.AddPaths("https://example.com", []string{"html > body > p#intro"})
	expect.AddContents("https://example.com", []report.Content{
		{
			Path:   "html > body > p#intro",
			Text:   "Solar import tariffs reshape procurement budgets.",
			Length: 49,
		},
	})

	p := s.updateReport(c, payload)
	c.Assert(p, check.Not(check.IsNil))
}

func (s *reportUpdateTestSuite) updateReport(c *check.C, p *crawlerPayload) *crawlerPayload {
	output, err := newReportUpdater(s.reports).Process(context.TODO(), p)
	c.Assert(err, check.IsNil)

	if output != nil {
		c.Assert(output, check.FitsTypeOf, p)

		return output.(*crawlerPayload)
	}

	return nil
}
