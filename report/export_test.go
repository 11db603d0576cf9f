package report_test

import (
	"bytes"
	"encoding/json"

	check "gopkg.in/check.v1"

	"github.com/mycok/kwScout/report"
)

// Register an instance of the export test suite with the check runner.
var _ = check.Suite(new(exportTestSuite))

type exportTestSuite struct{}

// exportedDoc mirrors the JSON envelope emitted by WriteJSON.
type exportedDoc struct {
	Keyword string `json:"keyword"`
	Sites   []struct {
		URL             string   `json:"url"`
		Rank            int      `json:"rank"`
		Status          int      `json:"status"`
		Outcome         string   `json:"outcome"`
		Title           string   `json:"title"`
		StructuralPaths []string `json:"structural_paths"`
	} `json:"sites"`
	Contents []struct {
		URL            string `json:"url"`
		Rank           int    `json:"rank"`
		ContentID      string `json:"content_id"`
		StructuralPath string `json:"structural_path"`
		Text           string `json:"text"`
		TextLength     int    `json:"text_length"`
	} `json:"contents"`
}

func (s *exportTestSuite) TestWriteJSON(c *check.C) {
	aggregator := report.NewAggregator()

	aggregator.Register("https://second.example.com", 5)
	aggregator.RecordVisit(report.VisitRecord{
		URL:     "https://second.example.com",
		Rank:    5,
		Outcome: report.OutcomeTimeout,
	})

	aggregator.Register("https://first.example.com", 1)
	aggregator.RecordVisit(report.VisitRecord{
		URL:        "https://first.example.com",
		Rank:       1,
		StatusCode: 200,
		Outcome:    report.OutcomeOK,
	})
	aggregator.SetTitle("https://first.example.com", "First Example")
	aggregator.AddPaths("https://first.example.com", []string{"html > body > p"})
	aggregator.AddContents("https://first.example.com", []report.Content{
		{Path: "html > body > p", Text: "donald trump is a topic", Length: 23},
	})

	var buf bytes.Buffer
	err := report.WriteJSON(&buf, "trump", aggregator.Finalize())
	c.Assert(err, check.IsNil)

	var doc exportedDoc
	c.Assert(json.Unmarshal(buf.Bytes(), &doc), check.IsNil)

	c.Assert(doc.Keyword, check.Equals, "trump")
	c.Assert(doc.Sites, check.HasLen, 2)

	// Sites arrive in rank order.
	c.Assert(doc.Sites[0].URL, check.Equals, "https://first.example.com")
	c.Assert(doc.Sites[0].Rank, check.Equals, 1)
	c.Assert(doc.Sites[0].Status, check.Equals, 200)
	c.Assert(doc.Sites[0].Outcome, check.Equals, "ok")
	c.Assert(doc.Sites[0].Title, check.Equals, "First Example")
	c.Assert(doc.Sites[0].StructuralPaths, check.DeepEquals, []string{"html > body > p"})

	c.Assert(doc.Sites[1].URL, check.Equals, "https://second.example.com")
	c.Assert(doc.Sites[1].Outcome, check.Equals, "timeout")
	c.Assert(doc.Sites[1].Status, check.Equals, 0)
	c.Assert(doc.Sites[1].StructuralPaths, check.HasLen, 0)

	c.Assert(doc.Contents, check.HasLen, 1)
	c.Assert(doc.Contents[0].URL, check.Equals, "https://first.example.com")
	c.Assert(doc.Contents[0].Rank, check.Equals, 1)
	c.Assert(doc.Contents[0].ContentID, check.Not(check.Equals), "")
	c.Assert(doc.Contents[0].StructuralPath, check.Equals, "html > body > p")
	c.Assert(doc.Contents[0].Text, check.Equals, "donald trump is a topic")
	c.Assert(doc.Contents[0].TextLength, check.Equals, 23)
}

func (s *exportTestSuite) TestWriteJSONEmptyRun(c *check.C) {
	var buf bytes.Buffer
	err := report.WriteJSON(&buf, "trump", report.NewAggregator().Finalize())
	c.Assert(err, check.IsNil)

	var doc exportedDoc
	c.Assert(json.Unmarshal(buf.Bytes(), &doc), check.IsNil)
	c.Assert(doc.Sites, check.HasLen, 0)
	c.Assert(doc.Contents, check.HasLen, 0)
}
