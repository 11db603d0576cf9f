package crawler

import (
	"context"

	"github.com/mycok/kwScout/pipeline"
	"github.com/mycok/kwScout/report"
)

// Static and compile-time check to ensure reportUpdater implements
// pipeline.Processor interface.
var _ pipeline.Processor = (*reportUpdater)(nil)

// reportUpdater settles the visit record for each payload and merges the
// extraction results into the run's report aggregator.
type reportUpdater struct {
	reports Reporter
}

func newReportUpdater(reports Reporter) *reportUpdater {
	return &reportUpdater{reports: reports}
}

// Process updates the report entry for the payload's URL using the
// outcome and extraction values accumulated by the previous stages.
func (p *reportUpdater) Process(
	ctx context.Context, payload pipeline.Payload,
) (pipeline.Payload, error) {

	cPayload, ok := payload.(*crawlerPayload)
	if !ok {
		return nil, nil
	}

	p.reports.RecordVisit(report.VisitRecord{
		URL:        cPayload.URL,
		Rank:       cPayload.Rank,
		StatusCode: cPayload.StatusCode,
		Outcome:    cPayload.Outcome,
	})

	if cPayload.Title != "" {
		p.reports.SetTitle(cPayload.URL, cPayload.Title)
	}

	if len(cPayload.Paths) > 0 {
		p.reports.AddPaths(cPayload.URL, cPayload.Paths)
	}

	if len(cPayload.Contents) > 0 {
		contents := make([]report.Content, len(cPayload.Contents))
		for i, content := range cPayload.Contents {
			contents[i] = report.Content{
				Path:   content.Path,
				Text:   content.Text,
				Length: content.Length,
			}
		}

		p.reports.AddContents(cPayload.URL, contents)
	}

	return cPayload, nil
}
