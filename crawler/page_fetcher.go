package crawler

import (
	"context"
	"errors"
	"io"
	"net"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mycok/kwScout/pipeline"
	"github.com/mycok/kwScout/report"
)

// Static and compile-time check to ensure pageFetcher implements
// pipeline.Processor interface.
var _ pipeline.Processor = (*pageFetcher)(nil)

// pageFetcher serves as the first stage processor of the harvest
// pipeline. it processes payload values emitted by the input source and
// attempts to retrieve the page behind each candidate URL, settling the
// payload's visit outcome either way. Payloads whose fetch failed are
// forwarded rather than dropped so that the downstream stages can
// finalize the visit record for every scheduled URL.
type pageFetcher struct {
	urlGetter   URLGetter
	netDetector PrivateNetworkDetector
}

func newPageFetcher(
	urlGetter URLGetter, netDetector PrivateNetworkDetector,
) *pageFetcher {

	return &pageFetcher{
		urlGetter:   urlGetter,
		netDetector: netDetector,
	}
}

// Process attempts to fetch the payload's URL and attaches the parsed
// document to the payload on success. The visit outcome is always set
// before the payload is forwarded.
func (p *pageFetcher) Process(
	ctx context.Context, payload pipeline.Payload,
) (pipeline.Payload, error) {

	cPayload, ok := payload.(*crawlerPayload)
	if !ok {
		return nil, nil
	}

	// Refuse to fetch URLs that resolve to private networks, since
	// crawling such URLs is a security risk.
	isPrivate, err := p.isNetworkPrivate(cPayload.URL)
	if err != nil || isPrivate {
		cPayload.Outcome = report.OutcomeNetworkError

		return cPayload, nil
	}

	resp, err := p.urlGetter.Get(ctx, cPayload.URL)
	if err != nil {
		cPayload.Outcome = classifyFetchError(err)

		return cPayload, nil
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	cPayload.StatusCode = resp.StatusCode

	// Non-success statuses settle the visit with no content and are
	// never retried.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		cPayload.Outcome = report.OutcomeHTTPError

		return cPayload, nil
	}

	cPayload.Outcome = report.OutcomeOK

	// Only html payloads carry extractable content.
	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "html") {
		return cPayload, nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		// An unparseable body yields no content but the visit itself
		// settled successfully.
		return cPayload, nil
	}

	cPayload.Document = doc

	return cPayload, nil
}

func (p *pageFetcher) isNetworkPrivate(urlStr string) (bool, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return false, err
	}

	return p.netDetector.IsNetworkPrivate(parsed.Hostname())
}

// classifyFetchError maps a transport-level fetch failure to a visit
// outcome. Deadline overruns count as timeouts, everything else as a
// network failure.
func classifyFetchError(err error) report.Outcome {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return report.OutcomeTimeout
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return report.OutcomeTimeout
	}

	return report.OutcomeNetworkError
}
