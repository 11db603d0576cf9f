package crawler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/golang/mock/gomock"
	check "gopkg.in/check.v1"

	mock_crawler "github.com/mycok/kwScout/crawler/mocks"
	"github.com/mycok/kwScout/report"
)

// Initialize and register a pointer instance of the pageFetchingTestSuite
// to be executed by check testing package.
var _ = check.Suite(new(pageFetchingTestSuite))

type pageFetchingTestSuite struct {
	urlGetter   *mock_crawler.MockURLGetter
	netDetector *mock_crawler.MockPrivateNetworkDetector
}

func (s *pageFetchingTestSuite) SetUpTest(c *check.C) {
	ctrl := gomock.NewController(c)

	s.urlGetter = mock_crawler.NewMockURLGetter(ctrl)
	s.netDetector = mock_crawler.NewMockPrivateNetworkDetector(ctrl)
}

func (s *pageFetchingTestSuite) TearDownTest(c *check.C) {
	s.urlGetter = nil
	s.netDetector = nil
}

func (s *pageFetchingTestSuite) TestPageFetchingWithPrivateNetworkURL(c *check.C) {
	s.netDetector.EXPECT().IsNetworkPrivate("169.254.169.254").Return(true, nil)

	payload := s.fetchPage(c, "http://169.254.169.254/api/credentials")
	c.Assert(payload.Outcome, check.Equals, report.OutcomeNetworkError)
	c.Assert(payload.StatusCode, check.Equals, 0)
	c.Assert(payload.Document, check.IsNil)
}

func (s *pageFetchingTestSuite) TestPageFetchingWithUnparseableURL(c *check.C) {
	payload := s.fetchPage(c, "://missing-scheme")
	c.Assert(payload.Outcome, check.Equals, report.OutcomeNetworkError)
	c.Assert(payload.Document, check.IsNil)
}

func (s *pageFetchingTestSuite) TestPageFetchingWithTimedOutRequest(c *check.C) {
	s.netDetector.EXPECT().IsNetworkPrivate("example.com").Return(false, nil)
	s.urlGetter.EXPECT().Get(gomock.Any(), "http://example.com/index.html").Return(
		nil, timeoutError{},
	)

	payload := s.fetchPage(c, "http://example.com/index.html")
	c.Assert(payload.Outcome, check.Equals, report.OutcomeTimeout)
	c.Assert(payload.Document, check.IsNil)
}

func (s *pageFetchingTestSuite) TestPageFetchingWithTransportFailure(c *check.C) {
	s.netDetector.EXPECT().IsNetworkPrivate("example.com").Return(false, nil)
	s.urlGetter.EXPECT().Get(gomock.Any(), "http://example.com/index.html").Return(
		nil, errors.New("connection refused"),
	)

	payload := s.fetchPage(c, "http://example.com/index.html")
	c.Assert(payload.Outcome, check.Equals, report.OutcomeNetworkError)
	c.Assert(payload.Document, check.IsNil)
}

func (s *pageFetchingTestSuite) TestPageFetchingWithErrorStatusCode(c *check.C) {
	s.netDetector.EXPECT().IsNetworkPrivate("example.com").Return(false, nil)
	s.urlGetter.EXPECT().Get(gomock.Any(), "http://example.com/missing").Return(makeResponse(
		404, "text/html", "<html><body>not found</body></html>",
	), nil)

	payload := s.fetchPage(c, "http://example.com/missing")
	c.Assert(payload.Outcome, check.Equals, report.OutcomeHTTPError)
	c.Assert(payload.StatusCode, check.Equals, 404)
	c.Assert(payload.Document, check.IsNil)
}

func (s *pageFetchingTestSuite) TestPageFetchingWithNonHTMLContentType(c *check.C) {
	s.netDetector.EXPECT().IsNetworkPrivate("example.com").Return(false, nil)
	s.urlGetter.EXPECT().Get(gomock.Any(), "http://example.com/list/products").Return(makeResponse(
		200, "application/json", `{"products": "[a, b, c]"}`,
	), nil)

	payload := s.fetchPage(c, "http://example.com/list/products")
	c.Assert(payload.Outcome, check.Equals, report.OutcomeOK)
	c.Assert(payload.StatusCode, check.Equals, 200)
	c.Assert(payload.Document, check.IsNil)
}

func (s *pageFetchingTestSuite) TestPageFetchingWithUnreadableBody(c *check.C) {
	s.netDetector.EXPECT().IsNetworkPrivate("example.com").Return(false, nil)

	resp := makeResponse(200, "text/html", "")
	resp.Body = io.NopCloser(failingReader{})
	s.urlGetter.EXPECT().Get(gomock.Any(), "http://example.com/index.html").Return(resp, nil)

	payload := s.fetchPage(c, "http://example.com/index.html")
	c.Assert(payload.Outcome, check.Equals, report.OutcomeOK)
	c.Assert(payload.StatusCode, check.Equals, 200)
	c.Assert(payload.Document, check.IsNil)
}

func (s *pageFetchingTestSuite) TestPageFetchingSuccessfulRun(c *check.C) {
	s.netDetector.EXPECT().IsNetworkPrivate("example.com").Return(false, nil)
	s.urlGetter.EXPECT().Get(gomock.Any(), "http://example.com/index.html").Return(makeResponse(
		200, "application/html", "<html><head><title>yea!!, test passed</title></head></html>",
	), nil)

	payload := s.fetchPage(c, "http://example.com/index.html")
	c.Assert(payload.Outcome, check.Equals, report.OutcomeOK)
	c.Assert(payload.StatusCode, check.Equals, 200)
	c.Assert(payload.Document, check.Not(check.IsNil))
	c.Assert(payload.Document.Find("title").Text(), check.Equals, "yea!!, test passed")
}

func (s *pageFetchingTestSuite) fetchPage(c *check.C, url string) *crawlerPayload {
	payload := &crawlerPayload{URL: url}
	f := newPageFetcher(s.urlGetter, s.netDetector)
	processedPayload, err := f.Process(context.TODO(), payload)
	c.Assert(err, check.IsNil)

	// The fetch stage always forwards its payload so that downstream
	// stages can settle the visit record.
	c.Assert(processedPayload, check.FitsTypeOf, payload)

	return processedPayload.(*crawlerPayload)
}

func makeResponse(code int, contentType, body string) *http.Response {
	resp := new(http.Response)
	resp.Body = io.NopCloser(strings.NewReader(body))
	resp.StatusCode = code

	if contentType != "" {
		resp.Header = make(http.Header)
		resp.Header.Set("Content-Type", contentType)
	}

	return resp
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "request timed out" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("read failure")
}
