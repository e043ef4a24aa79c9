// FILE: driftlake/logship/sender.go
package logship

import (
	"os"
	"time"

	"github.com/valyala/fasthttp"
)

// Sender attempts network delivery of a finished archive. The reporter never
// deletes the archive after handing it off; deletion-on-success or
// retry-on-failure is the sender's contract.
type Sender interface {
	Send(archivePath string) error
}

// HTTPSender posts archives to a collector endpoint as JSON
type HTTPSender struct {
	client  *fasthttp.Client
	url     string
	timeout time.Duration
}

// NewHTTPSender creates a sender posting to the given URL
func NewHTTPSender(url string, timeout time.Duration) *HTTPSender {
	return &HTTPSender{
		client: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		url:     url,
		timeout: timeout,
	}
}

// Send uploads the archive content. Any non-success status is an error; the
// archive file is left untouched either way.
func (s *HTTPSender) Send(archivePath string) error {
	payload, err := os.ReadFile(archivePath)
	if err != nil {
		return fmtErrorf("failed to read archive '%s': %w", archivePath, err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(payload)

	if err := s.client.DoTimeout(req, resp, s.timeout); err != nil {
		return fmtErrorf("failed to post log archive: %w", err)
	}

	if code := resp.StatusCode(); code < fasthttp.StatusOK || code >= fasthttp.StatusMultipleChoices {
		return fmtErrorf("collector rejected log archive: status %d", code)
	}
	return nil
}
