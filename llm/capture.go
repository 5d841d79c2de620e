package llm

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/bitrise-io/pr-review-bot/common"
)

// maxCapturedBody bounds how much of a failed response body is kept
const maxCapturedBody = 64 * 1024

// failureCapture records the status and raw body of the last non-2xx response
// passing through it, so errors can carry the body as the endpoint sent it.
type failureCapture struct {
	base http.RoundTripper

	mu     sync.Mutex
	status int
	body   []byte
}

func newFailureCapture(base http.RoundTripper) *failureCapture {
	if base == nil {
		base = http.DefaultTransport
	}
	return &failureCapture{base: base}
}

func (c *failureCapture) RoundTrip(req *http.Request) (*http.Response, error) {
	c.reset()

	resp, err := c.base.RoundTrip(req)
	if err != nil || resp.StatusCode < 300 {
		return resp, err
	}

	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))

	c.mu.Lock()
	c.status = resp.StatusCode
	if readErr == nil {
		c.body = truncateBody(body)
	}
	c.mu.Unlock()

	return resp, nil
}

// truncateBody keeps at most maxCapturedBody bytes, marking what was cut
func truncateBody(body []byte) []byte {
	if len(body) <= maxCapturedBody {
		return body
	}
	kept := body[:maxCapturedBody:maxCapturedBody]
	return append(kept, fmt.Sprintf("\n... [body truncated: %d bytes omitted]", len(body)-maxCapturedBody)...)
}

func (c *failureCapture) reset() {
	c.mu.Lock()
	c.status = 0
	c.body = nil
	c.mu.Unlock()
}

// requestError turns a failed call into an AIRequestError when the endpoint
// answered with a non-success status. Other errors are returned unchanged.
func (c *failureCapture) requestError(err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status == 0 {
		return err
	}
	return &common.AIRequestError{
		StatusCode: c.status,
		Body:       string(c.body),
	}
}
