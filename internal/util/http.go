package util

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// StatusError reports a non-200 response. The downloader branches on Code
// to decide whether a failure is worth retrying.
type StatusError struct {
	URL     string
	Code    int
	Snippet string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status %d fetching %s: %s", e.Code, e.URL, e.Snippet)
}

// Fetch executes a pre-built request and returns the body bytes. The
// caller builds the request, including context and headers.
func Fetch(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http do request for %s: %w", req.URL.String(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		limitReader := io.LimitReader(resp.Body, 512)
		bodyBytes, _ := io.ReadAll(limitReader)
		return nil, &StatusError{URL: req.URL.String(), Code: resp.StatusCode, Snippet: string(bodyBytes)}
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed reading body from %s: %w", req.URL.String(), err)
	}
	return bodyBytes, nil
}

// FetchTo streams the response body into w and reports the bytes written.
// Used for the period zips, which are too large to buffer whole.
func FetchTo(client *http.Client, req *http.Request, w io.Writer) (int64, error) {
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("http do request for %s: %w", req.URL.String(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		limitReader := io.LimitReader(resp.Body, 512)
		bodyBytes, _ := io.ReadAll(limitReader)
		return 0, &StatusError{URL: req.URL.String(), Code: resp.StatusCode, Snippet: string(bodyBytes)}
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed reading body from %s: %w", req.URL.String(), err)
	}
	return n, nil
}

// DefaultHTTPClient creates a default http.Client with a reasonable timeout.
func DefaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 120 * time.Second}
}
