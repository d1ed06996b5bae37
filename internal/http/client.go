package http

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
)

// Client wraps HTTP operations with site-specific configuration.
//
// Client provides the three transport capabilities the pipeline needs:
//   - GetString: fetch a page body, following redirects (extractor)
//   - ResolveRedirect: one non-following hop to expand a short link (resolver)
//   - Stream: streaming GET for asset downloads (download manager)
//
// Example usage:
//
//	client := NewClient("Mozilla/5.0 ...", cookie, 10*time.Second)
//
//	html, err := client.GetString(ctx, "https://www.xiaohongshu.com/explore/abc123", nil)
type Client struct {
	httpClient *http.Client
	noRedirect *http.Client
	userAgent  string
	cookie     string
}

// NewClient creates a new HTTP client.
//
// The userAgent is sent on every request; cookie (may be empty) is sent as
// the Cookie header. The timeout bounds each whole request including body
// read for GetString, and the connect/header phase for Stream.
func NewClient(userAgent, cookie string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		noRedirect: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		userAgent: userAgent,
		cookie:    cookie,
	}
}

// StreamResponse is an in-flight streaming download.
//
// The caller owns Body and must close it. A non-2xx StatusCode is not an
// error at this layer; the caller decides how to treat it.
type StreamResponse struct {
	// StatusCode is the HTTP response status code.
	StatusCode int

	// Status is the full status line, e.g. "404 Not Found".
	Status string

	// ContentType is the declared Content-Type header, media type only.
	ContentType string

	// ContentLength is the declared body length, or -1 if unknown.
	ContentLength int64

	// Body streams the response content.
	Body io.ReadCloser
}

// GetString performs a redirect-following GET and returns the body as a string.
//
// Extra headers (may be nil) are set after User-Agent and Cookie, so they can
// override either.
//
// Returns an error if the request fails, the response status is not 200 OK,
// or reading the body fails.
//
// Example:
//
//	html, err := client.GetString(ctx, postURL, map[string]string{"Referer": base})
func (c *Client) GetString(ctx context.Context, url string, headers map[string]string) (string, error) {
	req, err := c.newRequest(ctx, url, headers)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// ResolveRedirect performs a single non-following GET and returns the
// redirect target from the Location header.
//
// Short links redirect exactly once to the canonical post URL; only that one
// hop is taken. If the response is not a redirect, the original URL is
// returned unchanged so pattern matching can still run on it.
//
// Example:
//
//	target, err := client.ResolveRedirect(ctx, "https://xhslink.com/AbCdEf")
func (c *Client) ResolveRedirect(ctx context.Context, url string) (string, error) {
	req, err := c.newRequest(ctx, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.noRedirect.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if loc := resp.Header.Get("Location"); loc != "" {
		return loc, nil
	}
	return url, nil
}

// Stream opens a streaming GET to the given URL.
//
// Unlike GetString, the body is not read here and non-2xx statuses are
// returned to the caller rather than converted to errors: the download
// manager treats them as terminal, non-retryable failures. Only transport
// errors (dial, reset, timeout) produce an error.
//
// Example:
//
//	stream, err := client.Stream(ctx, assetURL, nil)
//	if err != nil {
//	    return err // transport failure, retryable
//	}
//	defer stream.Body.Close()
func (c *Client) Stream(ctx context.Context, url string, headers map[string]string) (*StreamResponse, error) {
	req, err := c.newRequest(ctx, url, headers)
	if err != nil {
		return nil, err
	}

	resp, err := c.streamClient().Do(req)
	if err != nil {
		return nil, err
	}

	return &StreamResponse{
		StatusCode:    resp.StatusCode,
		Status:        resp.Status,
		ContentType:   mediaType(resp.Header.Get("Content-Type")),
		ContentLength: resp.ContentLength,
		Body:          resp.Body,
	}, nil
}

// streamClient returns a client without a whole-request timeout. Large asset
// bodies can legitimately take longer than the page-fetch timeout; per-asset
// bounds come from retry counts, not wall clocks.
func (c *Client) streamClient() *http.Client {
	return &http.Client{
		Transport: c.httpClient.Transport,
	}
}

func (c *Client) newRequest(ctx context.Context, url string, headers map[string]string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// mediaType strips parameters like "; charset=utf-8" from a Content-Type value.
func mediaType(ct string) string {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.TrimSpace(ct)
	}
	return mt
}
