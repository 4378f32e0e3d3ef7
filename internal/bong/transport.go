package bong

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	userAgent   = "bongtv/1.0"
	acceptTypes = "text/plain,application/json"

	// maxResponseSize caps how much of a provider response is read.
	maxResponseSize = 10 * 1024 * 1024
)

// response is the raw outcome of a single provider request.
type response struct {
	status int
	body   []byte
	header http.Header
}

// transport issues one HTTP request with the provider's fixed header set and
// decodes a gzip-compressed body when the provider sends one. It performs no
// retries; classification of the status code happens in the session layer.
type transport struct {
	baseURL string
	client  *http.Client
}

func newTransport(baseURL string, client *http.Client) *transport {
	if client == nil {
		client = &http.Client{
			// redirects surface as a 3xx status so classification sees them
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}
	return &transport{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// request performs method on path. GET params become the query string, POST
// params a form-encoded body, DELETE params a body with no content type. The
// cookie, when set, is attached verbatim. A timeout of zero means no per-call
// deadline beyond the context's own.
func (t *transport) request(ctx context.Context, method, path string, params url.Values, cookie string, timeout time.Duration) (*response, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	reqURL := t.baseURL + path
	var body io.Reader
	switch method {
	case http.MethodGet:
		if len(params) > 0 {
			reqURL += "?" + params.Encode()
		}
	case http.MethodPost:
		body = strings.NewReader(params.Encode())
	case http.MethodDelete:
		if len(params) > 0 {
			body = strings.NewReader(params.Encode())
		}
	default:
		return nil, &APIError{Sentinel: ErrBadResponse, Operation: method + " " + path, Err: errors.New("unsupported HTTP method")}
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, &APIError{Sentinel: ErrTransport, Operation: method + " " + path, Err: err}
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptTypes)
	req.Header.Set("Accept-Encoding", "gzip")
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &APIError{Sentinel: transportSentinel(err), Operation: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &APIError{Sentinel: transportSentinel(err), Operation: method + " " + path, Err: err}
	}

	raw, err = maybeGunzip(raw)
	if err != nil {
		return nil, &APIError{Sentinel: ErrBadResponse, Operation: method + " " + path, Err: err}
	}

	return &response{status: resp.StatusCode, body: raw, header: resp.Header}, nil
}

// transportSentinel distinguishes a timeout from any other network failure so
// a deadline is never misreported as an HTTP-level error.
func transportSentinel(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return ErrTransport
}

// maybeGunzip decompresses the body when it starts with the gzip magic number.
// Accept-Encoding is set manually, which disables net/http's automatic
// decompression, so the probe here is the single decode point.
func maybeGunzip(raw []byte) ([]byte, error) {
	if len(raw) < 2 || raw[0] != 0x1f || raw[1] != 0x8b {
		return raw, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
