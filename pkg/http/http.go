// Package http is a small retrying client for outgoing JSON calls.
//
//	resp, err := http.New(nil).Post(url).
//	    Header("X-Sweetshop-Event", "purchase.created").
//	    Body(payload).
//	    Retry(3, 250*time.Millisecond).
//	    Send(ctx)
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	gohttp "net/http"
	"time"

	"github.com/shashiranjanraj/sweetshop/pkg/logger"
)

const maxResponseBytes = 1 << 20

type Client struct {
	hc *gohttp.Client
}

// New wraps hc. A nil hc gets a 10 second timeout.
func New(hc *gohttp.Client) *Client {
	if hc == nil {
		hc = &gohttp.Client{Timeout: 10 * time.Second}
	}
	return &Client{hc: hc}
}

type Request struct {
	client    *Client
	method    string
	url       string
	headers   gohttp.Header
	body      any
	attempts  int
	retryWait time.Duration
}

func (c *Client) Get(url string) *Request  { return c.request(gohttp.MethodGet, url) }
func (c *Client) Post(url string) *Request { return c.request(gohttp.MethodPost, url) }

func (c *Client) request(method, url string) *Request {
	h := gohttp.Header{}
	h.Set("Accept", "application/json")
	return &Request{client: c, method: method, url: url, headers: h, attempts: 1, retryWait: 500 * time.Millisecond}
}

func (r *Request) Header(key, value string) *Request {
	r.headers.Set(key, value)
	return r
}

// Body sets a JSON body. []byte is sent as-is.
func (r *Request) Body(v any) *Request {
	r.body = v
	return r
}

// Retry makes up to n attempts, doubling wait after each failure. Network
// errors and 5xx responses are retried; 4xx are not.
func (r *Request) Retry(n int, wait time.Duration) *Request {
	if n < 1 {
		n = 1
	}
	r.attempts = n
	r.retryWait = wait
	return r
}

// Send runs the request. A non-2xx final response is returned together with
// an error.
func (r *Request) Send(ctx context.Context) (*Response, error) {
	raw, err := r.encode()
	if err != nil {
		return nil, err
	}

	wait := r.retryWait
	var (
		resp    *Response
		lastErr error
	)
	for attempt := 1; attempt <= r.attempts; attempt++ {
		resp, lastErr = r.do(ctx, raw)
		if lastErr == nil && resp.OK() {
			return resp, nil
		}
		if lastErr == nil {
			lastErr = fmt.Errorf("http: %s %s returned %d", r.method, r.url, resp.StatusCode)
			if resp.StatusCode < 500 {
				return resp, lastErr
			}
		}
		if attempt == r.attempts {
			break
		}
		logger.WithCtx(ctx).Warn("http: request failed, retrying",
			"url", r.url, "attempt", attempt, "backoff", wait, "error", lastErr)
		select {
		case <-ctx.Done():
			return resp, ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return resp, lastErr
}

func (r *Request) encode() ([]byte, error) {
	switch v := r.body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("http: marshal body: %w", err)
		}
		return b, nil
	}
}

func (r *Request) do(ctx context.Context, raw []byte) (*Response, error) {
	var body io.Reader
	if raw != nil {
		body = bytes.NewReader(raw)
	}
	req, err := gohttp.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return nil, fmt.Errorf("http: build request: %w", err)
	}
	req.Header = r.headers.Clone()
	if raw != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := r.client.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http: send: %w", err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("http: read body: %w", err)
	}
	return &Response{StatusCode: res.StatusCode, Headers: res.Header, Raw: data}, nil
}

type Response struct {
	StatusCode int
	Headers    gohttp.Header
	Raw        []byte
}

func (r *Response) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

func (r *Response) JSON(dest any) error {
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("http: decode JSON: %w", err)
	}
	return nil
}
