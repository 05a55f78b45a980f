package httpclient

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrRateLimited is returned when the upstream kept answering 429 after the
// retry budget was spent.
var ErrRateLimited = errors.New("upstream rate limited")

type Config struct {
	Timeout         time.Duration
	MaxRetries      uint64
	InitialDelay    time.Duration
	MaxIdleConns    int
	IdleConnTimeout time.Duration
}

type Client struct {
	http *http.Client
	conf Config
}

func New(conf Config) *Client {
	if conf.Timeout == 0 {
		conf.Timeout = 30 * time.Second
	}
	if conf.MaxRetries == 0 {
		conf.MaxRetries = 3
	}
	if conf.InitialDelay == 0 {
		conf.InitialDelay = time.Second
	}
	tr := &http.Transport{
		DialContext:     (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		MaxIdleConns:    conf.MaxIdleConns,
		IdleConnTimeout: conf.IdleConnTimeout,
	}
	return &Client{
		http: &http.Client{Transport: tr, Timeout: conf.Timeout},
		conf: conf,
	}
}

// PostJSON does a single POST with a JSON body, no retries.
func (c *Client) PostJSON(ctx context.Context, url string, body []byte, hdr http.Header) (*http.Response, error) {
	req, err := newJSONRequest(ctx, url, body, hdr)
	if err != nil {
		return nil, err
	}
	return c.http.Do(req)
}

// PostJSONRetry POSTs a JSON body and retries only when the upstream answers
// 429, with exponential delays starting at InitialDelay (1s -> 2s -> 4s on
// defaults). Any other outcome, success or failure, is returned immediately.
// After MaxRetries rate-limited attempts the failure is ErrRateLimited.
func (c *Client) PostJSONRetry(ctx context.Context, url string, body []byte, hdr http.Header) (*http.Response, error) {
	var resp *http.Response
	operation := func() error {
		req, err := newJSONRequest(ctx, url, body, hdr)
		if err != nil {
			return backoff.Permanent(err)
		}
		r, err := c.http.Do(req)
		if err != nil {
			return backoff.Permanent(err)
		}
		if r.StatusCode == http.StatusTooManyRequests {
			// drain body and close to reuse the connection
			io.Copy(io.Discard, r.Body)
			r.Body.Close()
			return ErrRateLimited
		}
		resp = r
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.conf.InitialDelay
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = time.Minute
	b.MaxElapsedTime = 0
	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, c.conf.MaxRetries), ctx))
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func newJSONRequest(ctx context.Context, url string, body []byte, hdr http.Header) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range hdr {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return req, nil
}
