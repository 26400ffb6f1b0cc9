package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/kbukum/voicescribe/version"
)

// Adapter sends Requests with the configured auth, headers and rate limit.
// It is also a provider.RequestResponse[Request, *Response], so provider
// middleware can wrap it.
type Adapter struct {
	hc      *http.Client
	config  Config
	limiter *rate.Limiter
}

// Option customizes an Adapter.
type Option func(*Adapter)

// WithLimiter shares one limiter between adapters that hit the same API.
func WithLimiter(l *rate.Limiter) Option {
	return func(a *Adapter) { a.limiter = l }
}

// New validates cfg and builds an adapter with its own transport.
func New(cfg Config, opts ...Option) (*Adapter, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &Adapter{
		hc: &http.Client{
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
			Timeout:   cfg.Timeout,
		},
		config: cfg,
	}
	if cfg.RateLimit > 0 {
		a.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Do sends req and reads the whole body. A non-2xx status yields both the
// response and a classified *Error.
func (a *Adapter) Do(ctx context.Context, req Request) (*Response, error) {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, NewTimeoutError(err)
		}
	}

	httpReq, err := a.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	raw, err := a.hc.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, NewTimeoutError(err)
		}
		return nil, NewConnectionError(err)
	}
	defer func() { _ = raw.Body.Close() }()

	body, err := a.read(raw.Body)
	if err != nil {
		return nil, err
	}

	resp := &Response{StatusCode: raw.StatusCode, Header: raw.Header, Body: body}
	if e := ClassifyStatusCode(raw.StatusCode, body); e != nil {
		return resp, e
	}
	return resp, nil
}

// read enforces MaxResponseBytes by reading one byte past the limit.
func (a *Adapter) read(r io.Reader) ([]byte, error) {
	limit := a.config.MaxResponseBytes
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, NewConnectionError(fmt.Errorf("read response body: %w", err))
	}
	if limit > 0 && int64(len(body)) > limit {
		return nil, NewTooLargeError(limit)
	}
	return body, nil
}

func (a *Adapter) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	body, contentType, err := req.encode()
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("encode body: %v", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method(), req.url(a.config.BaseURL), body)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("create request: %v", err))
	}

	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	h := httpReq.Header
	h.Set("User-Agent", version.UserAgent())
	for _, set := range []map[string]string{a.config.Headers, req.Headers} {
		for k, v := range set {
			h.Set(k, v)
		}
	}
	if body != nil && contentType != "" && h.Get("Content-Type") == "" {
		h.Set("Content-Type", contentType)
	}

	auth := a.config.Auth
	if req.Auth != nil {
		auth = req.Auth
	}
	auth.apply(httpReq)
	return httpReq, nil
}

// Name is Config.Name, or "httpclient" when unset.
func (a *Adapter) Name() string {
	if a.config.Name == "" {
		return "httpclient"
	}
	return a.config.Name
}

func (a *Adapter) IsAvailable(context.Context) bool { return a.hc != nil }

// Execute is Do under the provider interface.
func (a *Adapter) Execute(ctx context.Context, req Request) (*Response, error) {
	return a.Do(ctx, req)
}

// Close drops idle keep-alive connections.
func (a *Adapter) Close(context.Context) error {
	a.hc.CloseIdleConnections()
	return nil
}
