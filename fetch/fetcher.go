package fetch

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	apperrors "github.com/kbukum/voicescribe/errors"
	"github.com/kbukum/voicescribe/httpclient"
	"github.com/kbukum/voicescribe/logger"
	"github.com/kbukum/voicescribe/provider"
)

// Fetcher downloads a URL's body.
type Fetcher struct {
	client *httpclient.Adapter
	log    *logger.Logger
}

var _ provider.RequestResponse[string, []byte] = (*Fetcher)(nil)

// New creates a Fetcher. Options are passed through to the HTTP adapter.
func New(cfg Config, log *logger.Logger, opts ...httpclient.Option) (*Fetcher, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	hc := httpclient.Config{
		Name:    "fetch",
		Timeout: cfg.Timeout,
	}
	if cfg.MaxBytes > 0 {
		hc.MaxResponseBytes = cfg.MaxBytes
	}

	client, err := httpclient.New(hc, opts...)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	return &Fetcher{client: client, log: log.WithComponent("fetch")}, nil
}

// Name returns the provider name.
func (f *Fetcher) Name() string { return "fetch" }

// IsAvailable reports whether the underlying client is usable.
func (f *Fetcher) IsAvailable(ctx context.Context) bool { return f.client.IsAvailable(ctx) }

// Execute is Fetch under the provider interface.
func (f *Fetcher) Execute(ctx context.Context, rawURL string) ([]byte, error) {
	return f.Fetch(ctx, rawURL)
}

// Fetch downloads rawURL and returns its body.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	safe := Redact(rawURL)

	resp, err := f.client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: rawURL})
	if err != nil {
		f.log.Warn("download failed", logger.MergeWithError(map[string]interface{}{
			logger.FieldURL: safe,
		}, err))
		return nil, apperrors.New(apperrors.ErrCodeFetchFailed, reason(err)).
			WithCause(err).
			WithDetail("url", safe)
	}

	fields := map[string]interface{}{
		logger.FieldURL: safe,
		"bytes":         len(resp.Body),
		"mime":          Sniff(resp.Body),
	}
	if !IsAudio(resp.Body) {
		f.log.Warn("downloaded payload is not audio", fields)
	} else {
		f.log.Debug("downloaded", fields)
	}
	return resp.Body, nil
}

// Sniff returns the detected MIME type of data.
func Sniff(data []byte) string {
	return mimetype.Detect(data).String()
}

// IsAudio reports whether data sniffs as an audio type. Ogg is accepted
// whatever its detected subtype, since voice notes are Ogg/Opus.
func IsAudio(data []byte) bool {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "audio/") || m.Is("application/ogg") {
			return true
		}
	}
	return false
}

// Close releases idle connections.
func (f *Fetcher) Close(ctx context.Context) error {
	return f.client.Close(ctx)
}

// reason renders a transport failure without echoing the URL, which may
// carry credentials.
func reason(err error) string {
	var he *httpclient.Error
	if !stderrors.As(err, &he) {
		return err.Error()
	}
	return he.Reason()
}

// Redact strips credentials from a URL for logging: userinfo and query are
// dropped and Telegram-style "/bot<token>/" path segments are masked.
func Redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid url>"
	}
	u.User = nil
	u.RawQuery = ""
	u.RawPath = maskBotToken(u.EscapedPath())
	u.Path = maskBotToken(u.Path)
	return u.String()
}

func maskBotToken(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		if len(part) > 3 && strings.HasPrefix(part, "bot") {
			parts[i] = "bot***"
		}
	}
	return strings.Join(parts, "/")
}
