package convertio

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/benbjohnson/clock"
	"github.com/tidwall/gjson"

	"github.com/kbukum/voicescribe/conversion"
	apperrors "github.com/kbukum/voicescribe/errors"
	"github.com/kbukum/voicescribe/fetch"
	"github.com/kbukum/voicescribe/httpclient"
	"github.com/kbukum/voicescribe/logger"
	"github.com/kbukum/voicescribe/observability"
	"github.com/kbukum/voicescribe/provider"
)

const (
	stepFinish = "finish"
	stepError  = "error"
)

// Client talks to the Convertio API.
type Client struct {
	cfg        Config
	api        *httpclient.Adapter
	downloader provider.RequestResponse[string, []byte]
	clock      clock.Clock
	metrics    *observability.Metrics
	log        *logger.Logger
	httpOpts   []httpclient.Option
}

var _ conversion.Converter = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithClock replaces the clock that drives the poll interval.
func WithClock(c clock.Clock) Option {
	return func(cl *Client) { cl.clock = c }
}

// WithMetrics records poll counts.
func WithMetrics(m *observability.Metrics) Option {
	return func(cl *Client) { cl.metrics = m }
}

// WithHTTPOptions passes options to the API adapter.
func WithHTTPOptions(opts ...httpclient.Option) Option {
	return func(cl *Client) { cl.httpOpts = append(cl.httpOpts, opts...) }
}

// New creates a Convertio client. The downloader retrieves the converted
// artifact once the job has finished.
func New(cfg Config, downloader provider.RequestResponse[string, []byte], log *logger.Logger, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:        cfg,
		downloader: downloader,
		clock:      clock.New(),
		log:        log.WithComponent("convertio"),
	}
	for _, opt := range opts {
		opt(c)
	}

	api, err := httpclient.New(httpclient.Config{
		Name:      "convertio",
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
	}, c.httpOpts...)
	if err != nil {
		return nil, fmt.Errorf("convertio: %w", err)
	}
	c.api = api
	return c, nil
}

// Name returns the converter name.
func (c *Client) Name() string { return "convertio" }

// IsAvailable reports whether the client can take requests.
func (c *Client) IsAvailable(ctx context.Context) bool {
	return c.api.IsAvailable(ctx) && c.downloader != nil && c.downloader.IsAvailable(ctx)
}

// Close releases idle connections.
func (c *Client) Close(ctx context.Context) error {
	return c.api.Close(ctx)
}

// Convert submits sourceURL, waits for the job to finish and saves the
// output into dst.
func (c *Client) Convert(ctx context.Context, sourceURL string, dst conversion.Destination) (*conversion.Result, error) {
	job, err := c.Submit(ctx, sourceURL)
	if err != nil {
		return nil, err
	}
	if err := c.Poll(ctx, job); err != nil {
		return nil, err
	}
	path, err := c.Retrieve(ctx, job, dst)
	if err != nil {
		return nil, err
	}
	return &conversion.Result{Job: job, Path: path}, nil
}

type submitRequest struct {
	APIKey       string `json:"apikey"`
	Input        string `json:"input"`
	File         string `json:"file"`
	OutputFormat string `json:"outputformat"`
}

type submitResponse struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Error  string `json:"error"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`
}

// Submit creates a conversion job. A response without a job id fails with
// SUBMISSION_FAILED carrying the API's error text, or "unknown error".
func (c *Client) Submit(ctx context.Context, sourceURL string) (*conversion.Job, error) {
	resp, err := httpclient.DoJSON[submitResponse](ctx, c.api, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/convert",
		Body: submitRequest{
			APIKey:       c.cfg.APIKey,
			Input:        "url",
			File:         sourceURL,
			OutputFormat: c.cfg.OutputFormat,
		},
	})
	if resp == nil {
		reason := apperrors.UnknownReason
		if err != nil {
			reason = transportReason(err)
		}
		c.log.Error("conversion submit failed", logger.MergeWithError(nil, err))
		return nil, apperrors.SubmissionFailed(reason).WithCause(err)
	}

	if resp.Data.Data.ID == "" {
		c.log.Error("conversion submit rejected", map[string]interface{}{
			logger.FieldStatus: resp.StatusCode,
			logger.FieldError:  resp.Data.Error,
		})
		return nil, apperrors.SubmissionFailed(resp.Data.Error)
	}

	job := &conversion.Job{
		ID:        resp.Data.Data.ID,
		SourceURL: sourceURL,
		Status:    conversion.StatusPending,
	}
	c.log.Info("conversion started", map[string]interface{}{logger.FieldJobID: job.ID})
	return job, nil
}

// Poll requests the job status immediately and then every PollInterval
// until the job is terminal. Only context cancellation or MaxPollAttempts
// ends a job that never reaches a terminal step.
func (c *Client) Poll(ctx context.Context, job *conversion.Job) error {
	for {
		if err := c.pollOnce(ctx, job); err != nil {
			return err
		}
		switch job.Status {
		case conversion.StatusFinished:
			return nil
		case conversion.StatusErrored:
			return apperrors.ConversionFailed(job.ID, job.ErrorMessage)
		}

		if c.cfg.MaxPollAttempts > 0 && job.Polls >= c.cfg.MaxPollAttempts {
			c.log.Warn("conversion poll limit reached", map[string]interface{}{
				logger.FieldJobID: job.ID,
				"polls":           job.Polls,
			})
			return apperrors.ConversionFailed(job.ID, fmt.Sprintf("no result after %d status checks", job.Polls))
		}

		if err := c.wait(ctx); err != nil {
			return err
		}
	}
}

func (c *Client) wait(ctx context.Context) error {
	timer := c.clock.Timer(c.cfg.PollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// pollOnce performs one status request and applies it to job.
func (c *Client) pollOnce(ctx context.Context, job *conversion.Job) error {
	path := "/convert/" + url.PathEscape(job.ID) + "/status"
	resp, err := c.api.Do(ctx, httpclient.Request{
		Method: http.MethodGet,
		Path:   path,
		Auth:   httpclient.QueryKey("apikey", c.cfg.APIKey),
	})
	job.Polls++
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	if resp == nil {
		return statusFailed(job, err)
	}

	body := gjson.ParseBytes(resp.Body)
	step := body.Get("data.step").String()
	job.Step = step
	if p := body.Get("data.step_percent"); p.Exists() {
		job.Progress = int(p.Int())
	}
	c.metrics.RecordPoll(ctx, stepLabel(step))

	c.log.Debug("conversion status", map[string]interface{}{
		logger.FieldJobID: job.ID,
		"step":            step,
		"progress":        job.Progress,
		"poll":            job.Polls,
	})

	switch {
	case step == stepFinish:
		job.Status = conversion.StatusFinished
		job.OutputURL = body.Get("data.output.url").String()
		c.log.Info("conversion finished", map[string]interface{}{logger.FieldJobID: job.ID})
	case step == stepError:
		job.Status = conversion.StatusErrored
		job.ErrorMessage = firstNonEmpty(body.Get("data.error").String(), body.Get("error").String())
		c.log.Error("conversion errored", map[string]interface{}{
			logger.FieldJobID: job.ID,
			logger.FieldError: job.ErrorMessage,
		})
	case step == "" && body.Get("status").String() == "error":
		// The API rejected the status request itself, e.g. an unknown id.
		job.Status = conversion.StatusErrored
		job.ErrorMessage = body.Get("error").String()
	case step == "" && err != nil:
		return statusFailed(job, err)
	}
	return nil
}

// Retrieve downloads the finished job's output and saves it into dst.
func (c *Client) Retrieve(ctx context.Context, job *conversion.Job, dst conversion.Destination) (string, error) {
	if job.OutputURL == "" {
		return "", apperrors.OutputMissing("output url").WithDetail("job_id", job.ID)
	}

	data, err := c.downloader.Execute(ctx, job.OutputURL)
	if err != nil {
		if apperrors.IsAppError(err) {
			return "", err
		}
		return "", apperrors.FetchFailed(fetch.Redact(job.OutputURL), err)
	}

	path, err := dst.Save(ctx, data)
	if err != nil {
		return "", apperrors.Internal(fmt.Errorf("save converted artifact: %w", err))
	}
	c.log.Info("converted artifact saved", map[string]interface{}{
		logger.FieldJobID: job.ID,
		"bytes":           len(data),
	})
	return path, nil
}

// stepLabel bounds metric cardinality to the steps the API documents.
func stepLabel(step string) string {
	switch step {
	case stepFinish, stepError, "pending", "wait", "convert", "upload":
		return step
	case "":
		return "none"
	default:
		return "other"
	}
}

func transportReason(err error) string {
	var he *httpclient.Error
	if stderrors.As(err, &he) {
		return he.Reason()
	}
	if err != nil {
		return err.Error()
	}
	return apperrors.UnknownReason
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func statusFailed(job *conversion.Job, err error) error {
	return apperrors.New(apperrors.ErrCodeFetchFailed, transportReason(err)).
		WithCause(err).
		WithDetail("job_id", job.ID)
}
