package convertio_test

import (
	"context"
	stderrors "errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/kbukum/voicescribe/conversion"
	"github.com/kbukum/voicescribe/conversion/convertio"
	apperrors "github.com/kbukum/voicescribe/errors"
	"github.com/kbukum/voicescribe/fetch"
	"github.com/kbukum/voicescribe/logger"
	"github.com/kbukum/voicescribe/testutil"
)

const (
	testKey      = "test-key"
	pollInterval = 5 * time.Second
)

type memDest struct {
	data []byte
	err  error
}

func (d *memDest) Save(_ context.Context, data []byte) (string, error) {
	if d.err != nil {
		return "", d.err
	}
	d.data = append([]byte(nil), data...)
	return "/scratch/voice.wav", nil
}

func newFake(t *testing.T) *testutil.FakeConvertio {
	t.Helper()
	fake := testutil.NewFakeConvertio(testKey)
	testutil.Start(t, fake)
	return fake
}

func newClient(t *testing.T, baseURL string, mock *clock.Mock, mutate ...func(*convertio.Config)) *convertio.Client {
	t.Helper()
	downloader, err := fetch.New(fetch.Config{}, logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	cfg := convertio.Config{
		BaseURL:      baseURL,
		APIKey:       testKey,
		PollInterval: pollInterval,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	c, err := convertio.New(cfg, downloader, logger.NewNop(), convertio.WithClock(mock))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return c
}

// advanceUntil moves the mock clock one interval at a time until done
// reports true.
func advanceUntil(t *testing.T, mock *clock.Mock, done func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !done() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for poll loop")
		}
		mock.Add(pollInterval)
		time.Sleep(time.Millisecond)
	}
}

type convertResult struct {
	res *conversion.Result
	err error
}

func convertAsync(ctx context.Context, c *convertio.Client, src string, dst conversion.Destination) <-chan convertResult {
	ch := make(chan convertResult, 1)
	go func() {
		res, err := c.Convert(ctx, src, dst)
		ch <- convertResult{res, err}
	}()
	return ch
}

func wait(t *testing.T, mock *clock.Mock, ch <-chan convertResult) convertResult {
	t.Helper()
	var out convertResult
	got := false
	advanceUntil(t, mock, func() bool {
		select {
		case out = <-ch:
			got = true
		default:
		}
		return got
	})
	return out
}

func TestConvert_PendingThenFinish(t *testing.T) {
	fake := newFake(t)
	wavData := testutil.WAV(t, 16000, testutil.Tone(400))
	out := fake.Host("out.wav", wavData)
	fake.Script(testutil.SubmitOK("42"), testutil.StatusPending(), testutil.StatusFinish(out))

	mock := clock.NewMock()
	c := newClient(t, fake.URL(), mock)
	dst := &memDest{}

	r := wait(t, mock, convertAsync(context.Background(), c, "https://example/a.ogg", dst))
	if r.err != nil {
		t.Fatalf("Convert: %v", r.err)
	}
	if r.res.Job.ID != "42" || r.res.Job.Status != conversion.StatusFinished {
		t.Errorf("unexpected job %+v", r.res.Job)
	}
	if r.res.Job.OutputURL != out {
		t.Errorf("expected output url %q, got %q", out, r.res.Job.OutputURL)
	}
	if r.res.Path != "/scratch/voice.wav" {
		t.Errorf("unexpected path %q", r.res.Path)
	}
	if string(dst.data) != string(wavData) {
		t.Error("saved artifact differs from hosted output")
	}
	if fake.Polls() != 2 || r.res.Job.Polls != 2 {
		t.Errorf("expected 2 status requests, server saw %d, job counted %d", fake.Polls(), r.res.Job.Polls)
	}

	subs := fake.Submissions()
	if len(subs) != 1 {
		t.Fatalf("expected one submission, got %d", len(subs))
	}
	want := testutil.SubmitCall{APIKey: testKey, Input: "url", File: "https://example/a.ogg", OutputFormat: "wav"}
	if subs[0] != want {
		t.Errorf("submission = %+v, want %+v", subs[0], want)
	}
}

func TestSubmit_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		submit string
		key    string
		want   string
	}{
		{"empty response", `{}`, testKey, apperrors.UnknownReason},
		{"error text", `{"error":"bad url"}`, testKey, "bad url"},
		{"error envelope", testutil.SubmitError("Maximum number of simultaneous conversions reached"), testKey,
			"Maximum number of simultaneous conversions reached"},
		{"wrong key", testutil.SubmitOK("42"), "wrong", "Invalid API Key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFake(t)
			fake.Script(tt.submit)
			c := newClient(t, fake.URL(), clock.NewMock(), func(cfg *convertio.Config) { cfg.APIKey = tt.key })

			_, err := c.Convert(context.Background(), "https://example/a.ogg", &memDest{})
			appErr, ok := apperrors.AsAppError(err)
			if !ok || appErr.Code != apperrors.ErrCodeSubmissionFailed {
				t.Fatalf("expected submission failure, got %v", err)
			}
			if appErr.Message != tt.want {
				t.Errorf("reason = %q, want %q", appErr.Message, tt.want)
			}
			if fake.Polls() != 0 {
				t.Error("no status request should follow a failed submission")
			}
		})
	}
}

func TestSubmit_Unreachable(t *testing.T) {
	srv := httptest.NewServer(nil)
	base := srv.URL
	srv.Close()

	c := newClient(t, base, clock.NewMock())
	_, err := c.Submit(context.Background(), "https://example/a.ogg")
	if !apperrors.IsSubmissionFailed(err) {
		t.Fatalf("expected submission failure, got %v", err)
	}
}

func TestPoll_ErrorStep(t *testing.T) {
	fake := newFake(t)
	fake.Script(testutil.SubmitOK("42"), testutil.StatusError("timeout"))
	c := newClient(t, fake.URL(), clock.NewMock())

	_, err := c.Convert(context.Background(), "https://example/a.ogg", &memDest{})
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeConversionFailed {
		t.Fatalf("expected conversion failure, got %v", err)
	}
	if appErr.Message != "timeout" {
		t.Errorf("reason = %q, want timeout", appErr.Message)
	}
	if fake.Polls() != 1 {
		t.Errorf("expected a single status request, got %d", fake.Polls())
	}
}

func TestPoll_ErrorStepWithoutText(t *testing.T) {
	fake := newFake(t)
	fake.Script(testutil.SubmitOK("42"), `{"code":200,"status":"ok","data":{"id":"42","step":"error"}}`)
	c := newClient(t, fake.URL(), clock.NewMock())

	_, err := c.Convert(context.Background(), "https://example/a.ogg", &memDest{})
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeConversionFailed || appErr.Message != apperrors.UnknownReason {
		t.Fatalf("expected conversion failure with unknown reason, got %v", err)
	}
}

func TestPoll_UnboundedUntilCanceled(t *testing.T) {
	fake := newFake(t)
	mock := clock.NewMock()
	c := newClient(t, fake.URL(), mock)

	ctx, cancel := context.WithCancel(context.Background())
	job := &conversion.Job{ID: "42", Status: conversion.StatusPending}
	done := make(chan error, 1)
	go func() { done <- c.Poll(ctx, job) }()

	advanceUntil(t, mock, func() bool { return fake.Polls() >= 6 })
	cancel()

	select {
	case err := <-done:
		if !stderrors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("poll loop did not stop after cancel")
	}
	if job.Terminal() {
		t.Errorf("job should still be pending, got %s", job.Status)
	}
	if job.Step != "pending" || job.Progress != 40 {
		t.Errorf("unexpected step %q progress %d", job.Step, job.Progress)
	}
}

func TestPoll_MaxAttempts(t *testing.T) {
	fake := newFake(t)
	mock := clock.NewMock()
	c := newClient(t, fake.URL(), mock, func(cfg *convertio.Config) { cfg.MaxPollAttempts = 3 })

	r := wait(t, mock, convertAsync(context.Background(), c, "https://example/a.ogg", &memDest{}))
	appErr, ok := apperrors.AsAppError(r.err)
	if !ok || appErr.Code != apperrors.ErrCodeConversionFailed {
		t.Fatalf("expected conversion failure, got %v", r.err)
	}
	if appErr.Message != "no result after 3 status checks" {
		t.Errorf("unexpected reason %q", appErr.Message)
	}
	if fake.Polls() != 3 {
		t.Errorf("expected 3 status requests, got %d", fake.Polls())
	}
}

func TestRetrieve_Failures(t *testing.T) {
	tests := []struct {
		name  string
		out   func(fake *testutil.FakeConvertio) string
		dst   *memDest
		check func(error) bool
	}{
		{"no output url", func(*testutil.FakeConvertio) string { return "" }, &memDest{}, apperrors.IsOutputMissing},
		{"output gone", func(f *testutil.FakeConvertio) string { return f.URL() + "/files/absent.wav" }, &memDest{}, apperrors.IsFetchFailed},
		{"save fails", func(f *testutil.FakeConvertio) string { return f.Host("out.wav", []byte("RIFF")) },
			&memDest{err: stderrors.New("disk full")},
			func(err error) bool { return apperrors.HasCode(err, apperrors.ErrCodeInternal) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFake(t)
			fake.Script(testutil.SubmitOK("42"), testutil.StatusFinish(tt.out(fake)))
			c := newClient(t, fake.URL(), clock.NewMock())

			_, err := c.Convert(context.Background(), "https://example/a.ogg", tt.dst)
			if !tt.check(err) {
				t.Fatalf("unexpected error %v", err)
			}
		})
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	downloader, _ := fetch.New(fetch.Config{}, logger.NewNop())
	if _, err := convertio.New(convertio.Config{}, downloader, logger.NewNop()); err == nil {
		t.Fatal("expected error for missing api key")
	}
	if _, err := convertio.New(convertio.Config{APIKey: "k", MaxPollAttempts: -1}, downloader, logger.NewNop()); err == nil {
		t.Fatal("expected error for negative poll cap")
	}
}

func TestClient_Surface(t *testing.T) {
	fake := newFake(t)
	c := newClient(t, fake.URL(), clock.NewMock())
	if c.Name() != "convertio" {
		t.Errorf("unexpected name %q", c.Name())
	}
	if !c.IsAvailable(context.Background()) {
		t.Error("expected available")
	}
}
