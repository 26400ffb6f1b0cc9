package voice

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/kbukum/voicescribe/conversion"
	apperrors "github.com/kbukum/voicescribe/errors"
	"github.com/kbukum/voicescribe/fetch"
	"github.com/kbukum/voicescribe/logger"
	"github.com/kbukum/voicescribe/observability"
	"github.com/kbukum/voicescribe/pipeline"
	"github.com/kbukum/voicescribe/provider"
	"github.com/kbukum/voicescribe/storage"
	"github.com/kbukum/voicescribe/transcription"
)

// Deps are the collaborators an Orchestrator drives.
type Deps struct {
	Source     Source
	Fetcher    provider.RequestResponse[string, []byte]
	Converter  conversion.Converter
	Recognizer provider.Stream[string, transcription.Segment]
	Storage    storage.Storage
	// Metrics is optional.
	Metrics *observability.Metrics
}

// Orchestrator sequences fetch, conversion and recognition for each
// message. It holds no per-run state and is safe for concurrent use.
type Orchestrator struct {
	cfg  Config
	deps Deps
	log  *logger.Logger
}

// New creates an Orchestrator.
func New(cfg Config, deps Deps, log *logger.Logger) (*Orchestrator, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch {
	case deps.Source == nil:
		return nil, fmt.Errorf("voice: source is required")
	case deps.Fetcher == nil:
		return nil, fmt.Errorf("voice: fetcher is required")
	case deps.Converter == nil:
		return nil, fmt.Errorf("voice: converter is required")
	case deps.Recognizer == nil:
		return nil, fmt.Errorf("voice: recognizer is required")
	case deps.Storage == nil:
		return nil, fmt.Errorf("voice: storage is required")
	}
	return &Orchestrator{cfg: cfg, deps: deps, log: log.WithComponent("voice")}, nil
}

// Process runs the pipeline for msg, forwarding segments to sink as they
// are recognized. On failure exactly one error message goes to sink,
// unless ctx was canceled. The returned Run is always terminal.
func (o *Orchestrator) Process(ctx context.Context, msg Message, sink Sink) *Run {
	run := newRun(msg)

	ctx = logger.ContextWithRunID(ctx, run.ID)
	if msg.UserID != "" {
		ctx = logger.ContextWithUserID(ctx, msg.UserID)
	}
	if o.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.RunTimeout)
		defer cancel()
	}

	ctx, span := observability.StartSpan(ctx, "voice.run")
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrRunID, run.ID)

	log := o.log.WithContext(ctx)
	log.Info("voice message received", map[string]interface{}{
		"message_id": msg.ID,
		"duration":   msg.Duration.String(),
	})
	o.deps.Metrics.RecordRunStart(ctx)

	scratch := storage.NewScratchWithID(o.deps.Storage, run.ID, log)
	defer func() {
		if err := scratch.Release(context.WithoutCancel(ctx)); err != nil {
			log.Warn("scratch release failed", logger.MergeWithError(nil, err))
		}
	}()

	err := o.execute(ctx, run, scratch, sink)
	o.finish(ctx, log, run, err, sink)
	return run
}

func (o *Orchestrator) execute(ctx context.Context, run *Run, scratch *storage.Scratch, sink Sink) error {
	var sourceURL string
	err := o.stage(ctx, run, StateFetching, func(ctx context.Context) error {
		u, err := o.fetchRaw(ctx, run.Message.FileID, scratch.Slot(o.cfg.RawSlot))
		sourceURL = u
		return err
	})
	if err != nil {
		return err
	}

	var artifactPath string
	err = o.stage(ctx, run, StateConverting, func(ctx context.Context) error {
		slot := scratch.Slot(o.cfg.ConvertedSlot)
		res, err := o.deps.Converter.Convert(ctx, sourceURL, slot)
		if res != nil {
			run.Job = res.Job
			observability.SetSpanAttribute(ctx, observability.AttrJobID, res.Job.ID)
		}
		if err != nil {
			return err
		}

		ok, err := slot.Exists(ctx)
		if err != nil {
			return apperrors.Internal(fmt.Errorf("check converted artifact: %w", err))
		}
		if !ok {
			return apperrors.OutputMissing(o.cfg.ConvertedSlot).WithDetail("job_id", res.Job.ID)
		}
		artifactPath = res.Path
		return nil
	})
	if err != nil {
		return err
	}

	return o.stage(ctx, run, StateRecognizing, func(ctx context.Context) error {
		return o.recognize(ctx, run, artifactPath, sink)
	})
}

// fetchRaw resolves fileID, downloads the note and stages it in slot. It
// returns the resolved source URL.
func (o *Orchestrator) fetchRaw(ctx context.Context, fileID string, slot *storage.Slot) (string, error) {
	sourceURL, err := o.deps.Source.ResolveURL(ctx, fileID)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", apperrors.New(apperrors.ErrCodeFetchFailed, "cannot resolve file").
			WithCause(err).
			WithDetail("file_id", fileID)
	}

	data, err := o.deps.Fetcher.Execute(ctx, sourceURL)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if apperrors.IsAppError(err) {
			return "", err
		}
		return "", apperrors.FetchFailed(fetch.Redact(sourceURL), err)
	}

	if _, err := slot.Save(ctx, data); err != nil {
		return "", apperrors.Internal(fmt.Errorf("stage raw note: %w", err))
	}
	return sourceURL, nil
}

func (o *Orchestrator) recognize(ctx context.Context, run *Run, artifactPath string, sink Sink) error {
	it, err := o.deps.Recognizer.Execute(ctx, artifactPath)
	if err != nil {
		return err
	}

	segments := pipeline.From[transcription.Segment](it)
	if o.cfg.SuppressPartials {
		segments = pipeline.Filter(segments, func(s transcription.Segment) bool { return s.Final })
	}
	segments = pipeline.Tap(segments, func(ctx context.Context, s transcription.Segment) error {
		o.deps.Metrics.RecordSegment(ctx, s.Final)
		return nil
	})

	return pipeline.Drain(ctx, segments, func(ctx context.Context, s transcription.Segment) error {
		if err := sink.SendText(ctx, s.Text); err != nil {
			return fmt.Errorf("send segment: %w", err)
		}
		run.Segments = append(run.Segments, s)
		return nil
	})
}

// stage moves run into state and runs fn inside a span, recording the
// stage's outcome.
func (o *Orchestrator) stage(ctx context.Context, run *Run, state State, fn func(context.Context) error) error {
	run.transition(state)

	ctx, span := observability.StartSpan(ctx, "voice."+state.String())
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrStage, state.String())

	start := time.Now()
	err := fn(ctx)
	status := "ok"
	if err != nil {
		status = "error"
		observability.SetSpanError(ctx, err)
	}
	o.deps.Metrics.RecordStage(ctx, state.String(), status, time.Since(start))
	return err
}

func (o *Orchestrator) finish(ctx context.Context, log *logger.Logger, run *Run, err error, sink Sink) {
	run.Finished = time.Now()

	if err == nil {
		run.transition(StateDone)
		o.deps.Metrics.RecordRunEnd(ctx, StateDone.String(), run.Duration())
		log.Info("voice message transcribed", map[string]interface{}{
			"segments":           len(run.Segments),
			logger.FieldDuration: run.Duration().Milliseconds(),
		})
		return
	}

	failedIn := run.State
	run.Err = err
	run.transition(StateFailed)
	observability.SetSpanError(ctx, err)
	o.deps.Metrics.RecordRunEnd(ctx, StateFailed.String(), run.Duration())
	code := apperrors.CodeOf(err)
	if code == "" {
		code = apperrors.ErrCodeInternal
	}
	o.deps.Metrics.RecordError(ctx, string(code), failedIn.String())

	log.Error("voice message failed", logger.MergeWithError(map[string]interface{}{
		logger.FieldStage: failedIn.String(),
		"segments":        len(run.Segments),
	}, err))

	if stderrors.Is(err, context.Canceled) {
		return
	}
	if sendErr := sink.SendError(context.WithoutCancel(ctx), apperrors.UserMessage(err)); sendErr != nil {
		log.Warn("error reply failed", logger.MergeWithError(nil, sendErr))
	}
}
