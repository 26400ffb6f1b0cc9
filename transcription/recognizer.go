package transcription

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	apperrors "github.com/kbukum/voicescribe/errors"
	"github.com/kbukum/voicescribe/logger"
	"github.com/kbukum/voicescribe/provider"
)

// DefaultChunkFrames is the number of sample frames fed to the decoder per call.
const DefaultChunkFrames = 4000

// Recognizer streams segments out of audio artifacts using a shared Model.
type Recognizer struct {
	model       Model
	chunkFrames int
	log         *logger.Logger
}

var _ provider.Stream[string, Segment] = (*Recognizer)(nil)

// RecognizerOption customizes a Recognizer.
type RecognizerOption func(*Recognizer)

// WithChunkFrames sets the number of frames read per decoder call.
func WithChunkFrames(n int) RecognizerOption {
	return func(r *Recognizer) {
		if n > 0 {
			r.chunkFrames = n
		}
	}
}

// NewRecognizer creates a Recognizer over model.
func NewRecognizer(model Model, log *logger.Logger, opts ...RecognizerOption) *Recognizer {
	r := &Recognizer{
		model:       model,
		chunkFrames: DefaultChunkFrames,
		log:         log.WithComponent("recognizer"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the provider name.
func (r *Recognizer) Name() string { return "recognizer:" + r.model.Name() }

// IsAvailable reports whether the underlying model is loaded.
func (r *Recognizer) IsAvailable(ctx context.Context) bool { return r.model.IsAvailable(ctx) }

// Execute is Recognize under the provider interface.
func (r *Recognizer) Execute(ctx context.Context, path string) (provider.Iterator[Segment], error) {
	return r.Recognize(ctx, path)
}

// Recognize opens the artifact at path and returns a lazy, single-use
// sequence of segments. Header problems surface here as DECODER_INIT_FAILED;
// no audio is decoded until Next is called. The caller must Close the
// iterator.
func (r *Recognizer) Recognize(ctx context.Context, path string) (provider.Iterator[Segment], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := openAudio(path)
	if err != nil {
		return nil, err
	}

	dec, err := r.model.NewDecoder(float64(src.artifact.SampleRate))
	if err != nil {
		_ = src.Close()
		return nil, apperrors.DecoderInit(fmt.Sprintf("decoder for %d Hz", src.artifact.SampleRate), err)
	}

	r.log.Debug("recognition started", map[string]interface{}{
		logger.FieldPath: path,
		"sample_rate":    src.artifact.SampleRate,
		"frames":         src.artifact.Frames,
	})

	return &segmentIter{
		src: src,
		dec: dec,
		buf: make([]byte, r.chunkFrames*src.artifact.FrameSize()),
		log: r.log,
	}, nil
}

// segmentIter pulls chunks on demand. It is not restartable.
type segmentIter struct {
	src *audioSource
	dec Decoder
	buf []byte
	log *logger.Logger

	eof       bool
	finalDone bool
	closed    bool
	chunks    int
}

func (it *segmentIter) Next(ctx context.Context) (Segment, bool, error) {
	if it.closed {
		return Segment{}, false, nil
	}

	for !it.eof {
		if err := ctx.Err(); err != nil {
			return Segment{}, false, err
		}

		n, err := io.ReadFull(it.src.pcm, it.buf)
		if n == 0 {
			if err != nil && !stderrors.Is(err, io.EOF) {
				return Segment{}, false, fmt.Errorf("read pcm: %w", err)
			}
			it.eof = true
			break
		}
		if err != nil && !stderrors.Is(err, io.ErrUnexpectedEOF) {
			return Segment{}, false, fmt.Errorf("read pcm: %w", err)
		}

		it.chunks++
		boundary, err := it.dec.AcceptWaveform(it.buf[:n])
		if err != nil {
			return Segment{}, false, fmt.Errorf("decode chunk %d: %w", it.chunks, err)
		}
		if !boundary {
			continue
		}
		if text := resultText(it.dec.Result()); text != "" {
			it.log.Debug("partial result", map[string]interface{}{"chunk": it.chunks, "text": text})
			return Segment{Text: text}, true, nil
		}
	}

	if !it.finalDone {
		it.finalDone = true
		if text := resultText(it.dec.FinalResult()); text != "" {
			it.log.Debug("final result", map[string]interface{}{"chunks": it.chunks, "text": text})
			return Segment{Text: text, Final: true}, true, nil
		}
	}
	return Segment{}, false, nil
}

func (it *segmentIter) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	return stderrors.Join(it.dec.Close(), it.src.Close())
}
