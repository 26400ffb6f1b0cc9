package voice

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/voicescribe/conversion"
	"github.com/kbukum/voicescribe/transcription"
)

// Message is an incoming voice message.
type Message struct {
	// ID identifies the message on its platform.
	ID string
	// UserID identifies the sender.
	UserID string
	// FileID is the platform's handle for the voice note.
	FileID string
	// Duration is the note length reported by the platform, if any.
	Duration time.Duration
}

// Source resolves a platform file handle into a downloadable URL.
type Source interface {
	ResolveURL(ctx context.Context, fileID string) (string, error)
}

// Sink delivers a run's output to the user.
type Sink interface {
	// SendText delivers one recognized segment.
	SendText(ctx context.Context, text string) error
	// SendError delivers the single failure message of a run.
	SendError(ctx context.Context, text string) error
}

// Run is the record of one pipeline invocation.
type Run struct {
	ID      string
	Message Message
	State   State
	// History lists every state the run entered, in order.
	History []State
	// Job is the remote conversion job, once submitted.
	Job *conversion.Job
	// Segments are the segments delivered to the sink.
	Segments []transcription.Segment
	Err      error

	Started  time.Time
	Finished time.Time
}

func newRun(msg Message) *Run {
	return &Run{
		ID:      uuid.NewString(),
		Message: msg,
		State:   StateIdle,
		History: []State{StateIdle},
		Started: time.Now(),
	}
}

func (r *Run) transition(s State) {
	r.State = s
	r.History = append(r.History, s)
}

// Duration returns how long the run took, or has taken so far.
func (r *Run) Duration() time.Duration {
	if r.Finished.IsZero() {
		return time.Since(r.Started)
	}
	return r.Finished.Sub(r.Started)
}
