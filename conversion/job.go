package conversion

import "context"

// Status is the lifecycle state of a conversion job.
type Status string

const (
	StatusPending  Status = "pending"
	StatusFinished Status = "finished"
	StatusErrored  Status = "errored"
)

// Job is a remote conversion job. It is created by a successful
// submission and only changes in response to status polls.
type Job struct {
	ID        string
	SourceURL string
	Status    Status
	// Step is the raw step reported by the remote service.
	Step string
	// Progress is the reported completion percentage, when known.
	Progress int
	// Polls counts status requests made so far.
	Polls int
	// OutputURL is set once the job has finished.
	OutputURL string
	// ErrorMessage is set once the job has errored.
	ErrorMessage string
}

// Terminal reports whether the job can no longer change.
func (j *Job) Terminal() bool {
	return j.Status == StatusFinished || j.Status == StatusErrored
}

// Destination receives the converted artifact. Save overwrites any earlier
// content and returns the artifact's local path.
type Destination interface {
	Save(ctx context.Context, data []byte) (string, error)
}

// Result is the outcome of a successful conversion.
type Result struct {
	Job  *Job
	Path string
}

// Converter converts the audio at a source URL into dst.
type Converter interface {
	Name() string
	IsAvailable(ctx context.Context) bool
	Convert(ctx context.Context, sourceURL string, dst Destination) (*Result, error)
}
