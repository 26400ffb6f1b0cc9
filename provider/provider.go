package provider

import "context"

// Provider is a named, swappable backend.
type Provider interface {
	Name() string
	// IsAvailable reports whether the backend can take work right now.
	IsAvailable(ctx context.Context) bool
}

// Factory builds a provider from loosely typed options, usually a config
// section decoded by viper.
type Factory[T Provider] func(options map[string]any) (T, error)

// RequestResponse is a one-shot call: one input, one output. Audio
// downloads use this shape.
type RequestResponse[I, O any] interface {
	Provider
	Execute(ctx context.Context, input I) (O, error)
}

// Stream is a call whose results arrive over time, such as a decoder
// emitting partial and final transcripts while it reads audio.
type Stream[I, O any] interface {
	Provider
	Execute(ctx context.Context, input I) (Iterator[O], error)
}

// Iterator pulls results from a Stream one at a time. Callers must Close
// it, including after an error.
type Iterator[T any] interface {
	// Next returns (zero, false, nil) once the stream is exhausted.
	Next(ctx context.Context) (T, bool, error)
	Close() error
}

// Closeable is implemented by providers that hold resources, such as a
// loaded acoustic model.
type Closeable interface {
	Close(ctx context.Context) error
}
