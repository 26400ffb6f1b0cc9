package pipeline

import "context"

// Iterator is a pull-based source. It has the same shape as
// provider.Iterator so recognizer output plugs in without adapting.
type Iterator[T any] interface {
	// Next returns (zero, false, nil) once the source is exhausted.
	Next(ctx context.Context) (T, bool, error)
	Close() error
}

// Stream is a lazy chain of stages. Nothing is pulled until Drain or
// Collect runs it.
type Stream[T any] struct {
	open func(ctx context.Context) Iterator[T]
}

// From wraps an existing iterator. The iterator is closed by the terminal.
func From[T any](it Iterator[T]) *Stream[T] {
	return &Stream[T]{open: func(context.Context) Iterator[T] { return it }}
}

// Of builds a stream over fixed values.
func Of[T any](items ...T) *Stream[T] {
	return &Stream[T]{open: func(context.Context) Iterator[T] {
		return &valuesIter[T]{items: items}
	}}
}

// Filter drops values for which keep returns false.
func Filter[T any](s *Stream[T], keep func(T) bool) *Stream[T] {
	return s.then(func(_ context.Context, v T) (bool, error) { return keep(v), nil })
}

// Tap runs fn for every value that reaches it. An error from fn stops the
// stream.
func Tap[T any](s *Stream[T], fn func(context.Context, T) error) *Stream[T] {
	return s.then(func(ctx context.Context, v T) (bool, error) { return true, fn(ctx, v) })
}

func (s *Stream[T]) then(step func(context.Context, T) (bool, error)) *Stream[T] {
	return &Stream[T]{open: func(ctx context.Context) Iterator[T] {
		return &stepIter[T]{src: s.open(ctx), step: step}
	}}
}

// Drain pulls every value into sink, stopping at the first error or when
// ctx is done. The source is always closed before Drain returns.
func Drain[T any](ctx context.Context, s *Stream[T], sink func(context.Context, T) error) error {
	it := s.open(ctx)
	defer it.Close()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		v, ok, err := it.Next(ctx)
		if err != nil || !ok {
			return err
		}
		if err := sink(ctx, v); err != nil {
			return err
		}
	}
}

// Collect drains s into a slice. Values gathered before an error are
// returned alongside it.
func Collect[T any](ctx context.Context, s *Stream[T]) ([]T, error) {
	var out []T
	err := Drain(ctx, s, func(_ context.Context, v T) error {
		out = append(out, v)
		return nil
	})
	return out, err
}

type stepIter[T any] struct {
	src  Iterator[T]
	step func(context.Context, T) (bool, error)
}

func (it *stepIter[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	for {
		v, ok, err := it.src.Next(ctx)
		if err != nil || !ok {
			return zero, false, err
		}
		keep, err := it.step(ctx, v)
		if err != nil {
			return zero, false, err
		}
		if keep {
			return v, true, nil
		}
	}
}

func (it *stepIter[T]) Close() error { return it.src.Close() }

type valuesIter[T any] struct {
	items []T
	pos   int
}

func (it *valuesIter[T]) Next(context.Context) (T, bool, error) {
	var zero T
	if it.pos >= len(it.items) {
		return zero, false, nil
	}
	it.pos++
	return it.items[it.pos-1], true, nil
}

func (it *valuesIter[T]) Close() error { return nil }
