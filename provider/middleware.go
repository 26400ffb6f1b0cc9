package provider

import (
	"context"
	"time"

	"github.com/kbukum/voicescribe/logger"
	"github.com/kbukum/voicescribe/observability"
)

// Middleware wraps a RequestResponse with extra behavior.
type Middleware[I, O any] func(RequestResponse[I, O]) RequestResponse[I, O]

// Chain composes middlewares so that the first one listed runs outermost:
// Chain(a, b)(p) behaves like a(b(p)).
func Chain[I, O any](mws ...Middleware[I, O]) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		for i := len(mws) - 1; i >= 0; i-- {
			inner = mws[i](inner)
		}
		return inner
	}
}

// aroundFunc runs call, which performs the wrapped Execute, and may act on
// its result.
type aroundFunc[I, O any] func(ctx context.Context, name string, input I, call func(context.Context) (O, error)) (O, error)

type wrapped[I, O any] struct {
	RequestResponse[I, O]
	around aroundFunc[I, O]
}

func (w *wrapped[I, O]) Execute(ctx context.Context, input I) (O, error) {
	return w.around(ctx, w.Name(), input, func(ctx context.Context) (O, error) {
		return w.RequestResponse.Execute(ctx, input)
	})
}

func around[I, O any](fn aroundFunc[I, O]) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &wrapped[I, O]{RequestResponse: inner, around: fn}
	}
}

// WithLogging logs every call with its duration. Inputs are never logged
// since download URLs carry the bot token.
func WithLogging[I, O any](log *logger.Logger) Middleware[I, O] {
	return around(func(ctx context.Context, name string, _ I, call func(context.Context) (O, error)) (O, error) {
		start := time.Now()
		out, err := call(ctx)
		fields := map[string]interface{}{
			logger.FieldOperation: name,
			logger.FieldDuration:  time.Since(start).Milliseconds(),
		}
		if err != nil {
			log.WithContext(ctx).Warn("provider call failed", logger.MergeWithError(fields, err))
			return out, err
		}
		log.WithContext(ctx).Debug("provider call ok", fields)
		return out, nil
	})
}

// WithMetrics records call count, duration and errors. A nil metrics set
// records nothing.
func WithMetrics[I, O any](metrics *observability.Metrics) Middleware[I, O] {
	return around(func(ctx context.Context, name string, _ I, call func(context.Context) (O, error)) (O, error) {
		start := time.Now()
		out, err := call(ctx)
		status := "ok"
		if err != nil {
			status = "error"
			metrics.RecordError(ctx, "execute", name)
		}
		metrics.RecordOperation(ctx, name, "execute", status, time.Since(start))
		return out, err
	})
}

// WithTracing runs every call inside a span named "<service>.<provider>".
func WithTracing[I, O any](serviceName string) Middleware[I, O] {
	return around(func(ctx context.Context, name string, _ I, call func(context.Context) (O, error)) (O, error) {
		ctx, span := observability.StartSpan(ctx, serviceName+"."+name)
		defer span.End()
		observability.SetSpanAttribute(ctx, observability.AttrServiceName, serviceName)
		observability.SetSpanAttribute(ctx, observability.AttrOperationName, name)

		out, err := call(ctx)
		if err != nil {
			observability.SetSpanError(ctx, err)
		}
		return out, err
	})
}
