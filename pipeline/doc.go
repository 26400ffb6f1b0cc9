// Package pipeline chains pull-based stages over a recognizer's segment
// stream.
//
// Stages are lazy: a Stream does no work until Drain or Collect pulls from
// it, and each pull travels back to the source, so a slow chat reply
// slows recognition down instead of buffering segments.
//
//	segs := pipeline.From[transcription.Segment](it)
//	segs = pipeline.Filter(segs, func(s transcription.Segment) bool { return s.Final })
//	err := pipeline.Drain(ctx, segs, send)
package pipeline
