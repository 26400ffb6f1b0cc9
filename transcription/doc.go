// Package transcription turns converted audio artifacts into a stream of
// recognized text segments.
//
// A Model is the expensive, process-wide speech model; it is loaded once and
// shared read-only. Each recognition builds its own Decoder from the model,
// bound to the artifact's sample rate. The Recognizer reads the artifact's
// PCM data in fixed-size chunks, feeds the decoder and emits a non-final
// Segment whenever the decoder reports an utterance boundary, followed by at
// most one final Segment after the audio is exhausted.
//
// # Backends
//
//   - transcription/vosk: Vosk/Kaldi via cgo (build tag "vosk")
//
// # Usage
//
//	rec := transcription.NewRecognizer(model, log)
//	segments, err := rec.Recognize(ctx, "/tmp/voicescribe/<run>/voice.wav")
//	defer segments.Close()
//	for {
//	    seg, ok, err := segments.Next(ctx)
//	    ...
//	}
package transcription
