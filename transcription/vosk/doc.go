// Package vosk provides a transcription.Model backed by the Vosk offline
// speech recognition toolkit.
//
// The binding needs cgo and libvosk, so the real implementation is only
// compiled with the "vosk" build tag:
//
//	go build -tags vosk ./cmd/voicescribe
//
// Without the tag, Load returns ErrUnavailable and the factory is still
// registered so configuration errors are reported consistently.
package vosk
