//go:build !vosk

package vosk

import (
	"context"

	"github.com/kbukum/voicescribe/transcription"
)

// Model is a placeholder for builds without Vosk support.
type Model struct{}

var _ transcription.Model = (*Model)(nil)

// Load always fails with ErrUnavailable.
func Load(Config) (*Model, error) {
	return nil, ErrUnavailable
}

// Name returns the provider name.
func (m *Model) Name() string { return ProviderName }

// IsAvailable always reports false.
func (m *Model) IsAvailable(context.Context) bool { return false }

// NewDecoder always fails with ErrUnavailable.
func (m *Model) NewDecoder(float64) (transcription.Decoder, error) {
	return nil, ErrUnavailable
}
