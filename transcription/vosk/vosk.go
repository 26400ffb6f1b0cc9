//go:build vosk

package vosk

import (
	"context"
	"fmt"
	"sync"

	vosk "github.com/alphacep/vosk-api/go"

	"github.com/kbukum/voicescribe/provider"
	"github.com/kbukum/voicescribe/transcription"
)

// Model is a loaded Vosk model shared by all decoders.
type Model struct {
	path string

	mu    sync.RWMutex
	model *vosk.VoskModel
}

var (
	_ transcription.Model = (*Model)(nil)
	_ provider.Closeable  = (*Model)(nil)
)

// Load reads the model from disk. This is slow and should happen once per process.
func Load(cfg Config) (*Model, error) {
	vosk.SetLogLevel(cfg.LogLevel)
	m, err := vosk.NewModel(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("vosk: load model %s: %w", cfg.ModelPath, err)
	}
	return &Model{path: cfg.ModelPath, model: m}, nil
}

// Name returns the provider name.
func (m *Model) Name() string { return ProviderName }

// IsAvailable reports whether the model is still loaded.
func (m *Model) IsAvailable(_ context.Context) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.model != nil
}

// NewDecoder creates a recognizer bound to sampleRate.
func (m *Model) NewDecoder(sampleRate float64) (transcription.Decoder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.model == nil {
		return nil, fmt.Errorf("vosk: model %s is closed", m.path)
	}
	rec, err := vosk.NewRecognizer(m.model, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("vosk: new recognizer: %w", err)
	}
	return &decoder{rec: rec}, nil
}

// Close frees the model. Decoders created earlier keep their own reference
// inside libvosk and stay usable.
func (m *Model) Close(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.model != nil {
		m.model.Free()
		m.model = nil
	}
	return nil
}

type decoder struct {
	rec *vosk.VoskRecognizer
}

func (d *decoder) AcceptWaveform(pcm []byte) (bool, error) {
	switch d.rec.AcceptWaveform(pcm) {
	case 1:
		return true, nil
	case 0:
		return false, nil
	default:
		return false, fmt.Errorf("vosk: waveform rejected")
	}
}

func (d *decoder) Result() string      { return d.rec.Result() }
func (d *decoder) FinalResult() string { return d.rec.FinalResult() }

func (d *decoder) Close() error {
	d.rec.Free()
	return nil
}
