package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/goccy/go-json"

	"github.com/kbukum/voicescribe/transcription"
)

// Utterance scripts one AcceptWaveform call of a FakeModel decoder.
type Utterance struct {
	// Boundary reports an utterance boundary for this chunk.
	Boundary bool
	// Text is returned by Result after the boundary.
	Text string
}

// FakeModel is a transcription.Model whose decoders replay a script: chunk
// i gets Chunks[i], later chunks report no boundary, and FinalResult
// returns Final.
type FakeModel struct {
	Chunks []Utterance
	Final  string
	// DecoderErr makes NewDecoder fail.
	DecoderErr error
	// AcceptErrAt makes the n-th AcceptWaveform call (1-based) fail.
	AcceptErrAt int

	mu       sync.Mutex
	rates    []float64
	accepted int
	bytes    int
	open     int
}

var _ transcription.Model = (*FakeModel)(nil)

// Name returns the provider name.
func (m *FakeModel) Name() string { return "fake" }

// IsAvailable always reports true.
func (m *FakeModel) IsAvailable(context.Context) bool { return true }

// NewDecoder returns a scripted decoder.
func (m *FakeModel) NewDecoder(sampleRate float64) (transcription.Decoder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DecoderErr != nil {
		return nil, m.DecoderErr
	}
	m.rates = append(m.rates, sampleRate)
	m.open++
	return &fakeDecoder{model: m}, nil
}

// SampleRates returns the rates decoders were built for.
func (m *FakeModel) SampleRates() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.rates...)
}

// Accepted returns the total number of chunks and bytes fed to decoders.
func (m *FakeModel) Accepted() (chunks, bytes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accepted, m.bytes
}

// OpenDecoders returns the number of decoders not yet closed.
func (m *FakeModel) OpenDecoders() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

type fakeDecoder struct {
	model *FakeModel
	calls int
	last  string
}

func (d *fakeDecoder) AcceptWaveform(pcm []byte) (bool, error) {
	m := d.model
	m.mu.Lock()
	defer m.mu.Unlock()

	d.calls++
	if m.AcceptErrAt > 0 && d.calls == m.AcceptErrAt {
		return false, errors.New("fake decoder failure")
	}
	m.accepted++
	m.bytes += len(pcm)

	if d.calls > len(m.Chunks) {
		return false, nil
	}
	u := m.Chunks[d.calls-1]
	if u.Boundary {
		d.last = TextResult(u.Text)
	}
	return u.Boundary, nil
}

func (d *fakeDecoder) Result() string { return d.last }

func (d *fakeDecoder) FinalResult() string { return TextResult(d.model.Final) }

func (d *fakeDecoder) Close() error {
	d.model.mu.Lock()
	defer d.model.mu.Unlock()
	d.model.open--
	return nil
}

// TextResult renders a decoder result object with the given text.
func TextResult(text string) string {
	data, _ := json.Marshal(map[string]string{"text": text})
	return string(data)
}
