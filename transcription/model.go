package transcription

import (
	"github.com/kbukum/voicescribe/provider"
)

// Decoder consumes PCM audio and reports recognized text as JSON objects
// with a "text" field.
type Decoder interface {
	// AcceptWaveform feeds one chunk of PCM bytes. It returns true when the
	// chunk completed an utterance and Result has text ready.
	AcceptWaveform(pcm []byte) (bool, error)
	// Result returns the utterance closed by the last boundary.
	Result() string
	// FinalResult flushes buffered audio and returns the last utterance.
	FinalResult() string
	// Close releases the decoder.
	Close() error
}

// Model is a loaded speech model. Implementations must allow concurrent
// NewDecoder calls.
type Model interface {
	provider.Provider
	NewDecoder(sampleRate float64) (Decoder, error)
}

// Models holds the model factories compiled into the binary. Backends
// register themselves in init.
var Models = NewRegistry()

// NewRegistry creates a new provider registry for speech models.
func NewRegistry() *provider.Registry[Model] {
	return provider.NewRegistry[Model]()
}
