package testutil

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/orcaman/writerseeker"
)

// WAV encodes mono 16-bit PCM samples as a WAV file. A nil or empty
// slice yields a valid file with an empty data chunk.
func WAV(t testing.TB, sampleRate int, samples []int) []byte {
	t.Helper()

	ws := &writerseeker.WriterSeeker{}
	enc := wav.NewEncoder(ws, sampleRate, 16, 1, 1)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if buf.Data == nil {
		buf.Data = []int{}
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close wav encoder: %v", err)
	}

	data, err := io.ReadAll(ws.Reader())
	if err != nil {
		t.Fatalf("read wav: %v", err)
	}
	return data
}

// WriteWAV writes a WAV file into a temp directory and returns its path.
func WriteWAV(t testing.TB, sampleRate int, samples []int) string {
	t.Helper()
	return WriteFile(t, "voice.wav", WAV(t, sampleRate, samples))
}

// WriteFile writes data into a temp directory and returns its path.
func WriteFile(t testing.TB, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// Tone returns n samples of a square wave, loud enough to look like audio.
func Tone(n int) []int {
	samples := make([]int, n)
	for i := range samples {
		if (i/40)%2 == 0 {
			samples[i] = 8000
		} else {
			samples[i] = -8000
		}
	}
	return samples
}
