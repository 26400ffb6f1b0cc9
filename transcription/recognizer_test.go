package transcription_test

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/kbukum/voicescribe/errors"
	"github.com/kbukum/voicescribe/logger"
	"github.com/kbukum/voicescribe/pipeline"
	"github.com/kbukum/voicescribe/testutil"
	"github.com/kbukum/voicescribe/transcription"
)

func collect(t *testing.T, rec *transcription.Recognizer, path string) []transcription.Segment {
	t.Helper()
	it, err := rec.Recognize(context.Background(), path)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	segs, err := pipeline.Collect(context.Background(), pipeline.From[transcription.Segment](it))
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return segs
}

func TestRecognize_PartialThenFinal(t *testing.T) {
	model := &testutil.FakeModel{
		Chunks: []testutil.Utterance{{Boundary: true, Text: "hello"}},
		Final:  "hello world",
	}
	rec := transcription.NewRecognizer(model, logger.NewNop())
	path := testutil.WriteWAV(t, 16000, testutil.Tone(8000))

	segs := collect(t, rec, path)
	want := []transcription.Segment{{Text: "hello"}, {Text: "hello world", Final: true}}
	if len(segs) != len(want) {
		t.Fatalf("expected %d segments, got %+v", len(want), segs)
	}
	for i := range want {
		if segs[i] != want[i] {
			t.Errorf("segment %d = %+v, want %+v", i, segs[i], want[i])
		}
	}

	if rates := model.SampleRates(); len(rates) != 1 || rates[0] != 16000 {
		t.Errorf("expected decoder bound to 16000 Hz, got %v", rates)
	}
	if model.OpenDecoders() != 0 {
		t.Error("decoder was not closed")
	}
}

func TestRecognize_FinalIsLastAndUnique(t *testing.T) {
	model := &testutil.FakeModel{
		Chunks: []testutil.Utterance{
			{Boundary: true, Text: "one"},
			{Boundary: false},
			{Boundary: true, Text: "two"},
			{Boundary: true, Text: ""},
		},
		Final: "three",
	}
	rec := transcription.NewRecognizer(model, logger.NewNop())
	segs := collect(t, rec, testutil.WriteWAV(t, 8000, testutil.Tone(20000)))

	finals := 0
	for i, s := range segs {
		if s.Final {
			finals++
			if i != len(segs)-1 {
				t.Errorf("final segment at %d is not last", i)
			}
		}
	}
	if finals != 1 {
		t.Errorf("expected exactly one final, got %d in %+v", finals, segs)
	}
	if len(segs) != 3 {
		t.Errorf("empty boundary results must be skipped, got %+v", segs)
	}
}

func TestRecognize_ChunkSizes(t *testing.T) {
	tests := []struct {
		name       string
		samples    int
		opts       []transcription.RecognizerOption
		wantChunks int
		wantBytes  int
	}{
		{"default exact", 8000, nil, 2, 16000},
		{"default remainder", 9000, nil, 3, 18000},
		{"custom", 1000, []transcription.RecognizerOption{transcription.WithChunkFrames(300)}, 4, 2000},
		{"zero ignored", 4000, []transcription.RecognizerOption{transcription.WithChunkFrames(0)}, 1, 8000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &testutil.FakeModel{}
			rec := transcription.NewRecognizer(model, logger.NewNop(), tt.opts...)
			collect(t, rec, testutil.WriteWAV(t, 16000, testutil.Tone(tt.samples)))

			chunks, n := model.Accepted()
			if chunks != tt.wantChunks || n != tt.wantBytes {
				t.Errorf("got %d chunks / %d bytes, want %d / %d", chunks, n, tt.wantChunks, tt.wantBytes)
			}
		})
	}
}

func TestRecognize_ZeroFramesIsEmpty(t *testing.T) {
	model := &testutil.FakeModel{
		Chunks: []testutil.Utterance{{Boundary: true, Text: "never"}},
	}
	rec := transcription.NewRecognizer(model, logger.NewNop())
	segs := collect(t, rec, testutil.WriteWAV(t, 16000, nil))
	if len(segs) != 0 {
		t.Fatalf("expected empty sequence, got %+v", segs)
	}
	if chunks, _ := model.Accepted(); chunks != 0 {
		t.Errorf("expected no chunks fed, got %d", chunks)
	}
}

func TestRecognize_SilenceIsEmpty(t *testing.T) {
	rec := transcription.NewRecognizer(&testutil.FakeModel{}, logger.NewNop())
	if segs := collect(t, rec, testutil.WriteWAV(t, 16000, make([]int, 12000))); len(segs) != 0 {
		t.Fatalf("expected empty sequence, got %+v", segs)
	}
}

func TestRecognize_DecoderInitErrors(t *testing.T) {
	tests := []struct {
		name  string
		path  func(t *testing.T) string
		model *testutil.FakeModel
	}{
		{"missing file", func(t *testing.T) string { return t.TempDir() + "/absent.wav" }, &testutil.FakeModel{}},
		{"not wav", func(t *testing.T) string {
			return testutil.WriteFile(t, "voice.ogg", []byte("OggS\x00\x02\x00\x00\x00\x00\x00\x00\x00\x00"))
		}, &testutil.FakeModel{}},
		{"zero sample rate", func(t *testing.T) string { return testutil.WriteWAV(t, 0, testutil.Tone(100)) }, &testutil.FakeModel{}},
		{"model refuses", func(t *testing.T) string { return testutil.WriteWAV(t, 16000, testutil.Tone(100)) },
			&testutil.FakeModel{DecoderErr: errors.New("unsupported rate")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := transcription.NewRecognizer(tt.model, logger.NewNop())
			_, err := rec.Recognize(context.Background(), tt.path(t))
			if !apperrors.IsDecoderInit(err) {
				t.Fatalf("expected decoder init error, got %v", err)
			}
		})
	}
}

func TestRecognize_DecodeFailureStopsStream(t *testing.T) {
	model := &testutil.FakeModel{
		Chunks:      []testutil.Utterance{{Boundary: true, Text: "first"}},
		AcceptErrAt: 2,
		Final:       "unreachable",
	}
	rec := transcription.NewRecognizer(model, logger.NewNop())
	it, err := rec.Recognize(context.Background(), testutil.WriteWAV(t, 16000, testutil.Tone(12000)))
	if err != nil {
		t.Fatal(err)
	}
	defer it.Close()

	seg, ok, err := it.Next(context.Background())
	if err != nil || !ok || seg.Text != "first" {
		t.Fatalf("unexpected first result %+v %v %v", seg, ok, err)
	}
	if _, _, err := it.Next(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestRecognize_CanceledContext(t *testing.T) {
	rec := transcription.NewRecognizer(&testutil.FakeModel{}, logger.NewNop())
	path := testutil.WriteWAV(t, 16000, testutil.Tone(8000))

	ctx, cancel := context.WithCancel(context.Background())
	it, err := rec.Recognize(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer it.Close()
	cancel()

	if _, _, err := it.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if _, err := rec.Recognize(ctx, path); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled before opening, got %v", err)
	}
}

func TestRecognize_NotRestartable(t *testing.T) {
	model := &testutil.FakeModel{Final: "done"}
	rec := transcription.NewRecognizer(model, logger.NewNop())
	it, err := rec.Recognize(context.Background(), testutil.WriteWAV(t, 16000, testutil.Tone(4000)))
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if seg, ok, _ := it.Next(ctx); !ok || !seg.Final {
		t.Fatalf("expected final segment, got %+v", seg)
	}
	for i := 0; i < 2; i++ {
		if _, ok, err := it.Next(ctx); ok || err != nil {
			t.Fatalf("exhausted iterator returned ok=%v err=%v", ok, err)
		}
	}
	if err := it.Close(); err != nil {
		t.Fatal(err)
	}
	if err := it.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if _, ok, _ := it.Next(ctx); ok {
		t.Fatal("closed iterator returned a value")
	}
}

func TestProbe(t *testing.T) {
	a, err := transcription.Probe(testutil.WriteWAV(t, 16000, testutil.Tone(1600)))
	if err != nil {
		t.Fatal(err)
	}
	if a.SampleRate != 16000 || a.Channels != 1 || a.BitDepth != 16 || a.Frames != 1600 {
		t.Errorf("unexpected artifact %+v", a)
	}
	if a.Encoding != "pcm_s16le" {
		t.Errorf("unexpected encoding %q", a.Encoding)
	}
}

func TestRecognizer_ProviderSurface(t *testing.T) {
	rec := transcription.NewRecognizer(&testutil.FakeModel{}, logger.NewNop())
	if rec.Name() != "recognizer:fake" {
		t.Errorf("unexpected name %q", rec.Name())
	}
	if !rec.IsAvailable(context.Background()) {
		t.Error("expected available")
	}
	it, err := rec.Execute(context.Background(), testutil.WriteWAV(t, 16000, nil))
	if err != nil {
		t.Fatal(err)
	}
	it.Close()
}
