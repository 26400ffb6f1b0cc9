package transcription

import (
	"fmt"
	"io"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-audio/wav"

	apperrors "github.com/kbukum/voicescribe/errors"
)

const wavPCM = 1

// audioSource is an open artifact positioned at its PCM data.
type audioSource struct {
	artifact *Artifact
	file     *os.File
	pcm      io.Reader
}

func (s *audioSource) Close() error {
	return s.file.Close()
}

// Probe reads the artifact's header without keeping the file open.
func Probe(path string) (*Artifact, error) {
	src, err := openAudio(path)
	if err != nil {
		return nil, err
	}
	_ = src.Close()
	return src.artifact, nil
}

// openAudio opens path as a PCM WAV file. Anything that keeps a decoder
// from being built (unreadable file, wrong container, unknown sample rate,
// compressed encoding) is a DECODER_INIT_FAILED error.
func openAudio(path string) (*audioSource, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, apperrors.DecoderInit("cannot read audio file", err)
	}
	if !mt.Is("audio/wav") {
		return nil, apperrors.DecoderInit(fmt.Sprintf("unsupported audio format %s", mt.String()), nil)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.DecoderInit("cannot read audio file", err)
	}

	d := wav.NewDecoder(f)
	d.ReadInfo()
	if err := d.Err(); err != nil {
		_ = f.Close()
		return nil, apperrors.DecoderInit("unreadable wav header", err)
	}

	switch {
	case d.SampleRate == 0:
		_ = f.Close()
		return nil, apperrors.DecoderInit("sample rate is zero", nil)
	case d.WavAudioFormat != wavPCM:
		_ = f.Close()
		return nil, apperrors.DecoderInit(fmt.Sprintf("unsupported wav encoding %d", d.WavAudioFormat), nil)
	case d.NumChans == 0 || d.BitDepth == 0 || d.BitDepth%8 != 0:
		_ = f.Close()
		return nil, apperrors.DecoderInit(fmt.Sprintf("unsupported frame layout: %d channels, %d bits", d.NumChans, d.BitDepth), nil)
	}

	if err := d.FwdToPCM(); err != nil {
		_ = f.Close()
		return nil, apperrors.DecoderInit("no pcm data", err)
	}

	a := &Artifact{
		LocalPath:  path,
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
		BitDepth:   int(d.BitDepth),
		Encoding:   fmt.Sprintf("pcm_s%dle", d.BitDepth),
	}
	if fs := a.FrameSize(); fs > 0 {
		a.Frames = d.PCMLen() / int64(fs)
	}

	return &audioSource{
		artifact: a,
		file:     f,
		pcm:      io.LimitReader(d.PCMChunk, d.PCMLen()),
	}, nil
}
