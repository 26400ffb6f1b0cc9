package transcription

// Segment is one piece of recognized text. Non-final segments close an
// utterance the decoder detected mid-stream; the final segment flushes
// whatever the decoder still buffered when the audio ended.
type Segment struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
}

// Artifact describes an audio file ready for recognition.
type Artifact struct {
	LocalPath  string `json:"local_path"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
	BitDepth   int    `json:"bit_depth"`
	Encoding   string `json:"encoding"`
	// Frames is the number of sample frames in the data chunk.
	Frames int64 `json:"frames"`
}

// FrameSize returns the number of bytes one sample frame occupies.
func (a *Artifact) FrameSize() int {
	return a.Channels * a.BitDepth / 8
}
