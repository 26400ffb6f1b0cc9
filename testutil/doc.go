// Package testutil provides fakes shared by the voicescribe package tests.
//
//   - FakeConvertio: an httptest-backed stand-in for the Convertio API that
//     serves scripted submit and status responses and hosts output files.
//   - WAV / WriteWAV: build PCM WAV payloads with go-audio/wav.
//   - FakeModel: a transcription.Model whose decoders replay a script.
//
// Fakes that own a server are components, so Start runs them for the
// length of one test:
//
//	api := testutil.NewFakeConvertio("key")
//	testutil.Start(t, api)
package testutil
