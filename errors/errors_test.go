package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestSubmissionFailed_Reason(t *testing.T) {
	tests := []struct {
		name   string
		reason string
		want   string
	}{
		{"empty reason defaults", "", "unknown error"},
		{"reason kept verbatim", "bad url", "bad url"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := SubmissionFailed(tc.reason)
			if err.Code != ErrCodeSubmissionFailed {
				t.Errorf("expected %s, got %s", ErrCodeSubmissionFailed, err.Code)
			}
			if err.Message != tc.want {
				t.Errorf("expected message %q, got %q", tc.want, err.Message)
			}
			if err.Retryable {
				t.Error("submission errors must not be retryable")
			}
		})
	}
}

func TestConversionFailed_Details(t *testing.T) {
	err := ConversionFailed("42", "timeout")
	if err.Message != "timeout" {
		t.Errorf("expected 'timeout', got %q", err.Message)
	}
	if err.Details["job_id"] != "42" {
		t.Errorf("expected job_id=42, got %v", err.Details["job_id"])
	}

	noJob := ConversionFailed("", "")
	if _, ok := noJob.Details["job_id"]; ok {
		t.Error("expected no job_id detail when id is empty")
	}
	if noJob.Message != UnknownReason {
		t.Errorf("expected %q, got %q", UnknownReason, noJob.Message)
	}
}

func TestFetchFailed_WrapsCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := FetchFailed("https://example/a.ogg", cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if err.Details["url"] != "https://example/a.ogg" {
		t.Errorf("unexpected url detail: %v", err.Details["url"])
	}
	if !strings.Contains(err.Error(), "FETCH_FAILED") {
		t.Errorf("expected code in error string, got %q", err.Error())
	}
}

func TestCodeOf_WrappedError(t *testing.T) {
	base := OutputMissing("converted")
	wrapped := fmt.Errorf("stage converting: %w", base)

	if got := CodeOf(wrapped); got != ErrCodeOutputMissing {
		t.Errorf("expected OUTPUT_MISSING, got %q", got)
	}
	if !HasCode(wrapped, ErrCodeOutputMissing) {
		t.Error("expected HasCode to match")
	}
	if CodeOf(fmt.Errorf("plain")) != "" {
		t.Error("expected empty code for non-AppError")
	}
	if !IsAppError(wrapped) {
		t.Error("expected IsAppError=true")
	}
}

func TestIsStageCode(t *testing.T) {
	for _, code := range []ErrorCode{
		ErrCodeFetchFailed, ErrCodeSubmissionFailed, ErrCodeConversionFailed,
		ErrCodeOutputMissing, ErrCodeDecoderInit,
	} {
		if !IsStageCode(code) {
			t.Errorf("expected %s to be a stage code", code)
		}
	}
	if IsStageCode(ErrCodeInternal) {
		t.Error("INTERNAL_ERROR is not a stage code")
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"submission", SubmissionFailed("bad url"), "Error: error converting file: bad url"},
		{"conversion", ConversionFailed("1", "timeout"), "Error: conversion error: timeout"},
		{"missing", OutputMissing("converted"), "Error converting the audio file. File is missing."},
		{"wrapped decoder", fmt.Errorf("x: %w", DecoderInit("sample rate is zero", nil)), "Error: could not read the converted audio: sample rate is zero"},
		{"plain error", fmt.Errorf("boom"), "Error: something went wrong while processing the voice message."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := UserMessage(tc.err); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestWithDetail_InitializesMap(t *testing.T) {
	err := New(ErrCodeInternal, "x")
	err.WithDetail("k", "v")
	if err.Details["k"] != "v" {
		t.Errorf("expected detail k=v, got %v", err.Details)
	}
}

func TestStageClassifiers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"fetch", fmt.Errorf("stage: %w", FetchFailed("u", stderrors.New("x"))), IsFetchFailed},
		{"submission", SubmissionFailed(""), IsSubmissionFailed},
		{"conversion", ConversionFailed("42", "timeout"), IsConversionFailed},
		{"output", OutputMissing("voice.wav"), IsOutputMissing},
		{"decoder", DecoderInit("bad", nil), IsDecoderInit},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if !tc.check(tc.err) {
				t.Errorf("classifier rejected %v", tc.err)
			}
			if tc.check(stderrors.New("plain")) {
				t.Error("classifier accepted a plain error")
			}
		})
	}
}
