package errors

import "fmt"

// UserMessage renders the single user-facing text for a failed run.
// Stage errors include their raw reason; anything else gets a generic text.
func UserMessage(err error) string {
	appErr, ok := AsAppError(err)
	if !ok {
		return "Error: something went wrong while processing the voice message."
	}
	switch appErr.Code {
	case ErrCodeFetchFailed:
		return fmt.Sprintf("Error: could not download the audio file: %s", appErr.Message)
	case ErrCodeSubmissionFailed:
		return fmt.Sprintf("Error: error converting file: %s", appErr.Message)
	case ErrCodeConversionFailed:
		return fmt.Sprintf("Error: conversion error: %s", appErr.Message)
	case ErrCodeOutputMissing:
		return "Error converting the audio file. File is missing."
	case ErrCodeDecoderInit:
		return fmt.Sprintf("Error: could not read the converted audio: %s", appErr.Message)
	default:
		return "Error: something went wrong while processing the voice message."
	}
}
