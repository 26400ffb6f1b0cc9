// Package errors provides the error taxonomy of the voice pipeline.
//
// Every stage failure is an *AppError carrying a machine-readable code, the
// raw reason reported by the failing collaborator (for example the text of a
// conversion API error) and an optional cause. None of the codes are
// retried: a failed stage terminates the run.
//
// UserMessage renders the single stage-specific text shown to the end user.
package errors
