package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Pipeline stage errors. All of them are terminal for the current run.
const (
	// ErrCodeFetchFailed indicates a transport or HTTP failure retrieving bytes.
	ErrCodeFetchFailed ErrorCode = "FETCH_FAILED"
	// ErrCodeSubmissionFailed indicates the conversion job could not be created.
	ErrCodeSubmissionFailed ErrorCode = "SUBMISSION_FAILED"
	// ErrCodeConversionFailed indicates the conversion job reached an error state.
	ErrCodeConversionFailed ErrorCode = "CONVERSION_FAILED"
	// ErrCodeOutputMissing indicates a reported-successful conversion left no artifact.
	ErrCodeOutputMissing ErrorCode = "OUTPUT_MISSING"
	// ErrCodeDecoderInit indicates the converted audio could not be opened for decoding.
	ErrCodeDecoderInit ErrorCode = "DECODER_INIT_FAILED"
)

// Generic errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// stageCodes lists the codes produced by pipeline stages.
var stageCodes = map[ErrorCode]bool{
	ErrCodeFetchFailed:      true,
	ErrCodeSubmissionFailed: true,
	ErrCodeConversionFailed: true,
	ErrCodeOutputMissing:    true,
	ErrCodeDecoderInit:      true,
}

// IsStageCode reports whether code belongs to a pipeline stage failure.
func IsStageCode(code ErrorCode) bool {
	return stageCodes[code]
}
