package logger

import "time"

// Field keys shared across packages so log queries stay stable.
const (
	FieldComponent = "component"
	FieldTraceID   = "trace_id"
	FieldRunID     = "run_id"
	FieldUserID    = "user_id"
	FieldJobID     = "job_id"
	FieldStage     = "stage"
	FieldOperation = "operation"
	FieldStatus    = "status"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
	FieldURL       = "url"
	FieldPath      = "path"
)

// ErrorFields describes a failed operation.
func ErrorFields(op string, err error) map[string]interface{} {
	return MergeWithError(map[string]interface{}{FieldOperation: op}, err)
}

// DurationFields describes a timed operation, in milliseconds.
func DurationFields(op string, d time.Duration) map[string]interface{} {
	return map[string]interface{}{FieldOperation: op, FieldDuration: d.Milliseconds()}
}

// MergeWithError sets the error field on fields, allocating when nil.
func MergeWithError(fields map[string]interface{}, err error) map[string]interface{} {
	if fields == nil {
		fields = make(map[string]interface{}, 1)
	}
	fields[FieldError] = err.Error()
	return fields
}
