// Package conversion models remote audio conversion jobs.
//
// A Converter turns a source URL into a local recognizer-compatible
// artifact in three steps: submit a job, poll it until it reaches a
// terminal state, then retrieve the output into a Destination. Jobs are
// never retried; an errored job is reported to the caller as a
// CONVERSION_FAILED error.
//
// The Convertio implementation lives in conversion/convertio.
package conversion
