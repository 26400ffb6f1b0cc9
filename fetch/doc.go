// Package fetch downloads audio payloads over HTTP.
//
// A Fetcher returns the body of a successful GET and nothing else: writing
// the bytes to a staging slot is left to the caller. Every failure, whether
// transport-level or a non-2xx status, surfaces as a FETCH_FAILED
// *errors.AppError. Fetcher satisfies provider.RequestResponse[string, []byte]
// so it can be wrapped with the provider middlewares.
package fetch
