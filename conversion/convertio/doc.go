// Package convertio implements conversion.Converter on top of the
// Convertio HTTP API (https://api.convertio.co).
//
//	POST /convert              {apikey, input:"url", file, outputformat}
//	GET  /convert/{id}/status  ?apikey=...
//
// Status is polled once right after submission and then at a fixed
// interval until the job reports "finish" or "error". Polling is unbounded
// unless MaxPollAttempts is set; cancel the context to abandon it.
package convertio
