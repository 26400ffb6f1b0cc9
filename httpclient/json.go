package httpclient

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
)

// Decoded is a response whose body was decoded as JSON into T.
type Decoded[T any] struct {
	StatusCode int
	Data       T
}

// DoJSON sends req and decodes the response body into T.
//
// A non-2xx answer whose body still decodes is returned together with the
// status error, so callers can read an API's own error message.
func DoJSON[T any](ctx context.Context, a *Adapter, req Request) (*Decoded[T], error) {
	resp, err := a.Do(ctx, req)
	if resp == nil {
		return nil, err
	}

	out := &Decoded[T]{StatusCode: resp.StatusCode}
	if len(resp.Body) == 0 {
		return out, err
	}
	if jsonErr := json.Unmarshal(resp.Body, &out.Data); jsonErr != nil {
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("httpclient: decode %s response: %w", a.config.Name, jsonErr)
	}
	return out, err
}
