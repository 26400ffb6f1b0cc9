// Package httpclient provides a configurable HTTP client with built-in
// authentication, rate limiting and typed JSON helpers.
//
// # Basic Usage
//
//	client, err := httpclient.New(httpclient.Config{
//	    Name:    "convertio",
//	    BaseURL: "https://api.convertio.co",
//	    Timeout: 30 * time.Second,
//	})
//
//	resp, err := client.Do(ctx, httpclient.Request{
//	    Method: http.MethodGet,
//	    Path:   "/convert/abc/status",
//	})
//
// # Typed JSON
//
//	out, err := httpclient.DoJSON[submitResponse](ctx, client, httpclient.Request{
//	    Method: http.MethodPost,
//	    Path:   "/convert",
//	    Body:   body,
//	    Auth:   httpclient.QueryKey("apikey", key),
//	})
//
// Non-2xx responses come back as *Error together with the response, so
// callers can still read an error payload the remote side sent.
package httpclient
