package httpclient

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

// Request is one outbound call. Path is joined to Config.BaseURL unless it
// is already an absolute http(s) URL, which is how result downloads reach
// hosts other than the API.
type Request struct {
	Method  string
	Path    string
	Headers map[string]string
	Query   map[string]string

	// Body may be an io.Reader, []byte, string or any JSON-encodable value.
	Body any

	// Auth replaces Config.Auth for this call.
	Auth *Auth
}

// Response holds a fully read body.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK is true for 2xx statuses.
func (r *Response) OK() bool { return r.StatusCode/100 == 2 }

func absoluteURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

func (r Request) url(base string) string {
	if base == "" || absoluteURL(r.Path) {
		return r.Path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(r.Path, "/")
}

func (r Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return r.Method
}

// encode returns the body reader and the content type it implies.
// Readers and byte slices carry no implied type.
func (r Request) encode() (io.Reader, string, error) {
	switch v := r.Body.(type) {
	case nil:
		return nil, "", nil
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case string:
		return strings.NewReader(v), "text/plain", nil
	}
	data, err := json.Marshal(r.Body)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(data), "application/json", nil
}
