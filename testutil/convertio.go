package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/kbukum/voicescribe/component"
)

// SubmitCall records one POST /convert request.
type SubmitCall struct {
	APIKey       string `json:"apikey"`
	Input        string `json:"input"`
	File         string `json:"file"`
	OutputFormat string `json:"outputformat"`
}

// FakeConvertio serves scripted Convertio responses. Status responses are
// consumed in order; the last one repeats forever.
type FakeConvertio struct {
	apiKey string

	mu       sync.Mutex
	srv      *httptest.Server
	submit   string
	statuses []string
	submits  []SubmitCall
	polls    int
	files    map[string][]byte
}

var _ component.Component = (*FakeConvertio)(nil)

// NewFakeConvertio creates a fake that accepts apiKey.
func NewFakeConvertio(apiKey string) *FakeConvertio {
	f := &FakeConvertio{apiKey: apiKey}
	f.reset()
	return f
}

func (f *FakeConvertio) reset() {
	f.submit = SubmitOK("42")
	f.statuses = []string{StatusPending()}
	f.submits = nil
	f.polls = 0
	f.files = make(map[string][]byte)
}

// Name returns the component name.
func (f *FakeConvertio) Name() string { return "fake-convertio" }

// Start launches the HTTP server.
func (f *FakeConvertio) Start(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.srv != nil {
		return nil
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	return nil
}

// Stop shuts the HTTP server down.
func (f *FakeConvertio) Stop(_ context.Context) error {
	f.mu.Lock()
	srv := f.srv
	f.srv = nil
	f.mu.Unlock()
	if srv != nil {
		srv.Close()
	}
	return nil
}

// Health reports whether the server is running.
func (f *FakeConvertio) Health(_ context.Context) component.Health {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.srv == nil {
		return component.Health{Name: f.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: f.Name(), Status: component.StatusHealthy}
}

// URL returns the server base URL.
func (f *FakeConvertio) URL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.srv == nil {
		return ""
	}
	return f.srv.URL
}

// Script sets the submit response and the sequence of status responses.
func (f *FakeConvertio) Script(submit string, statuses ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submit = submit
	if len(statuses) > 0 {
		f.statuses = statuses
	}
}

// Host serves data at /files/<name> and returns its URL.
func (f *FakeConvertio) Host(name string, data []byte) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[name] = data
	if f.srv == nil {
		return "/files/" + name
	}
	return f.srv.URL + "/files/" + name
}

// Submissions returns the recorded submit calls.
func (f *FakeConvertio) Submissions() []SubmitCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SubmitCall(nil), f.submits...)
}

// Polls returns the number of status requests served.
func (f *FakeConvertio) Polls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls
}

func (f *FakeConvertio) serve(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/convert":
		f.serveSubmit(w, r)
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/convert/") && strings.HasSuffix(r.URL.Path, "/status"):
		f.serveStatus(w, r)
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/files/"):
		f.serveFile(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (f *FakeConvertio) serveSubmit(w http.ResponseWriter, r *http.Request) {
	var call SubmitCall
	if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
		writeJSON(w, http.StatusBadRequest, SubmitError("malformed body"))
		return
	}

	f.mu.Lock()
	f.submits = append(f.submits, call)
	resp := f.submit
	f.mu.Unlock()

	if call.APIKey != f.apiKey {
		writeJSON(w, http.StatusUnauthorized, SubmitError("Invalid API Key"))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (f *FakeConvertio) serveStatus(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("apikey") != f.apiKey {
		writeJSON(w, http.StatusUnauthorized, SubmitError("Invalid API Key"))
		return
	}

	f.mu.Lock()
	i := f.polls
	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	resp := f.statuses[i]
	f.polls++
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func (f *FakeConvertio) serveFile(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/files/")
	f.mu.Lock()
	data, ok := f.files[name]
	f.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// SubmitOK is a successful submit response for job id.
func SubmitOK(id string) string {
	return fmt.Sprintf(`{"code":200,"status":"ok","data":{"id":%q,"minutes":1}}`, id)
}

// SubmitError is a rejected submit response.
func SubmitError(msg string) string {
	return fmt.Sprintf(`{"code":422,"status":"error","error":%q}`, msg)
}

// StatusPending is a non-terminal status response.
func StatusPending() string {
	return `{"code":200,"status":"ok","data":{"id":"42","step":"pending","step_percent":40}}`
}

// StatusFinish is a finished status response with the given output URL.
func StatusFinish(outputURL string) string {
	return fmt.Sprintf(`{"code":200,"status":"ok","data":{"id":"42","step":"finish","step_percent":100,"output":{"url":%q,"size":"1024"}}}`, outputURL)
}

// StatusError is an errored status response.
func StatusError(msg string) string {
	return fmt.Sprintf(`{"code":200,"status":"ok","data":{"id":"42","step":"error","error":%q}}`, msg)
}
