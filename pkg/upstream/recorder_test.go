package upstream

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   string
}

// fakeRemote records every request and answers with a canned status and body.
type fakeRemote struct {
	*httptest.Server
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func newFakeRemote(status int, body string) *fakeRemote {
	remote := &fakeRemote{status: status, body: body}
	remote.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)

		remote.mu.Lock()
		remote.requests = append(remote.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   string(data),
		})
		remote.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(remote.status)
		_, _ = io.WriteString(w, remote.body)
	}))
	return remote
}

func (remote *fakeRemote) Requests() []recordedRequest {
	remote.mu.Lock()
	defer remote.mu.Unlock()
	return append([]recordedRequest(nil), remote.requests...)
}
