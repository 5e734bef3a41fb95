package upstream

import (
	"fmt"
	"net/http"

	"github.com/theapemachine/grok-agent-mcp/core"
)

// Error is returned for any outbound call that did not produce a 2xx reply.
// StatusCode is zero when the request never got a response.
type Error struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Err        error
}

func (err *Error) Error() string {
	if err.StatusCode == 0 {
		return fmt.Sprintf("request failed: %s %s: %v", err.Method, err.Path, err.Err)
	}

	msg := fmt.Sprintf("API error: %d %s", err.StatusCode, http.StatusText(err.StatusCode))
	if err.Message != "" {
		msg += ": " + err.Message
	}

	return msg
}

func (err *Error) Unwrap() []error {
	if err.Err != nil {
		return []error{core.ErrUpstream, err.Err}
	}
	return []error{core.ErrUpstream}
}
