package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/theapemachine/grok-agent-mcp/core"
)

// classified attaches a taxonomy sentinel to an error without changing its
// message, so callers see "Prompt is required" and not a prefixed form.
type classified struct {
	kind error
	err  error
}

func (c *classified) Error() string   { return c.err.Error() }
func (c *classified) Unwrap() []error { return []error{c.kind, c.err} }

func classify(kind, err error) error {
	if err == nil {
		return nil
	}
	return &classified{kind: kind, err: err}
}

func required(msg string) error {
	return classify(core.ErrMissingRequiredField, errors.New(msg))
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrMissingRequiredField),
		errors.Is(err, core.ErrInvalidArgument),
		errors.Is(err, core.ErrUnknownMethod):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrUnknownResource),
		errors.Is(err, core.ErrUnknownTool):
		return http.StatusNotFound
	case errors.Is(err, core.ErrUpstream):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
