package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/theapemachine/grok-agent-mcp/core"
)

// MCP methods mirrored over plain HTTP.
const (
	MethodToolsList     = "tools/list"
	MethodToolsCall     = "tools/call"
	MethodResourcesList = "resources/list"
	MethodResourcesRead = "resources/read"
)

// MirrorRequest is the body of POST /api/mcp.
type MirrorRequest struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

type callParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type readParams struct {
	URI string `json:"uri"`
}

func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	var req MirrorRequest
	if !s.decode(w, r, &req) {
		return
	}

	switch req.Method {
	case MethodToolsList:
		writeJSON(w, http.StatusOK, map[string]any{"tools": s.tools.ListTools()})

	case MethodToolsCall:
		var params callParams
		if !s.params(w, req.Params, &params) {
			return
		}
		// Tool failures are reported in-band, as the protocol does.
		writeJSON(w, http.StatusOK, s.tools.CallTool(r.Context(), params.Name, params.Arguments))

	case MethodResourcesList:
		writeJSON(w, http.StatusOK, map[string]any{"resources": s.resources.ListResources()})

	case MethodResourcesRead:
		var params readParams
		if !s.params(w, req.Params, &params) {
			return
		}

		contents, err := s.resources.ReadResource(r.Context(), params.URI)
		if err != nil {
			s.log.Warn("Resource read failed", "uri", params.URI, "error", err)
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"contents": contents})

	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %s", core.ErrUnknownMethod, req.Method))
	}
}

func (s *Server) params(w http.ResponseWriter, raw json.RawMessage, v any) bool {
	if len(raw) == 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: params", core.ErrMissingRequiredField))
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid params: %w", err))
		return false
	}
	return true
}
