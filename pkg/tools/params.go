package tools

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/theapemachine/grok-agent-mcp/core"
)

// getStringParam safely extracts a string parameter from the request
func getStringParam(req mcp.CallToolRequest, key string, required bool) (string, error) {
	val, exists := req.GetArguments()[key]
	if !exists || val == nil {
		if required {
			return "", fmt.Errorf("%w: %s", core.ErrMissingRequiredField, key)
		}
		return "", nil
	}

	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", core.ErrInvalidArgument, key)
	}

	return str, nil
}

func requiredString(req mcp.CallToolRequest, key string) (string, error) {
	return getStringParam(req, key, true)
}

func optionalString(req mcp.CallToolRequest, key string) (string, error) {
	return getStringParam(req, key, false)
}
