package tools

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/theapemachine/grok-agent-mcp/core"
)

// Validate checks args against the tool's input schema: required fields are
// present and non-null, string properties hold strings, and enum properties
// hold one of their allowed values.
func Validate(tool mcp.Tool, args map[string]any) error {
	var errs []error

	for _, name := range tool.InputSchema.Required {
		if val, ok := args[name]; !ok || val == nil {
			errs = append(errs, fmt.Errorf("%w: %s", core.ErrMissingRequiredField, name))
		}
	}

	names := make([]string, 0, len(tool.InputSchema.Properties))
	for name := range tool.InputSchema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		val, ok := args[name]
		if !ok || val == nil {
			continue
		}

		prop, _ := tool.InputSchema.Properties[name].(map[string]any)
		if prop["type"] != "string" {
			continue
		}

		str, ok := val.(string)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s must be a string", core.ErrInvalidArgument, name))
			continue
		}

		if allowed := enumValues(prop["enum"]); allowed != nil && !slices.Contains(allowed, str) {
			errs = append(errs, fmt.Errorf(
				"%w: %s must be one of %s, got %q",
				core.ErrInvalidArgument, name, strings.Join(allowed, ", "), str,
			))
		}
	}

	return errors.Join(errs...)
}

// enumValues accepts both the []string mcp.Enum produces and the []any a
// decoded JSON schema carries.
func enumValues(raw any) []string {
	switch values := raw.(type) {
	case []string:
		return values
	case []any:
		out := make([]string, 0, len(values))
		for _, v := range values {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
