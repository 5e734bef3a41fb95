package core

import "errors"

// Error taxonomy shared by the local relay and the remote service.
var (
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrUnknownTool          = errors.New("unknown tool")
	ErrUnknownResource      = errors.New("unknown resource")
	ErrUnknownMethod        = errors.New("unknown method")
	ErrUpstream             = errors.New("upstream error")
	ErrSchemaMismatch       = errors.New("upstream reply does not match contract")
)
