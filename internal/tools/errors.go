package tools

import (
	"errors"

	"github.com/Simplici0/tenderpricing/internal/pricing"
)

// Sentinel errors for the tool registry.
var (
	ErrNotFound      = errors.New("tool not found")
	ErrAlreadyExists = errors.New("tool already registered")
	ErrEmptyName     = errors.New("tool name is empty")
)

// Error kinds reported in a failed Result.
const (
	KindValidation       = "validation"
	KindUnknownStrategy  = "unknown_strategy"
	KindInvalidArguments = "invalid_arguments"
	KindInternal         = "internal"
)

// ArgumentError reports tool arguments that are not valid JSON or do not
// have the expected shape.
type ArgumentError struct {
	Err error
}

func (e *ArgumentError) Error() string { return "invalid arguments: " + e.Err.Error() }

func (e *ArgumentError) Unwrap() error { return e.Err }

// ErrorBody is the structured description of a failed call.
type ErrorBody struct {
	Kind     string `json:"kind"`
	Message  string `json:"message"`
	Index    *int   `json:"index,omitempty"`
	Field    string `json:"field,omitempty"`
	Strategy string `json:"strategy,omitempty"`
}

// Describe classifies err for a caller.
func Describe(err error) ErrorBody {
	var ve *pricing.ValidationError
	var use *pricing.UnknownStrategyError
	var ae *ArgumentError

	switch {
	case errors.As(err, &use):
		return ErrorBody{Kind: KindUnknownStrategy, Message: err.Error(), Strategy: use.Strategy}
	case errors.As(err, &ve):
		body := ErrorBody{Kind: KindValidation, Message: err.Error(), Field: ve.Field}
		if ve.Index >= 0 {
			idx := ve.Index
			body.Index = &idx
		}
		return body
	case errors.As(err, &ae):
		return ErrorBody{Kind: KindInvalidArguments, Message: err.Error()}
	}
	return ErrorBody{Kind: KindInternal, Message: err.Error()}
}

// IsClientError reports whether err was caused by the caller's input.
func IsClientError(err error) bool {
	switch Describe(err).Kind {
	case KindValidation, KindUnknownStrategy, KindInvalidArguments:
		return true
	}
	return false
}

// ErrorResult wraps err as a failed Result of the shape
// {"error": {kind, message, index?, field?, strategy?}}.
func ErrorResult(err error) Result {
	return Result{
		Content: map[string]ErrorBody{"error": Describe(err)},
		IsError: true,
	}
}
