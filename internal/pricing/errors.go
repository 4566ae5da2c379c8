package pricing

import "fmt"

// ValidationError reports a malformed or out-of-range line item or parameter.
// Index is the 0-based position of the offending item, or -1 when the field
// belongs to the pricing parameters.
type ValidationError struct {
	Index   int
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("item %d: invalid %s: %s", e.Index, e.Field, e.Message)
}

// UnknownStrategyError is returned when a requested strategy is not one of the
// fixed presets.
type UnknownStrategyError struct {
	Strategy string
}

func (e *UnknownStrategyError) Error() string {
	return fmt.Sprintf("unknown strategy %q: must be one of low_cost, balanced, premium", e.Strategy)
}

func paramError(field, message string) *ValidationError {
	return &ValidationError{Index: -1, Field: field, Message: message}
}
