package entities

import (
	"fmt"
	"strings"
)

// ValidationResult represents the outcome of checking a response document.
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// ValidationError represents a single violation. Location is a JSON pointer
// into the checked document; it is empty for the document root.
type ValidationError struct {
	Location string
	Message  string
}

func (e ValidationError) String() string {
	if e.Location == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Location, e.Message)
}

// Err collapses the result into a single error, or nil when valid.
func (r *ValidationResult) Err() error {
	if r == nil || r.Valid {
		return nil
	}
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, e.String())
	}
	return fmt.Errorf("%w: %s", ErrMalformedEnvelope, strings.Join(parts, "; "))
}
