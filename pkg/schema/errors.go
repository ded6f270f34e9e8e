package schema

import (
	"fmt"
	"strings"

	"github.com/hazriqpedia/waybill/pkg/domain"
)

// Violation represents a single field validation failure.
type Violation struct {
	Field  string // Field path, "(root)" for the document itself
	Reason string // Human-readable reason for failure
}

func (v Violation) String() string {
	return fmt.Sprintf("field %q: %s", v.Field, v.Reason)
}

// ValidationError reports why a final answer could not be parsed.
// It matches domain.ErrFormatValidation with errors.Is.
type ValidationError struct {
	Kind       Kind
	Raw        string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		return fmt.Sprintf("%s response: %s", e.Kind, e.Violations[0])
	}
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("%s response: %d violations: %s", e.Kind, len(e.Violations), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return domain.ErrFormatValidation
}

// Violations returns the violations if err is a *ValidationError.
// Otherwise returns nil.
func Violations(err error) []Violation {
	if verr, ok := err.(*ValidationError); ok {
		return verr.Violations
	}
	return nil
}
