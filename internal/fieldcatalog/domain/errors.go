package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownFieldContext    = errors.New("unknown field context")
	ErrInvalidFieldDefinition = errors.New("invalid field definition")
)

type ValidationProblem struct {
	Attribute string
	Message   string
}

// ValidationError collects every invariant a definition breaks so the
// editor can show them all at once.
type ValidationError struct {
	FieldName string
	Problems  []ValidationProblem
}

func (e *ValidationError) Add(attribute, format string, args ...any) {
	e.Problems = append(e.Problems, ValidationProblem{
		Attribute: attribute,
		Message:   fmt.Sprintf(format, args...),
	})
}

func (e *ValidationError) HasProblems() bool {
	return e != nil && len(e.Problems) > 0
}

// OrNil returns nil when no problem was recorded.
func (e *ValidationError) OrNil() error {
	if !e.HasProblems() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	messages := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		messages = append(messages, fmt.Sprintf("%s: %s", p.Attribute, p.Message))
	}
	return fmt.Sprintf("field %q is invalid: %s", e.FieldName, strings.Join(messages, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidFieldDefinition
}

// PartialReorderFailure reports the updates of a bulk reorder that did not
// apply. Applied updates are kept.
type PartialReorderFailure struct {
	FailedIDs []string
	Applied   int
	Causes    map[string]error
}

func (e *PartialReorderFailure) Error() string {
	return fmt.Sprintf("reorder partially applied: %d updated, %d failed (%s)",
		e.Applied, len(e.FailedIDs), strings.Join(e.FailedIDs, ", "))
}
