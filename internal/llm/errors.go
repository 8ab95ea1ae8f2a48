package llm

import (
	"errors"
	"fmt"
)

// SchemaViolationError reports that a model response could not be parsed into
// the expected structured schema. It is not retried; the pipeline fails.
type SchemaViolationError struct {
	Schema string
	Detail string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("schema violation (%s): %s", e.Schema, e.Detail)
}

// IsSchemaViolation reports whether err is (or wraps) a SchemaViolationError.
func IsSchemaViolation(err error) bool {
	var sv *SchemaViolationError
	return errors.As(err, &sv)
}
