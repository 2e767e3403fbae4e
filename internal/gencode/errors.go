package gencode

import (
	"fmt"
	"strings"
)

// FieldError is a single schema violation in a table source.
type FieldError struct {
	Field   string
	Message string
}

// ConfigError reports a table source that cannot be read or does not
// describe valid tables.
type ConfigError struct {
	Source  string
	Message string
	Fields  []FieldError
	Cause   error
}

func (e *ConfigError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "genetic code source %s: %s", e.Source, e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&sb, ": %v", e.Cause)
	}
	for _, f := range e.Fields {
		fmt.Fprintf(&sb, "\n  %s: %s", f.Field, f.Message)
	}
	return sb.String()
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// UnknownTableError reports a requested table id missing from the source.
type UnknownTableError struct {
	ID        string
	Available []string
}

func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("unknown genetic code table %q (available: %s)", e.ID, strings.Join(e.Available, ", "))
}
