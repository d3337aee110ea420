package mesh

import "fmt"

// ParseError reports source text that could not be read as a mesh
type ParseError struct {
	Format string // "obj", "ply", "stl", ...
	Line   int    // 1-based, 0 when not tied to a line
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := e.Format + ": " + e.Reason
	if e.Line > 0 {
		msg = fmt.Sprintf("%s: line %d: %s", e.Format, e.Line, e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// FormatError reports a malformed binary container
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return "invalid container: " + e.Reason + ": " + e.Err.Error()
	}
	return "invalid container: " + e.Reason
}

func (e *FormatError) Unwrap() error { return e.Err }

// ValidationError reports input that parsed but cannot produce a usable scene
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// Formatf builds a FormatError
func Formatf(format string, args ...any) *FormatError {
	return &FormatError{Reason: fmt.Sprintf(format, args...)}
}

// Validationf builds a ValidationError
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func validationErrorf(format string, args ...any) error {
	return Validationf(format, args...)
}
