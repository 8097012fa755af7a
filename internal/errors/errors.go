// internal/errors/errors.go
package errors

import (
	"fmt"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	SyntaxError        ErrorType = "SyntaxError"
	TypeError          ErrorType = "TypeError"
	ReferenceError     ErrorType = "ReferenceError"
	CompileError       ErrorType = "CompileError"
	LinkError          ErrorType = "LinkError"
	RuntimeError       ErrorType = "RuntimeError"
	RedeclarationError ErrorType = "RedeclarationError"
)

// SourceLocation represents a location in source code
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

// EmberError represents an error with source location information
type EmberError struct {
	Type     ErrorType
	Message  string
	Location SourceLocation
	Source   string // The source line where the error occurred
}

// Error implements the error interface
func (e *EmberError) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s: %s", e.Type, e.Message))

	if e.Location.File != "" {
		sb.WriteString(fmt.Sprintf("\n  at %s:%d:%d",
			e.Location.File, e.Location.Line, e.Location.Column))

		// Show source line if available
		if e.Source != "" {
			sb.WriteString(fmt.Sprintf("\n\n  %d | %s\n", e.Location.Line, e.Source))
			sb.WriteString(fmt.Sprintf("  %s", strings.Repeat(" ", len(fmt.Sprintf("%d | ", e.Location.Line)))))
			if e.Location.Column > 0 {
				sb.WriteString(strings.Repeat(" ", e.Location.Column-1))
			}
			sb.WriteString("^")
		}
	}

	return sb.String()
}

// Is reports whether target carries the same error type, so callers can
// classify turn failures with errors.Is instead of string matching.
func (e *EmberError) Is(target error) bool {
	t, ok := target.(*EmberError)
	return ok && t.Type == e.Type
}

// NewSyntaxError creates a new syntax error
func NewSyntaxError(message string, file string, line, column int) *EmberError {
	return &EmberError{
		Type:    SyntaxError,
		Message: message,
		Location: SourceLocation{
			File:   file,
			Line:   line,
			Column: column,
		},
	}
}

// NewTypeError creates a new type error
func NewTypeError(message string, file string, line, column int) *EmberError {
	return &EmberError{
		Type:    TypeError,
		Message: message,
		Location: SourceLocation{
			File:   file,
			Line:   line,
			Column: column,
		},
	}
}

// NewReferenceError creates a new unresolved-name error
func NewReferenceError(message string, file string, line, column int) *EmberError {
	return &EmberError{
		Type:    ReferenceError,
		Message: message,
		Location: SourceLocation{
			File:   file,
			Line:   line,
			Column: column,
		},
	}
}

// NewCompileError creates a new lowering/emission error
func NewCompileError(message string) *EmberError {
	return &EmberError{Type: CompileError, Message: message}
}

// NewLinkError creates a new link-stage error (duplicate or unresolved symbol)
func NewLinkError(message string) *EmberError {
	return &EmberError{Type: LinkError, Message: message}
}

// NewRuntimeError creates a new runtime error
func NewRuntimeError(message string) *EmberError {
	return &EmberError{Type: RuntimeError, Message: message}
}

// NewRedeclarationError creates the user-visible invalid redeclaration error
func NewRedeclarationError(name string) *EmberError {
	return &EmberError{
		Type:    RedeclarationError,
		Message: fmt.Sprintf("Invalid redeclaration of %s", name),
	}
}

// WithSource adds source code context to the error
func (e *EmberError) WithSource(source string) *EmberError {
	e.Source = source
	return e
}
