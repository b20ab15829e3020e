package errors

import (
	"bufio"
	"fmt"
	"os"
)

// Category represents the type of error.
type Category string

const (
	CategoryProtocol Category = "protocol"
	CategoryBridge   Category = "bridge"
	CategorySnapshot Category = "snapshot"
	CategoryConfig   Category = "config"
	CategoryCLI      Category = "cli"
)

// Location represents a position in a file, such as the offending line of
// a mote.json.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// MoteError is a structured error with file location, suggestions, and
// documentation.
type MoteError struct {
	// Code is a unique error identifier (e.g., "E120").
	Code string

	// Category is the error type (protocol, bridge, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is the file position where the error occurred.
	Location *Location

	// Context contains surrounding file lines.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Example is code or configuration showing the correct approach.
	Example string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *MoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *MoteError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds a file position to the error and captures the
// surrounding lines for display.
func (e *MoteError) WithLocation(file string, line, column int) *MoteError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, contextWindow)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *MoteError) WithSuggestion(s string) *MoteError {
	e.Suggestion = s
	return e
}

// WithExample adds an example to the error.
func (e *MoteError) WithExample(ex string) *MoteError {
	e.Example = ex
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *MoteError) WithDetail(d string) *MoteError {
	e.Detail = d
	return e
}

// WithContext adds custom context lines to the error.
func (e *MoteError) WithContext(lines []string) *MoteError {
	e.Context = lines
	return e
}

// Wrap wraps another error.
func (e *MoteError) Wrap(err error) *MoteError {
	e.Wrapped = err
	return e
}

// readContextLines reads lines around the specified line number from a file.
func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}

	return lines
}

// New creates a MoteError from a registered error code.
func New(code string) *MoteError {
	template, ok := registry[code]
	if !ok {
		return &MoteError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &MoteError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new MoteError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *MoteError {
	return &MoteError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a MoteError.
func FromError(err error, code string) *MoteError {
	if err == nil {
		return nil
	}
	if me, ok := err.(*MoteError); ok {
		return me
	}
	return New(code).Wrap(err)
}
