package whgen

import (
	"fmt"
	"strings"
)

// Position represents a source code location for error reporting.
type Position struct {
	File   string
	Line   int
	Column int
}

// String returns a formatted position string.
func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// IsValid reports whether the position points at a real location.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Error represents a compilation error with source location and optional hint.
type Error struct {
	Pos     Position
	Message string
	Hint    string // optional suggestion for fixing the error
	// SourceLine is the text of the offending line, used by Render.
	SourceLine string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	if e.Pos.IsValid() {
		sb.WriteString(e.Pos.String())
		sb.WriteString(": ")
	}
	sb.WriteString("error: ")
	sb.WriteString(e.Message)
	if e.Hint != "" {
		sb.WriteString(" (")
		sb.WriteString(e.Hint)
		sb.WriteString(")")
	}
	return sb.String()
}

// Render formats the error with a caret under the offending column:
//
//	message
//	 --> line 3:5
//	  |
//	3 | some source
//	  |     ^
//	  = help: hint
func (e *Error) Render() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	if !e.Pos.IsValid() {
		if e.Hint != "" {
			sb.WriteString("\n  = help: ")
			sb.WriteString(e.Hint)
		}
		return sb.String()
	}

	lineNo := fmt.Sprintf("%d", e.Pos.Line)
	gutter := strings.Repeat(" ", len(lineNo))
	fmt.Fprintf(&sb, "\n%s--> line %d:%d\n", gutter, e.Pos.Line, e.Pos.Column)
	fmt.Fprintf(&sb, "%s |\n", gutter)
	fmt.Fprintf(&sb, "%s | %s\n", lineNo, e.SourceLine)
	col := e.Pos.Column - 1
	if col < 0 {
		col = 0
	}
	fmt.Fprintf(&sb, "%s | %s^", gutter, strings.Repeat(" ", col))
	if e.Hint != "" {
		fmt.Fprintf(&sb, "\n%s = help: %s", gutter, e.Hint)
	}
	return sb.String()
}

// NewError creates a new Error with the given position and message.
func NewError(pos Position, message string) *Error {
	return &Error{Pos: pos, Message: message}
}

// NewErrorf creates a new Error with a formatted message.
func NewErrorf(pos Position, format string, args ...any) *Error {
	return &Error{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// NewErrorWithHint creates a new Error with a hint for fixing the error.
func NewErrorWithHint(pos Position, message, hint string) *Error {
	return &Error{Pos: pos, Message: message, Hint: hint}
}
