package parser

import (
	"fmt"
	"strings"
)

// Position is a location in an assembly source file.
type Position struct {
	Filename string
	Line     int
	Column   int
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// ErrorKind categorizes parse errors so front ends can filter or count
// them without string-matching messages.
type ErrorKind int

const (
	ErrorSyntax ErrorKind = iota
	ErrorUndefinedLabel
	ErrorDuplicateLabel
	ErrorInvalidDirective
	ErrorInvalidInstruction
	ErrorInvalidOperand
	ErrorCircularInclude
	ErrorMacroExpansion
	ErrorFileIO
)

// Error is a parse error carrying its source position and, when
// available, the offending source line.
type Error struct {
	Pos     Position
	Message string
	Context string
	Kind    ErrorKind
}

func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: error: %s\n", e.Pos, e.Message)
	if e.Context != "" {
		fmt.Fprintf(&sb, "    %s\n", e.Context)
	}
	return sb.String()
}

// NewError creates a parse error without source context.
func NewError(pos Position, kind ErrorKind, message string) *Error {
	return &Error{Pos: pos, Message: message, Kind: kind}
}

// NewErrorWithContext creates a parse error that quotes the source line.
func NewErrorWithContext(pos Position, kind ErrorKind, message, context string) *Error {
	return &Error{Pos: pos, Message: message, Context: context, Kind: kind}
}

// Warning is a non-fatal diagnostic.
type Warning struct {
	Pos     Position
	Message string
}

func (w *Warning) String() string {
	return fmt.Sprintf("%s: warning: %s", w.Pos, w.Message)
}

// ErrorList accumulates the errors and warnings of one parse, so a single
// run can report every problem instead of stopping at the first.
type ErrorList struct {
	Errors   []*Error
	Warnings []*Warning
}

// AddError appends err.
func (el *ErrorList) AddError(err *Error) {
	el.Errors = append(el.Errors, err)
}

// AddWarning appends warn.
func (el *ErrorList) AddWarning(warn *Warning) {
	el.Warnings = append(el.Warnings, warn)
}

// HasErrors reports whether any error was recorded.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Error concatenates every recorded error, one formatted block each.
func (el *ErrorList) Error() string {
	var sb strings.Builder
	for _, err := range el.Errors {
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// PrintWarnings renders the warnings, one per line.
func (el *ErrorList) PrintWarnings() string {
	var sb strings.Builder
	for _, warn := range el.Warnings {
		sb.WriteString(warn.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
