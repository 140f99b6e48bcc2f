package encoder

import (
	"fmt"

	"github.com/tinylab/thumb16vm/parser"
)

// EncodingError carries the failed instruction alongside the error, so
// the message can quote the source position and raw line.
type EncodingError struct {
	Instruction *parser.Instruction
	Message     string
	Wrapped     error
}

func (e *EncodingError) Error() string {
	if e.Instruction == nil {
		if e.Wrapped != nil {
			return fmt.Sprintf("encoding error: %s: %v", e.Message, e.Wrapped)
		}
		return fmt.Sprintf("encoding error: %s", e.Message)
	}

	var location string
	switch pos := e.Instruction.Pos; {
	case pos.Filename != "":
		location = fmt.Sprintf("%s:%d:%d: ", pos.Filename, pos.Line, pos.Column)
	case pos.Line > 0:
		location = fmt.Sprintf("line %d: ", pos.Line)
	}

	msg := location + e.Message
	if e.Wrapped != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Wrapped)
	}
	if e.Instruction.RawLine != "" {
		msg = fmt.Sprintf("%s\n  source: %s", msg, e.Instruction.RawLine)
	}
	return msg
}

// Unwrap supports errors.Is/As.
func (e *EncodingError) Unwrap() error {
	return e.Wrapped
}

// NewEncodingError creates an EncodingError for inst.
func NewEncodingError(inst *parser.Instruction, message string) *EncodingError {
	return &EncodingError{Instruction: inst, Message: message}
}

// WrapEncodingError attaches instruction context to err. Nil passes
// through, and an existing EncodingError is not double-wrapped.
func WrapEncodingError(inst *parser.Instruction, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*EncodingError); ok {
		return err
	}
	return &EncodingError{
		Instruction: inst,
		Message:     "failed to encode instruction",
		Wrapped:     err,
	}
}
