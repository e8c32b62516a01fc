package vm

import (
	"strconv"

	"github.com/pkg/errors"
)

// ErrorKind enumerates the runtime error conditions the VM can raise.
type ErrorKind uint8

const (
	// InvalidAddOperands: Add's operands were not both Number or both String.
	InvalidAddOperands ErrorKind = iota
	// InvalidMathOperands: Subtract/Multiply/Divide/Greater/Less saw a non-Number operand.
	InvalidMathOperands
	// InvalidMathOperand: Negate/Not saw an operand outside its accepted type.
	InvalidMathOperand
	// UndefinedVariable: Get/SetGlobal referenced a name with no globals entry.
	UndefinedVariable
	// PopFromEmptyStack indicates a compiler bug: an opcode attempted to pop
	// more values than the stack held.
	PopFromEmptyStack
	// OutputWriteFailure wraps a failed write to the print sink, e.g. a
	// closed pipe on the other end of stdout.
	OutputWriteFailure
)

func (k ErrorKind) message() string {
	switch k {
	case InvalidAddOperands:
		return "Operands must be two numbers or two strings."
	case InvalidMathOperands:
		return "Operands must be numbers."
	case InvalidMathOperand:
		return "Operand must be a number."
	case UndefinedVariable:
		return "Undefined variable."
	case PopFromEmptyStack:
		return "internal error: pop from empty stack."
	case OutputWriteFailure:
		return "write to print sink failed."
	default:
		return "unknown runtime error."
	}
}

// RuntimeError is the error type produced by Instance.Run. It pairs an
// ErrorKind with the source line active when the fault occurred and,
// optionally, a wrapped lower-level cause (used for OutputWriteFailure, which
// wraps the print sink's write error).
type RuntimeError struct {
	Kind ErrorKind
	Line int
	Name string // populated for UndefinedVariable
	err  error
}

func newRuntimeError(kind ErrorKind, line int) *RuntimeError {
	return &RuntimeError{Kind: kind, Line: line, err: errors.New(kind.message())}
}

func newUndefinedVariableError(line int, name string) *RuntimeError {
	e := newRuntimeError(UndefinedVariable, line)
	e.Name = name
	e.err = errors.Errorf("Undefined variable '%s'.", name)
	return e
}

// Error formats the way spec.md's CLI prints runtime errors: the message,
// then the offending line on its own line.
func (e *RuntimeError) Error() string {
	return e.err.Error() + "\n[line " + strconv.Itoa(e.Line) + "]"
}

// Cause exposes the wrapped error for github.com/pkg/errors.Cause callers.
func (e *RuntimeError) Cause() error { return e.err }

// Unwrap supports errors.Is/errors.As against the wrapped cause.
func (e *RuntimeError) Unwrap() error { return e.err }
