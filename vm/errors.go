package vm

import "fmt"

// ---------------------------------------------------------------------------
// Recoverable conditions of the codec and the execution context
// ---------------------------------------------------------------------------

// UnknownOpcodeError reports a byte outside the assigned opcode range.
type UnknownOpcodeError struct {
	Code byte
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode: 0x%02X", e.Code)
}

// ArityError reports an operand slice whose length does not match the
// instruction's fixed arity.
type ArityError struct {
	Op       Opcode
	Expected int
	Actual   int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s: operand length mismatch: expected %d, got %d", e.Op, e.Expected, e.Actual)
}

// UnknownStateKeyError reports a read of a state key that was never set.
type UnknownStateKeyError struct {
	Key string
}

func (e *UnknownStateKeyError) Error() string {
	return fmt.Sprintf("unknown state key: %s", e.Key)
}

// OutOfBoundsError reports a register index at or past the end of the
// register file.
type OutOfBoundsError struct {
	Index int
	Len   int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("register index out of bounds: %d (size: %d)", e.Index, e.Len)
}

// TypeMismatchError reports a value of the wrong kind for a slot. Reserved:
// nothing raises it yet, but a type-checked SetState variant would.
type TypeMismatchError struct {
	Key      string
	Expected ValueKind
	Actual   ValueKind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch for %s: expected %s, got %s", e.Key, e.Expected, e.Actual)
}
