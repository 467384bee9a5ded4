// Package vm holds the execution core of the se language: the instruction
// codec and the execution context that instructions run against.
//
// The bytecode format is a flat byte stream: one opcode byte followed by
// exactly that instruction's fixed operand-byte count. Each operand is a
// single byte interpreted as a register or state-slot index. The codec is
// strict in both directions: decoding an unassigned opcode or a wrong-sized
// operand slice is a typed error, never a silent truncation.
//
// The execution context carries two value stores:
//
//   - State: persistent, name-keyed values that outlive a single execution.
//     State keys are never deleted; values are overwritten in place.
//
//   - Registers: index-keyed, call-scoped values allocated and deallocated
//     explicitly. Deallocation shifts every subsequent register's index
//     down by one; this matches the original bytecode semantics and is
//     relied upon by existing programs.
//
// The code generator that lowers the compiler's AST into an instruction
// stream is a future consumer of this package; Program in wire.go is the
// container it will emit into.
package vm
