package vm

import (
	"fmt"
	"sort"
)

// Opcode is the one-byte tag identifying a VM instruction.
// Operands are fixed-arity one-byte register or state-slot indices.
type Opcode byte

const (
	// Arithmetic operations (operands are register indices)
	OpAdd  Opcode = 0x01 // ADD dst, src
	OpSub  Opcode = 0x02 // SUB dst, src
	OpMul  Opcode = 0x03 // MUL dst, src
	OpDiv  Opcode = 0x04 // DIV dst, src
	OpMod  Opcode = 0x05 // MOD dst, src
	OpSqrt Opcode = 0x06 // SQRT reg
	OpExp  Opcode = 0x07 // EXP dst, src

	// Register/local transfer
	OpLoad  Opcode = 0x08 // LOAD reg, local
	OpStore Opcode = 0x09 // STORE local, reg

	// State access
	OpSGet  Opcode = 0x0A // SGET state, reg (state slot into register)
	OpSSet  Opcode = 0x0B // SSET reg, state (register into state slot)
	OpSMGet Opcode = 0x0C // SMGET state, key, reg (map entry into register)
	OpSMSet Opcode = 0x0D // SMSET reg, state, key (register into map entry)

	// Call control
	OpCall Opcode = 0x0E // CALL fn (function index)
	OpRet  Opcode = 0x0F // RET
)

// opcodeInfo provides metadata about each opcode.
type opcodeInfo struct {
	Name  string // human-readable name
	Arity int    // number of operand bytes following the opcode
}

// opcodeInfoTable maps every assigned opcode to its metadata. Decoding with
// any operand count other than Arity is a hard error.
var opcodeInfoTable = map[Opcode]opcodeInfo{
	OpAdd:   {"ADD", 2},
	OpSub:   {"SUB", 2},
	OpMul:   {"MUL", 2},
	OpDiv:   {"DIV", 2},
	OpMod:   {"MOD", 2},
	OpSqrt:  {"SQRT", 1},
	OpExp:   {"EXP", 2},
	OpLoad:  {"LOAD", 2},
	OpStore: {"STORE", 2},
	OpSGet:  {"SGET", 2},
	OpSSet:  {"SSET", 2},
	OpSMGet: {"SMGET", 3},
	OpSMSet: {"SMSET", 3},
	OpCall:  {"CALL", 1},
	OpRet:   {"RET", 0},
}

// String returns the human-readable name of an opcode.
func (op Opcode) String() string {
	if info, ok := opcodeInfoTable[op]; ok {
		return info.Name
	}
	return fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))
}

// Valid reports whether op is an assigned opcode.
func (op Opcode) Valid() bool {
	_, ok := opcodeInfoTable[op]
	return ok
}

// OperandLen returns the number of operand bytes for this opcode, or -1 if
// the opcode is not assigned.
func (op Opcode) OperandLen() int {
	if info, ok := opcodeInfoTable[op]; ok {
		return info.Arity
	}
	return -1
}

// InstructionLen returns the total encoded length (1 + operand bytes), or
// -1 if the opcode is not assigned.
func (op Opcode) InstructionLen() int {
	n := op.OperandLen()
	if n < 0 {
		return -1
	}
	return 1 + n
}

// AllOpcodes returns every assigned opcode in ascending order.
func AllOpcodes() []Opcode {
	opcodes := make([]Opcode, 0, len(opcodeInfoTable))
	for op := range opcodeInfoTable {
		opcodes = append(opcodes, op)
	}
	sort.Slice(opcodes, func(i, j int) bool { return opcodes[i] < opcodes[j] })
	return opcodes
}

// Instruction is a decoded instruction: an opcode and its operand bytes.
// Operand values are opaque indices at this layer; their validity is the
// execution context's responsibility.
type Instruction struct {
	Op       Opcode
	Operands []byte
}

func (in Instruction) String() string {
	if len(in.Operands) == 0 {
		return in.Op.String()
	}
	s := in.Op.String()
	for _, b := range in.Operands {
		s += fmt.Sprintf(" %d", b)
	}
	return s
}

// NewInstruction builds an instruction, validating the operand count
// against the opcode's fixed arity.
func NewInstruction(op Opcode, operands ...byte) (Instruction, error) {
	info, ok := opcodeInfoTable[op]
	if !ok {
		return Instruction{}, &UnknownOpcodeError{Code: byte(op)}
	}
	if len(operands) != info.Arity {
		return Instruction{}, &ArityError{Op: op, Expected: info.Arity, Actual: len(operands)}
	}
	return Instruction{Op: op, Operands: operands}, nil
}

// Decode maps an opcode byte and its operand bytes to an Instruction.
// An unassigned code or a wrong-length operand slice is a typed error;
// operands are never truncated or padded. The operand bytes are copied.
func Decode(code byte, operands []byte) (Instruction, error) {
	op := Opcode(code)
	info, ok := opcodeInfoTable[op]
	if !ok {
		return Instruction{}, &UnknownOpcodeError{Code: code}
	}
	if len(operands) != info.Arity {
		return Instruction{}, &ArityError{Op: op, Expected: info.Arity, Actual: len(operands)}
	}
	in := Instruction{Op: op}
	if info.Arity > 0 {
		in.Operands = make([]byte, info.Arity)
		copy(in.Operands, operands)
	}
	return in, nil
}

// Encode is the total inverse of Decode: it returns the one-byte opcode of
// the instruction. Operand values are carried in the instruction and are
// not re-validated here.
func Encode(in Instruction) byte {
	return byte(in.Op)
}
