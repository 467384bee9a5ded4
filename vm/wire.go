package vm

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ProgramVersion is the current program container format version.
// Increment when making incompatible changes to the format.
const ProgramVersion uint16 = 1

// ProgramMagic tags serialized programs: "SEBC" (se ByteCode).
var ProgramMagic = []byte{'S', 'E', 'B', 'C'}

// cborEncMode uses canonical options for deterministic encoding.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("vm: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Program is the serializable container for an instruction stream. The
// code generator that lowers the AST emits into a Program; the codec in
// opcodes.go remains the single authority on instruction shape.
type Program struct {
	Magic   []byte `cbor:"magic"`
	Version uint16 `cbor:"version"`
	Code    []byte `cbor:"code"`
}

// NewProgram creates an empty program with the current format version.
func NewProgram() *Program {
	return &Program{
		Magic:   append([]byte(nil), ProgramMagic...),
		Version: ProgramVersion,
	}
}

// Append encodes an instruction onto the code stream after validating its
// operand count against the opcode's arity.
func (p *Program) Append(in Instruction) error {
	info, ok := opcodeInfoTable[in.Op]
	if !ok {
		return &UnknownOpcodeError{Code: byte(in.Op)}
	}
	if len(in.Operands) != info.Arity {
		return &ArityError{Op: in.Op, Expected: info.Arity, Actual: len(in.Operands)}
	}
	p.Code = append(p.Code, Encode(in))
	p.Code = append(p.Code, in.Operands...)
	return nil
}

// Instructions decodes and validates the whole code stream. A truncated
// instruction surfaces as the codec's arity error; an unassigned opcode
// byte surfaces as an unknown-opcode error.
func (p *Program) Instructions() ([]Instruction, error) {
	var out []Instruction
	for i := 0; i < len(p.Code); {
		code := p.Code[i]
		n := Opcode(code).OperandLen()
		if n < 0 {
			return nil, &UnknownOpcodeError{Code: code}
		}
		end := i + 1 + n
		if end > len(p.Code) {
			return nil, &ArityError{Op: Opcode(code), Expected: n, Actual: len(p.Code) - i - 1}
		}
		in, err := Decode(code, p.Code[i+1:end])
		if err != nil {
			return nil, err
		}
		out = append(out, in)
		i = end
	}
	return out, nil
}

// MarshalProgram serializes a Program to CBOR bytes.
func MarshalProgram(p *Program) ([]byte, error) {
	return cborEncMode.Marshal(p)
}

// UnmarshalProgram deserializes a Program from CBOR bytes, rejecting a
// wrong magic tag or an unsupported format version.
func UnmarshalProgram(data []byte) (*Program, error) {
	var p Program
	if err := cbor.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("vm: unmarshal program: %w", err)
	}
	if !bytes.Equal(p.Magic, ProgramMagic) {
		return nil, fmt.Errorf("vm: bad program magic %q", p.Magic)
	}
	if p.Version != ProgramVersion {
		return nil, fmt.Errorf("vm: unsupported program version %d", p.Version)
	}
	return &p, nil
}
