package vm

import (
	"errors"
	"testing"
)

func buildProgram(t *testing.T) *Program {
	t.Helper()
	p := NewProgram()
	instructions := []Instruction{
		{Op: OpSGet, Operands: []byte{0, 1}},
		{Op: OpAdd, Operands: []byte{1, 2}},
		{Op: OpSqrt, Operands: []byte{1}},
		{Op: OpSMSet, Operands: []byte{1, 0, 3}},
		{Op: OpRet},
	}
	for _, in := range instructions {
		if err := p.Append(in); err != nil {
			t.Fatalf("append %s: %v", in, err)
		}
	}
	return p
}

func TestProgramAppendAndDecode(t *testing.T) {
	p := buildProgram(t)

	decoded, err := p.Instructions()
	if err != nil {
		t.Fatalf("Instructions: %v", err)
	}
	want := []string{"SGET 0 1", "ADD 1 2", "SQRT 1", "SMSET 1 0 3", "RET"}
	if len(decoded) != len(want) {
		t.Fatalf("got %d instructions, want %d", len(decoded), len(want))
	}
	for i, w := range want {
		if decoded[i].String() != w {
			t.Errorf("instruction[%d] = %s, want %s", i, decoded[i], w)
		}
	}
}

func TestProgramAppendValidates(t *testing.T) {
	p := NewProgram()

	err := p.Append(Instruction{Op: OpAdd, Operands: []byte{1}})
	var arityErr *ArityError
	if !errors.As(err, &arityErr) {
		t.Errorf("short ADD: error is %T, want *ArityError", err)
	}

	err = p.Append(Instruction{Op: Opcode(0x42)})
	var unknownErr *UnknownOpcodeError
	if !errors.As(err, &unknownErr) {
		t.Errorf("unassigned opcode: error is %T, want *UnknownOpcodeError", err)
	}

	if len(p.Code) != 0 {
		t.Errorf("failed appends wrote %d bytes", len(p.Code))
	}
}

func TestProgramTruncatedStream(t *testing.T) {
	p := NewProgram()
	p.Code = []byte{byte(OpAdd), 1} // ADD wants two operand bytes

	_, err := p.Instructions()
	var arityErr *ArityError
	if !errors.As(err, &arityErr) {
		t.Fatalf("error is %T, want *ArityError", err)
	}
	if arityErr.Expected != 2 || arityErr.Actual != 1 {
		t.Errorf("arity error = (%d, %d), want (2, 1)", arityErr.Expected, arityErr.Actual)
	}
}

func TestProgramUnknownOpcodeInStream(t *testing.T) {
	p := NewProgram()
	p.Code = []byte{byte(OpRet), 0xFF}

	_, err := p.Instructions()
	var unknownErr *UnknownOpcodeError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("error is %T, want *UnknownOpcodeError", err)
	}
	if unknownErr.Code != 0xFF {
		t.Errorf("error carries 0x%02X, want 0xFF", unknownErr.Code)
	}
}

func TestProgramMarshalRoundTrip(t *testing.T) {
	p := buildProgram(t)

	data, err := MarshalProgram(p)
	if err != nil {
		t.Fatalf("MarshalProgram: %v", err)
	}
	got, err := UnmarshalProgram(data)
	if err != nil {
		t.Fatalf("UnmarshalProgram: %v", err)
	}

	if got.Version != p.Version {
		t.Errorf("version = %d, want %d", got.Version, p.Version)
	}
	if len(got.Code) != len(p.Code) {
		t.Fatalf("code length = %d, want %d", len(got.Code), len(p.Code))
	}
	for i := range p.Code {
		if got.Code[i] != p.Code[i] {
			t.Errorf("code[%d] = 0x%02X, want 0x%02X", i, got.Code[i], p.Code[i])
		}
	}
}

func TestProgramMarshalDeterministic(t *testing.T) {
	p := buildProgram(t)
	a, err := MarshalProgram(p)
	if err != nil {
		t.Fatal(err)
	}
	b, err := MarshalProgram(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Error("canonical encoding is not deterministic")
	}
}

func TestUnmarshalProgramBadMagic(t *testing.T) {
	p := buildProgram(t)
	p.Magic = []byte{'X', 'X', 'X', 'X'}
	data, err := MarshalProgram(p)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := UnmarshalProgram(data); err == nil {
		t.Error("bad magic accepted")
	}
}

func TestUnmarshalProgramBadVersion(t *testing.T) {
	p := buildProgram(t)
	p.Version = 99
	data, err := MarshalProgram(p)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := UnmarshalProgram(data); err == nil {
		t.Error("unsupported version accepted")
	}
}

func TestUnmarshalProgramGarbage(t *testing.T) {
	if _, err := UnmarshalProgram([]byte{0x01, 0x02, 0x03}); err == nil {
		t.Error("garbage bytes accepted")
	}
}
