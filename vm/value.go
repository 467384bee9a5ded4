package vm

import (
	"bytes"
	"fmt"
	"math/big"
)

// ---------------------------------------------------------------------------
// Runtime values
// ---------------------------------------------------------------------------

// Uint128 is an unsigned 128-bit integer, the widest numeric type of the
// language. It is a fixed-width pair of words so values stay comparable and
// copyable; math/big is only used at the string boundary.
type Uint128 struct {
	Hi, Lo uint64
}

// Uint128From64 widens a uint64.
func Uint128From64(v uint64) Uint128 {
	return Uint128{Lo: v}
}

// Uint128FromBig converts a big.Int. Reports false if n is negative or does
// not fit in 128 bits.
func Uint128FromBig(n *big.Int) (Uint128, bool) {
	if n.Sign() < 0 || n.BitLen() > 128 {
		return Uint128{}, false
	}
	var u Uint128
	u.Lo = n.Uint64()
	u.Hi = new(big.Int).Rsh(n, 64).Uint64()
	return u, true
}

// ParseUint128 parses a decimal string into the 128-bit range.
func ParseUint128(s string) (Uint128, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Uint128{}, fmt.Errorf("invalid u128 literal %q", s)
	}
	u, ok := Uint128FromBig(n)
	if !ok {
		return Uint128{}, fmt.Errorf("u128 literal %q out of range", s)
	}
	return u, nil
}

// Big returns the value as a big.Int.
func (u Uint128) Big() *big.Int {
	n := new(big.Int).SetUint64(u.Hi)
	n.Lsh(n, 64)
	return n.Or(n, new(big.Int).SetUint64(u.Lo))
}

// IsZero reports whether the value is zero.
func (u Uint128) IsZero() bool {
	return u.Hi == 0 && u.Lo == 0
}

func (u Uint128) String() string {
	return u.Big().String()
}

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	KindUint8 ValueKind = iota
	KindUint128
	KindString
	KindBool
	KindByteArray
)

func (k ValueKind) String() string {
	switch k {
	case KindUint8:
		return "uint8"
	case KindUint128:
		return "uint128"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindByteArray:
		return "bytearray"
	default:
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
}

// Value is a tagged union over the runtime types of the language. The same
// representation serves persistent state values and register values.
type Value struct {
	kind  ValueKind
	u8    uint8
	u128  Uint128
	str   string
	b     bool
	bytes []byte
}

// Uint8Value wraps a uint8.
func Uint8Value(v uint8) Value {
	return Value{kind: KindUint8, u8: v}
}

// Uint128Value wraps a Uint128.
func Uint128Value(v Uint128) Value {
	return Value{kind: KindUint128, u128: v}
}

// StringValue wraps a string.
func StringValue(v string) Value {
	return Value{kind: KindString, str: v}
}

// BoolValue wraps a bool.
func BoolValue(v bool) Value {
	return Value{kind: KindBool, b: v}
}

// ByteArrayValue wraps a byte slice. The slice is not copied.
func ByteArrayValue(v []byte) Value {
	return Value{kind: KindByteArray, bytes: v}
}

// Kind returns the variant tag.
func (v Value) Kind() ValueKind {
	return v.kind
}

// AsUint8 returns the uint8 payload, reporting false for other kinds.
func (v Value) AsUint8() (uint8, bool) {
	return v.u8, v.kind == KindUint8
}

// AsUint128 returns the Uint128 payload, reporting false for other kinds.
func (v Value) AsUint128() (Uint128, bool) {
	return v.u128, v.kind == KindUint128
}

// AsString returns the string payload, reporting false for other kinds.
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

// AsBool returns the bool payload, reporting false for other kinds.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsByteArray returns the byte slice payload, reporting false for other
// kinds.
func (v Value) AsByteArray() ([]byte, bool) {
	return v.bytes, v.kind == KindByteArray
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindUint8:
		return v.u8 == other.u8
	case KindUint128:
		return v.u128 == other.u128
	case KindString:
		return v.str == other.str
	case KindBool:
		return v.b == other.b
	case KindByteArray:
		return bytes.Equal(v.bytes, other.bytes)
	}
	return false
}

func (v Value) String() string {
	switch v.kind {
	case KindUint8:
		return fmt.Sprintf("uint8(%d)", v.u8)
	case KindUint128:
		return fmt.Sprintf("uint128(%s)", v.u128)
	case KindString:
		return fmt.Sprintf("string(%q)", v.str)
	case KindBool:
		return fmt.Sprintf("bool(%t)", v.b)
	case KindByteArray:
		return fmt.Sprintf("bytearray(%x)", v.bytes)
	default:
		return fmt.Sprintf("Value(%d)", int(v.kind))
	}
}
