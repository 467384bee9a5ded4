package vm

import (
	"errors"
	"testing"
)

func TestStateSetAndGet(t *testing.T) {
	ctx := NewContext()

	ctx.SetState("creator", StringValue("0xabc"))
	v, err := ctx.GetState("creator")
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if s, ok := v.AsString(); !ok || s != "0xabc" {
		t.Errorf("creator = %v, want string(0xabc)", v)
	}
}

func TestStateOverwrite(t *testing.T) {
	ctx := NewContext()

	ctx.SetState("x", Uint128Value(Uint128From64(1)))
	// Overwrites in place with no type check against the previous value.
	ctx.SetState("x", BoolValue(true))

	v, err := ctx.GetState("x")
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if b, ok := v.AsBool(); !ok || !b {
		t.Errorf("x = %v, want bool(true)", v)
	}
	if ctx.StateLen() != 1 {
		t.Errorf("state has %d keys, want 1", ctx.StateLen())
	}
}

func TestStateUnknownKey(t *testing.T) {
	ctx := NewContext()

	_, err := ctx.GetState("missing")
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	var keyErr *UnknownStateKeyError
	if !errors.As(err, &keyErr) {
		t.Fatalf("error is %T, want *UnknownStateKeyError", err)
	}
	if keyErr.Key != "missing" {
		t.Errorf("error carries key %q", keyErr.Key)
	}
}

func TestContextSeededState(t *testing.T) {
	ctx := NewContextWithState(map[string]Value{
		"supply": Uint128Value(Uint128From64(1000)),
	})
	v, err := ctx.GetState("supply")
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if u, ok := v.AsUint128(); !ok || u.Lo != 1000 {
		t.Errorf("supply = %v, want uint128(1000)", v)
	}
}

func TestAllocateIndices(t *testing.T) {
	ctx := NewContext()

	if idx := ctx.Allocate(Uint8Value(1)); idx != 0 {
		t.Errorf("first allocate = %d, want 0", idx)
	}
	if idx := ctx.Allocate(Uint8Value(2)); idx != 1 {
		t.Errorf("second allocate = %d, want 1", idx)
	}
	if ctx.RegisterLen() != 2 {
		t.Errorf("register file size = %d, want 2", ctx.RegisterLen())
	}
}

func TestDeallocateShiftsIndices(t *testing.T) {
	ctx := NewContext()
	ctx.Allocate(Uint8Value(10))
	ctx.Allocate(Uint8Value(20))
	ctx.Allocate(Uint8Value(30))

	if err := ctx.Deallocate(0); err != nil {
		t.Fatalf("Deallocate: %v", err)
	}

	// Every register above the removed index shifts down by one: index 0
	// now reads the value that was at index 1.
	v, err := ctx.Register(0)
	if err != nil {
		t.Fatalf("Register(0): %v", err)
	}
	if u, _ := v.AsUint8(); u != 20 {
		t.Errorf("register 0 = %v, want uint8(20)", v)
	}
	v, _ = ctx.Register(1)
	if u, _ := v.AsUint8(); u != 30 {
		t.Errorf("register 1 = %v, want uint8(30)", v)
	}
	if ctx.RegisterLen() != 2 {
		t.Errorf("register file size = %d, want 2", ctx.RegisterLen())
	}
}

func TestDeallocateOutOfBounds(t *testing.T) {
	ctx := NewContext()
	ctx.Allocate(Uint8Value(1))

	err := ctx.Deallocate(1)
	if err == nil {
		t.Fatal("expected error for index past the end")
	}
	var oobErr *OutOfBoundsError
	if !errors.As(err, &oobErr) {
		t.Fatalf("error is %T, want *OutOfBoundsError", err)
	}
	if oobErr.Index != 1 || oobErr.Len != 1 {
		t.Errorf("error = (%d, %d), want (1, 1)", oobErr.Index, oobErr.Len)
	}
}

func TestAllocateAfterDeallocateReusesTopIndex(t *testing.T) {
	ctx := NewContext()
	ctx.Allocate(Uint8Value(1))
	ctx.Allocate(Uint8Value(2))
	if err := ctx.Deallocate(0); err != nil {
		t.Fatal(err)
	}
	if idx := ctx.Allocate(Uint8Value(3)); idx != 1 {
		t.Errorf("allocate after deallocate = %d, want 1", idx)
	}
}

func TestClearEmptiesRegistersOnly(t *testing.T) {
	ctx := NewContext()
	ctx.SetState("keep", BoolValue(true))
	ctx.Allocate(Uint8Value(1))
	ctx.Allocate(Uint8Value(2))

	ctx.Clear()

	if ctx.RegisterLen() != 0 {
		t.Errorf("register file size = %d, want 0", ctx.RegisterLen())
	}
	if _, err := ctx.GetState("keep"); err != nil {
		t.Errorf("state lost after Clear: %v", err)
	}
}

func TestStateSnapshotIsACopy(t *testing.T) {
	ctx := NewContext()
	ctx.SetState("x", Uint8Value(1))

	snap := ctx.StateSnapshot()
	snap["x"] = Uint8Value(99)

	v, _ := ctx.GetState("x")
	if u, _ := v.AsUint8(); u != 1 {
		t.Errorf("mutating the snapshot changed the context")
	}
}
