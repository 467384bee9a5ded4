package statestore

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/sealang/se/vm"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutAndGet(t *testing.T) {
	s := openTestStore(t)

	u128, err := vm.ParseUint128("340282366920938463463374607431768211455")
	if err != nil {
		t.Fatal(err)
	}
	values := map[string]vm.Value{
		"decimals": vm.Uint8Value(12),
		"supply":   vm.Uint128Value(u128),
		"creator":  vm.StringValue("0xabc"),
		"paused":   vm.BoolValue(true),
		"seed":     vm.ByteArrayValue([]byte{0x00, 0xFF, 0x7F}),
	}

	for name, v := range values {
		if err := s.Put(name, v); err != nil {
			t.Fatalf("Put %s: %v", name, err)
		}
	}
	for name, want := range values {
		got, err := s.Get(name)
		if err != nil {
			t.Errorf("Get %s: %v", name, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("Get %s = %v, want %v", name, got, want)
		}
	}
}

func TestPutOverwrites(t *testing.T) {
	s := openTestStore(t)

	if err := s.Put("x", vm.Uint8Value(1)); err != nil {
		t.Fatal(err)
	}
	if err := s.Put("x", vm.StringValue("replaced")); err != nil {
		t.Fatal(err)
	}

	v, err := s.Get("x")
	if err != nil {
		t.Fatal(err)
	}
	if str, ok := v.AsString(); !ok || str != "replaced" {
		t.Errorf("x = %v, want string(replaced)", v)
	}
}

func TestGetNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestLoadAll(t *testing.T) {
	s := openTestStore(t)

	if err := s.Put("a", vm.Uint8Value(1)); err != nil {
		t.Fatal(err)
	}
	if err := s.Put("b", vm.BoolValue(false)); err != nil {
		t.Fatal(err)
	}

	state, err := s.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(state) != 2 {
		t.Fatalf("got %d values, want 2", len(state))
	}
	if u, ok := state["a"].AsUint8(); !ok || u != 1 {
		t.Errorf("a = %v", state["a"])
	}
	if b, ok := state["b"].AsBool(); !ok || b {
		t.Errorf("b = %v", state["b"])
	}
}

func TestSeedAndSnapshot(t *testing.T) {
	s := openTestStore(t)

	if err := s.Put("supply", vm.Uint128Value(vm.Uint128From64(1000))); err != nil {
		t.Fatal(err)
	}

	ctx, err := s.Seed()
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	v, err := ctx.GetState("supply")
	if err != nil {
		t.Fatalf("seeded context missing supply: %v", err)
	}
	if u, ok := v.AsUint128(); !ok || u.Lo != 1000 {
		t.Errorf("supply = %v, want uint128(1000)", v)
	}

	ctx.SetState("supply", vm.Uint128Value(vm.Uint128From64(900)))
	ctx.SetState("paused", vm.BoolValue(true))
	if err := s.Snapshot(ctx); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	got, err := s.Get("supply")
	if err != nil {
		t.Fatal(err)
	}
	if u, _ := got.AsUint128(); u.Lo != 900 {
		t.Errorf("supply after snapshot = %v, want uint128(900)", got)
	}
	got, err = s.Get("paused")
	if err != nil {
		t.Fatal(err)
	}
	if b, _ := got.AsBool(); !b {
		t.Errorf("paused after snapshot = %v, want bool(true)", got)
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".se", "deep", "state.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if err := s.Put("x", vm.Uint8Value(1)); err != nil {
		t.Fatalf("Put: %v", err)
	}
}

func TestReopenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put("kept", vm.StringValue("value")); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	v, err := s.Get("kept")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if str, _ := v.AsString(); str != "value" {
		t.Errorf("kept = %v", v)
	}
}
