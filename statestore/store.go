// Package statestore persists named state values in SQLite so they outlive
// a single execution. An ExecutionContext is seeded from the store before a
// run and its state snapshot written back after.
package statestore

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/sealang/se/vm"

	_ "github.com/tliron/commonlog/simple"
	_ "modernc.org/sqlite"
)

var log = commonlog.GetLogger("se.statestore")

// ErrNotFound indicates the requested state key doesn't exist.
var ErrNotFound = errors.New("state key not found")

// Store handles SQLite storage for state values. Single-writer: all
// mutation goes through one mutex, matching the execution model where only
// one logical program run owns the state at a time.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens (creating if needed) the state database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating state directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		name TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		value TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	log.Infof("opened state database %s", path)
	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Put upserts a state value.
func (s *Store) Put(name string, v vm.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kind, text, err := encodeValue(v)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(
		"INSERT OR REPLACE INTO state (name, kind, value) VALUES (?, ?, ?)",
		name, kind, text,
	); err != nil {
		return fmt.Errorf("saving state %s: %w", name, err)
	}
	log.Debugf("put %s = %s", name, v)
	return nil
}

// Get retrieves a state value, or ErrNotFound.
func (s *Store) Get(name string) (vm.Value, error) {
	var kind, text string
	err := s.db.QueryRow("SELECT kind, value FROM state WHERE name = ?", name).Scan(&kind, &text)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return vm.Value{}, ErrNotFound
		}
		return vm.Value{}, fmt.Errorf("querying state %s: %w", name, err)
	}
	return decodeValue(kind, text)
}

// LoadAll returns every stored state value.
func (s *Store) LoadAll() (map[string]vm.Value, error) {
	rows, err := s.db.Query("SELECT name, kind, value FROM state")
	if err != nil {
		return nil, fmt.Errorf("querying state: %w", err)
	}
	defer rows.Close()

	state := make(map[string]vm.Value)
	for rows.Next() {
		var name, kind, text string
		if err := rows.Scan(&name, &kind, &text); err != nil {
			return nil, fmt.Errorf("scanning state row: %w", err)
		}
		v, err := decodeValue(kind, text)
		if err != nil {
			return nil, fmt.Errorf("state %s: %w", name, err)
		}
		state[name] = v
	}
	return state, rows.Err()
}

// Seed builds an execution context from the stored state.
func (s *Store) Seed() (*vm.ExecutionContext, error) {
	state, err := s.LoadAll()
	if err != nil {
		return nil, err
	}
	log.Infof("seeded context with %d state values", len(state))
	return vm.NewContextWithState(state), nil
}

// Snapshot writes a context's state back to the store in one transaction.
func (s *Store) Snapshot(ctx *vm.ExecutionContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning snapshot: %w", err)
	}
	for name, v := range ctx.StateSnapshot() {
		kind, text, err := encodeValue(v)
		if err != nil {
			tx.Rollback()
			return err
		}
		if _, err := tx.Exec(
			"INSERT OR REPLACE INTO state (name, kind, value) VALUES (?, ?, ?)",
			name, kind, text,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("saving state %s: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	log.Infof("snapshot wrote %d state values", ctx.StateLen())
	return nil
}

// encodeValue maps a Value to its kind tag and text form.
func encodeValue(v vm.Value) (string, string, error) {
	switch v.Kind() {
	case vm.KindUint8:
		u, _ := v.AsUint8()
		return "u8", strconv.Itoa(int(u)), nil
	case vm.KindUint128:
		u, _ := v.AsUint128()
		return "u128", u.String(), nil
	case vm.KindString:
		s, _ := v.AsString()
		return "string", s, nil
	case vm.KindBool:
		b, _ := v.AsBool()
		return "bool", strconv.FormatBool(b), nil
	case vm.KindByteArray:
		b, _ := v.AsByteArray()
		return "bytes", hex.EncodeToString(b), nil
	default:
		return "", "", fmt.Errorf("unsupported value kind %s", v.Kind())
	}
}

// decodeValue is the inverse of encodeValue.
func decodeValue(kind, text string) (vm.Value, error) {
	switch kind {
	case "u8":
		n, err := strconv.ParseUint(text, 10, 8)
		if err != nil {
			return vm.Value{}, fmt.Errorf("invalid u8 %q: %w", text, err)
		}
		return vm.Uint8Value(uint8(n)), nil
	case "u128":
		u, err := vm.ParseUint128(text)
		if err != nil {
			return vm.Value{}, err
		}
		return vm.Uint128Value(u), nil
	case "string":
		return vm.StringValue(text), nil
	case "bool":
		b, err := strconv.ParseBool(text)
		if err != nil {
			return vm.Value{}, fmt.Errorf("invalid bool %q: %w", text, err)
		}
		return vm.BoolValue(b), nil
	case "bytes":
		b, err := hex.DecodeString(text)
		if err != nil {
			return vm.Value{}, fmt.Errorf("invalid bytes %q: %w", text, err)
		}
		return vm.ByteArrayValue(b), nil
	default:
		return vm.Value{}, fmt.Errorf("unknown value kind %q", kind)
	}
}
