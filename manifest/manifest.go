// Package manifest handles se.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/sealang/se/compiler"
)

// Manifest represents an se.toml project configuration.
type Manifest struct {
	Project Project     `toml:"project"`
	Source  Source      `toml:"source"`
	State   StateConfig `toml:"state"`

	// Dir is the directory containing the se.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Source configures source file locations. Dir is the working directory
// every $include resolves against.
type Source struct {
	Dir   string `toml:"dir"`
	Entry string `toml:"entry"`
}

// StateConfig configures the persistent state database.
type StateConfig struct {
	Path string `toml:"path"`
}

// Load parses an se.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "se.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if m.Source.Dir == "" {
		m.Source.Dir = "src"
	}
	if m.Source.Entry == "" {
		m.Source.Entry = "main.se"
	}
	if m.State.Path == "" {
		m.State.Path = filepath.Join(".se", "state.db")
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find an se.toml file, then loads
// and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "se.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// WorkingDir returns the absolute path includes resolve against.
func (m *Manifest) WorkingDir() string {
	return filepath.Join(m.Dir, m.Source.Dir)
}

// EntryPath returns the absolute path of the entry source file.
func (m *Manifest) EntryPath() string {
	return filepath.Join(m.WorkingDir(), m.Source.Entry)
}

// StatePath returns the absolute path of the state database.
func (m *Manifest) StatePath() string {
	return filepath.Join(m.Dir, m.State.Path)
}

// ParseEntry reads the entry source file and parses it, resolving includes
// against the manifest's working directory.
func (m *Manifest) ParseEntry() (*compiler.Root, error) {
	src, err := os.ReadFile(m.EntryPath())
	if err != nil {
		return nil, fmt.Errorf("cannot read entry %s: %w", m.EntryPath(), err)
	}
	return compiler.ParseSource(string(src), m.WorkingDir())
}
