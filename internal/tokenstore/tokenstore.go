// Package tokenstore persists the bearer token across process restarts.
//
// It is a pure persistence shim: the token is an opaque string, no shape
// validation and no client-side expiry. Everything that needs the current
// credential (the API transport, the session controller) reads it from here.
package tokenstore

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const tokenFileName = "token"

// Store reads and writes the token file under Dir. The zero value resolves
// Dir lazily via ConfigDir, so `tokenstore.Store{}` is usable as-is.
type Store struct {
	Dir string
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.courseterm).
	if v := strings.TrimSpace(os.Getenv("COURSETERM_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".courseterm"), nil
}

func (s Store) path() (string, error) {
	dir := s.Dir
	if dir == "" {
		d, err := ConfigDir()
		if err != nil {
			return "", err
		}
		dir = d
	}
	return filepath.Join(dir, tokenFileName), nil
}

// Get returns the persisted token, or "" when none is stored.
func (s Store) Get() (string, error) {
	path, err := s.path()
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// Set persists the token. The write is atomic (temp file + rename) so a
// crashed process never leaves a truncated credential behind.
func (s Store) Set(token string) error {
	path, err := s.path()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	return atomicWriteFile(dir, tokenFileName+".*.tmp", path, []byte(token+"\n"), 0o600)
}

// Clear removes the persisted token. Clearing an empty store is not an error.
func (s Store) Clear() error {
	path, err := s.path()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}
