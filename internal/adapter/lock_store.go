package adapter

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	m "splice.dev/pkg/splice/internal/model"
)

// LockFileVersion is the format version written by TOMLLockStore.
const LockFileVersion = 1

// LockStore persists the resolved artifact set.
type LockStore interface {
	// Load reads the lock file; a missing file yields an empty lock.
	Load(path m.Path) (m.LockFile, error)
	// Save writes the lock file, creating parent directories.
	Save(path m.Path, lock m.LockFile) error
}

// TOMLLockStore stores lock files as TOML.
type TOMLLockStore struct{}

// NewTOMLLockStore constructs a TOMLLockStore.
func NewTOMLLockStore() *TOMLLockStore {
	return &TOMLLockStore{}
}

// Load decodes the lock file at path.
func (s *TOMLLockStore) Load(path m.Path) (m.LockFile, error) {
	var lock m.LockFile

	_, err := toml.DecodeFile(string(path), &lock)
	if errors.Is(err, fs.ErrNotExist) {
		return m.LockFile{Version: LockFileVersion}, nil
	}

	if err != nil {
		return m.LockFile{}, fmt.Errorf("decode lock file %s: %w", path, err)
	}

	if lock.Version > LockFileVersion {
		return m.LockFile{}, fmt.Errorf("lock file %s: unsupported version %d", path, lock.Version)
	}

	return lock, nil
}

// Save encodes lock to path.
func (s *TOMLLockStore) Save(path m.Path, lock m.LockFile) error {
	if lock.Version == 0 {
		lock.Version = LockFileVersion
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(lock); err != nil {
		return fmt.Errorf("encode lock file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(string(path)), 0o750); err != nil {
		return err
	}

	return os.WriteFile(string(path), buf.Bytes(), 0o600)
}
