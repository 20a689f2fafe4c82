// Package adapter contains the infrastructure adapters of the splice engine:
// class file codec, search path, artifact fetching and lock file storage.
package adapter

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/klauspost/compress/zip"

	m "splice.dev/pkg/splice/internal/model"
)

// ClassSource resolves class names to their raw bytes. Implementations must
// be safe for concurrent use once initialization has finished.
type ClassSource interface {
	// Open returns the bytes of the first root holding className. Missing
	// classes wrap model.ErrResourceNotFound.
	Open(className string) ([]byte, error)

	// Classes lists the internal names of every class reachable through the
	// roots. A class shadowed by an earlier root is listed once.
	Classes() ([]string, error)

	// Roots returns the roots in lookup order.
	Roots() []m.Path
}

// SearchPathAdapter is a ClassSource that can grow until it is frozen.
type SearchPathAdapter interface {
	ClassSource

	// Extend appends a directory or jar root.
	Extend(path m.Path) error

	// Freeze ends the initialization phase; later Extend calls fail.
	Freeze()
}

// SearchPath is an ordered list of directory and jar roots. It is appended
// to during initialization only; Freeze ends that phase.
type SearchPath struct {
	mu     sync.RWMutex
	roots  []searchRoot
	frozen bool
}

type searchRoot interface {
	path() m.Path
	open(resource string) ([]byte, error)
	list() ([]string, error)
	close() error
}

// NewSearchPath constructs a SearchPath over the given roots.
func NewSearchPath(paths ...m.Path) (*SearchPath, error) {
	s := &SearchPath{}

	for _, p := range paths {
		if err := s.Extend(p); err != nil {
			_ = s.Close()
			return nil, err
		}
	}

	return s, nil
}

// Extend appends a directory or jar root. It fails with
// model.ErrSearchPathFrozen once Freeze has been called.
func (s *SearchPath) Extend(path m.Path) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frozen {
		return fmt.Errorf("%w: cannot add %s", m.ErrSearchPathFrozen, path)
	}

	for _, r := range s.roots {
		if r.path() == path {
			slog.Debug("search path root already present", "path", path)
			return nil
		}
	}

	info, err := os.Stat(string(path))
	if err != nil {
		return fmt.Errorf("search path root %s: %w", path, err)
	}

	var root searchRoot

	if info.IsDir() {
		root = dirRoot{dir: path}
	} else {
		root, err = openJarRoot(path)
		if err != nil {
			return err
		}
	}

	s.roots = append(s.roots, root)
	slog.Debug("search path extended", "path", path, "roots", len(s.roots))

	return nil
}

// Freeze ends the initialization phase.
func (s *SearchPath) Freeze() {
	s.mu.Lock()
	s.frozen = true
	s.mu.Unlock()
}

// Frozen reports whether Freeze has been called.
func (s *SearchPath) Frozen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.frozen
}

// Open returns the bytes for className from the first root that has them.
func (s *SearchPath) Open(className string) ([]byte, error) {
	resource := m.ClassResource(className)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.roots {
		data, err := r.open(resource)
		if err == nil {
			return data, nil
		}

		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s from %s: %w", resource, r.path(), err)
		}
	}

	return nil, fmt.Errorf("%w: %s", m.ErrResourceNotFound, m.InternalName(className))
}

// Classes lists every class name across the roots, in root order.
func (s *SearchPath) Classes() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := map[string]bool{}

	var out []string

	for _, r := range s.roots {
		names, err := r.list()
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", r.path(), err)
		}

		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}

	return out, nil
}

// Roots returns the roots in lookup order.
func (s *SearchPath) Roots() []m.Path {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]m.Path, len(s.roots))
	for i, r := range s.roots {
		out[i] = r.path()
	}

	return out
}

// Close releases open jar files.
func (s *SearchPath) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, r := range s.roots {
		errs = append(errs, r.close())
	}

	return errors.Join(errs...)
}

type dirRoot struct {
	dir m.Path
}

func (d dirRoot) path() m.Path { return d.dir }

func (d dirRoot) open(resource string) ([]byte, error) {
	// #nosec G304 - resource is derived from a class name under a configured root
	return os.ReadFile(filepath.Join(string(d.dir), filepath.FromSlash(resource)))
}

func (d dirRoot) list() ([]string, error) {
	var names []string

	root := string(d.dir)

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() || !strings.HasSuffix(path, ".class") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		names = append(names, m.InternalName(filepath.ToSlash(rel)))

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(names)

	return names, nil
}

func (d dirRoot) close() error { return nil }

type jarRoot struct {
	jar    m.Path
	reader *zip.ReadCloser
	index  map[string]*zip.File
}

func openJarRoot(path m.Path) (*jarRoot, error) {
	r, err := zip.OpenReader(string(path))
	if err != nil {
		return nil, fmt.Errorf("open jar %s: %w", path, err)
	}

	index := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		if _, dup := index[f.Name]; !dup {
			index[f.Name] = f
		}
	}

	return &jarRoot{jar: path, reader: r, index: index}, nil
}

func (j *jarRoot) path() m.Path { return j.jar }

func (j *jarRoot) open(resource string) ([]byte, error) {
	f, ok := j.index[resource]
	if !ok {
		return nil, fs.ErrNotExist
	}

	rc, err := f.Open()
	if err != nil {
		return nil, err
	}

	defer func() { _ = rc.Close() }()

	return io.ReadAll(rc)
}

func (j *jarRoot) list() ([]string, error) {
	var names []string

	for _, f := range j.reader.File {
		if !strings.HasSuffix(f.Name, ".class") || strings.HasPrefix(f.Name, "META-INF/") {
			continue
		}

		if f.Name == "module-info.class" {
			continue
		}

		names = append(names, m.InternalName(f.Name))
	}

	sort.Strings(names)

	return names, nil
}

func (j *jarRoot) close() error { return j.reader.Close() }

// HashFile returns the hex SHA-256 of the file at path.
func HashFile(path m.Path) (string, error) {
	f, err := os.Open(string(path))
	if err != nil {
		return "", err
	}

	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// WriteClassFile stores data under dir at the class's resource path.
func WriteClassFile(dir m.Path, className string, data []byte) (m.Path, error) {
	target := filepath.Join(string(dir), filepath.FromSlash(m.ClassResource(className)))

	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return "", err
	}

	// #nosec G306 - class files are meant to be readable by the runtime
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", err
	}

	return m.Path(target), nil
}
