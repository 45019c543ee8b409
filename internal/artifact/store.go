// Package artifact holds the stage artifacts of a movie: where they live and
// whether a stage already produced them.
package artifact

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// ErrNotExist is returned by Store implementations for missing artifacts.
var ErrNotExist = fs.ErrNotExist

// Store is the artifact namespace the pipeline reads and writes through.
type Store interface {
	// Stat returns the size of a regular file, or ErrNotExist.
	Stat(path string) (int64, error)
	Read(path string) ([]byte, error)
	Write(path string, data []byte) error
	// Invalidate removes an artifact; removing a missing artifact is not an error.
	Invalidate(path string) error
	Rename(from, to string) error
	// List returns the regular files directly under dir, sorted by name.
	List(dir string) ([]string, error)
}

// Exists reports whether a regular file is present at path.
func Exists(s Store, path string) bool {
	_, err := s.Stat(path)
	return err == nil
}

// ListWithExt filters List by case-insensitive extension.
func ListWithExt(s Store, dir string, exts ...string) ([]string, error) {
	files, err := s.List(dir)
	if err != nil {
		return nil, err
	}
	return lo.Filter(files, func(p string, _ int) bool {
		ext := strings.ToLower(filepath.Ext(p))
		return lo.ContainsBy(exts, func(e string) bool { return strings.EqualFold(e, ext) })
	}), nil
}

// FSStore is a Store over the local filesystem.
type FSStore struct{}

func NewFSStore() FSStore { return FSStore{} }

func (FSStore) Stat(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if !info.Mode().IsRegular() {
		return 0, &fs.PathError{Op: "stat", Path: path, Err: ErrNotExist}
	}
	return info.Size(), nil
}

func (FSStore) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (FSStore) Write(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (FSStore) Invalidate(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (FSStore) Rename(from, to string) error {
	if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return err
	}
	return os.Rename(from, to)
}

func (FSStore) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// MemStore is an in-memory Store keyed by cleaned path. Safe for concurrent use.
type MemStore struct {
	mu    sync.RWMutex
	files map[string]memFile
}

type memFile struct {
	data []byte
}

func NewMemStore() *MemStore {
	return &MemStore{files: make(map[string]memFile)}
}

func (m *MemStore) Stat(path string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[filepath.Clean(path)]
	if !ok {
		return 0, &fs.PathError{Op: "stat", Path: path, Err: ErrNotExist}
	}
	return int64(len(f.data)), nil
}

func (m *MemStore) Read(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[filepath.Clean(path)]
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: path, Err: ErrNotExist}
	}
	return append([]byte(nil), f.data...), nil
}

func (m *MemStore) Write(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[filepath.Clean(path)] = memFile{data: append([]byte(nil), data...)}
	return nil
}

func (m *MemStore) Invalidate(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, filepath.Clean(path))
	return nil
}

func (m *MemStore) Rename(from, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[filepath.Clean(from)]
	if !ok {
		return &fs.PathError{Op: "rename", Path: from, Err: ErrNotExist}
	}
	delete(m.files, filepath.Clean(from))
	m.files[filepath.Clean(to)] = f
	return nil
}

func (m *MemStore) List(dir string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	dir = filepath.Clean(dir)
	var files []string
	for p := range m.files {
		if filepath.Dir(p) == dir {
			files = append(files, p)
		}
	}
	sort.Strings(files)
	return files, nil
}

// Paths returns every stored path, sorted.
func (m *MemStore) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := lo.Keys(m.files)
	sort.Strings(paths)
	return paths
}
