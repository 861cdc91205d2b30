// Package testutil holds filesystem fixtures shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// FaultyFs wraps an afero.Fs and fails Open for configured directories
type FaultyFs struct {
	afero.Fs

	mu     sync.Mutex
	faults map[string]error
	opened []string
}

// NewFaultyFs wraps base
func NewFaultyFs(base afero.Fs) *FaultyFs {
	return &FaultyFs{Fs: base, faults: make(map[string]error)}
}

// FailOpen makes every Open of name return err
func (f *FaultyFs) FailOpen(name string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults[filepath.Clean(name)] = err
}

// Open implements afero.Fs
func (f *FaultyFs) Open(name string) (afero.File, error) {
	f.mu.Lock()
	err := f.faults[filepath.Clean(name)]
	f.opened = append(f.opened, filepath.Clean(name))
	f.mu.Unlock()

	if err != nil {
		return nil, &os.PathError{Op: "open", Path: name, Err: err}
	}
	return f.Fs.Open(name)
}

// Opened returns every path passed to Open so far
func (f *FaultyFs) Opened() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.opened...)
}

// WriteTree creates files (slash-separated, relative to root) with the given
// contents. Parent directories are created as needed.
func WriteTree(t testing.TB, fs afero.Fs, root string, files map[string]string) {
	t.Helper()

	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, fs.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, afero.WriteFile(fs, full, []byte(content), 0o644))
	}
}

// ScenarioFiles is the folder1/folder2/folder3 layout used by end-to-end tests
func ScenarioFiles() map[string]string {
	return map[string]string{
		"folder1/a.txt": "",
		"folder1/a.md":  "",
		"folder2/b.txt": "",
		"folder3/c.txt": "",
	}
}
