package scanner

import (
	"context"
	stderrors "errors"
	"io"
	"io/fs"
	"iter"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/cheerioskun/globninja/internal/errors"
	"github.com/spf13/afero"
)

// UnlimitedDepth disables the depth limit
const UnlimitedDepth = -1

// FileEntry is a file discovered by a walk
type FileEntry struct {
	Path string      // Root joined with Rel, using OS separators
	Rel  string      // Slash-separated path relative to the walk root
	Info os.FileInfo // Info as reported by the directory listing
}

// WalkFunc is called for every file. Returning an error stops the walk and
// the error is returned from Walk unchanged.
type WalkFunc func(entry FileEntry) error

// ScanSummary holds counts from a one-level scan
type ScanSummary struct {
	Root      string `json:"root"`
	FileCount int    `json:"file_count"`
	DirCount  int    `json:"dir_count"`
}

// TreeScanner walks a directory tree on an afero filesystem
type TreeScanner struct {
	fs                 afero.Fs
	maxDepth           int
	caseInsensitive    bool
	ignoreInaccessible bool
	skipDir            func(rel string) bool
	logger             *log.Logger
}

// NewTreeScanner creates a new TreeScanner with the given filesystem
func NewTreeScanner(fs afero.Fs) *TreeScanner {
	return &TreeScanner{
		fs:                 fs,
		maxDepth:           UnlimitedDepth,
		caseInsensitive:    true,
		ignoreInaccessible: true,
		logger:             log.New(io.Discard),
	}
}

// SetMaxDepth sets the maximum scanning depth. Files directly under the root
// are at depth 0.
func (ts *TreeScanner) SetMaxDepth(depth int) {
	ts.maxDepth = depth
}

// SetCaseInsensitive controls how the root path is resolved
func (ts *TreeScanner) SetCaseInsensitive(caseInsensitive bool) {
	ts.caseInsensitive = caseInsensitive
}

// SetIgnoreInaccessible controls whether permission and vanished-entry errors
// are skipped or abort the walk
func (ts *TreeScanner) SetIgnoreInaccessible(ignore bool) {
	ts.ignoreInaccessible = ignore
}

// SetSkipDir installs a predicate that prunes directories by relative path
func (ts *TreeScanner) SetSkipDir(skip func(rel string) bool) {
	ts.skipDir = skip
}

// SetLogger sets the logger used for skipped entries
func (ts *TreeScanner) SetLogger(logger *log.Logger) {
	if logger != nil {
		ts.logger = logger
	}
}

// Walk calls fn for every file under root. The context is checked before
// every directory listing and every file.
func (ts *TreeScanner) Walk(ctx context.Context, root string, fn WalkFunc) error {
	if err := ctx.Err(); err != nil {
		return errors.Canceled(err)
	}

	resolved, err := ts.ResolveRoot(root)
	if err != nil {
		return err
	}

	info, err := ts.fs.Stat(resolved)
	if err != nil {
		return errors.NewEnumeration(resolved, err)
	}
	if !info.IsDir() {
		return errors.NewEnumeration(resolved, stderrors.New("not a directory"))
	}

	return ts.scanDirectory(ctx, resolved, "", 0, fn)
}

// Files returns the walk as a lazy sequence. A terminal error, if any, is
// yielded last with a zero FileEntry.
func (ts *TreeScanner) Files(ctx context.Context, root string) iter.Seq2[FileEntry, error] {
	return func(yield func(FileEntry, error) bool) {
		errStopped := stderrors.New("iteration stopped")

		err := ts.Walk(ctx, root, func(entry FileEntry) error {
			if !yield(entry, nil) {
				return errStopped
			}
			return nil
		})
		if err != nil && !stderrors.Is(err, errStopped) {
			yield(FileEntry{}, err)
		}
	}
}

// scanDirectory recursively scans a directory and reports its files
func (ts *TreeScanner) scanDirectory(ctx context.Context, basePath, relativePath string, depth int, fn WalkFunc) error {
	if err := ctx.Err(); err != nil {
		return errors.Canceled(err)
	}

	currentPath := filepath.Join(basePath, filepath.FromSlash(relativePath))

	entries, err := afero.ReadDir(ts.fs, currentPath)
	if err != nil {
		// An unreadable root always fails the walk
		if relativePath != "" && ts.ignoreInaccessible && isInaccessible(err) {
			ts.logger.Debug("skipping inaccessible directory", "path", currentPath, "err", err)
			return nil
		}
		return errors.NewEnumeration(currentPath, err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return errors.Canceled(err)
		}

		entryRelPath := path.Join(relativePath, entry.Name())

		if entry.IsDir() {
			if ts.skipDir != nil && ts.skipDir(entryRelPath) {
				continue
			}
			if ts.maxDepth != UnlimitedDepth && depth+1 > ts.maxDepth {
				continue
			}
			if err := ts.scanDirectory(ctx, basePath, entryRelPath, depth+1, fn); err != nil {
				return err
			}
			continue
		}

		fileEntry := FileEntry{
			Path: filepath.Join(basePath, filepath.FromSlash(entryRelPath)),
			Rel:  entryRelPath,
			Info: entry,
		}
		if err := fn(fileEntry); err != nil {
			return err
		}
	}

	return nil
}

// ResolveRoot returns the path to walk. In case-insensitive mode a root that
// does not exist verbatim is resolved component by component, ignoring case.
func (ts *TreeScanner) ResolveRoot(root string) (string, error) {
	cleaned := filepath.Clean(root)

	_, err := ts.fs.Stat(cleaned)
	if err == nil {
		return cleaned, nil
	}
	if !ts.caseInsensitive || !stderrors.Is(err, fs.ErrNotExist) {
		return "", errors.NewEnumeration(cleaned, err)
	}

	// Find the deepest ancestor that exists as written
	existing := cleaned
	var rest []string
	for {
		if _, err := ts.fs.Stat(existing); err == nil {
			break
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return "", errors.NewEnumeration(cleaned, fs.ErrNotExist)
		}
		rest = append([]string{filepath.Base(existing)}, rest...)
		existing = parent
	}

	for _, name := range rest {
		entries, err := afero.ReadDir(ts.fs, existing)
		if err != nil {
			return "", errors.NewEnumeration(existing, err)
		}

		found := ""
		for _, entry := range entries {
			if entry.IsDir() && strings.EqualFold(entry.Name(), name) {
				found = entry.Name()
				break
			}
		}
		if found == "" {
			return "", errors.NewEnumeration(cleaned, fs.ErrNotExist)
		}
		existing = filepath.Join(existing, found)
	}

	ts.logger.Debug("resolved root ignoring case", "root", root, "resolved", existing)
	return existing, nil
}

// QuickScan counts the files and directories directly under root
func (ts *TreeScanner) QuickScan(root string) (*ScanSummary, error) {
	resolved, err := ts.ResolveRoot(root)
	if err != nil {
		return nil, err
	}

	entries, err := afero.ReadDir(ts.fs, resolved)
	if err != nil {
		return nil, errors.NewEnumeration(resolved, err)
	}

	summary := &ScanSummary{Root: resolved}
	for _, entry := range entries {
		if entry.IsDir() {
			summary.DirCount++
		} else {
			summary.FileCount++
		}
	}

	return summary, nil
}

func isInaccessible(err error) bool {
	return stderrors.Is(err, fs.ErrPermission) || stderrors.Is(err, fs.ErrNotExist)
}
