package scanner_test

import (
	"context"
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"sort"
	"testing"

	"github.com/cheerioskun/globninja/internal/errors"
	"github.com/cheerioskun/globninja/internal/scanner"
	"github.com/cheerioskun/globninja/internal/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTree(t *testing.T) afero.Fs {
	t.Helper()

	fsys := afero.NewMemMapFs()
	testutil.WriteTree(t, fsys, "/data", map[string]string{
		"root.log":            "x",
		"Logs/app.log":        "x",
		"Logs/nested/old.log": "x",
		"skip/ignored.txt":    "x",
	})
	return fsys
}

func walkRels(t *testing.T, ts *scanner.TreeScanner, root string) ([]string, error) {
	t.Helper()

	var rels []string
	err := ts.Walk(context.Background(), root, func(entry scanner.FileEntry) error {
		rels = append(rels, entry.Rel)
		return nil
	})
	sort.Strings(rels)
	return rels, err
}

func TestWalkReportsEveryFile(t *testing.T) {
	t.Parallel()

	ts := scanner.NewTreeScanner(newTree(t))

	rels, err := walkRels(t, ts, "/data")
	require.NoError(t, err)
	assert.Equal(t, []string{"Logs/app.log", "Logs/nested/old.log", "root.log", "skip/ignored.txt"}, rels)
}

func TestWalkEntryPaths(t *testing.T) {
	t.Parallel()

	ts := scanner.NewTreeScanner(newTree(t))

	err := ts.Walk(context.Background(), "/data", func(entry scanner.FileEntry) error {
		assert.Equal(t, filepath.Join("/data", filepath.FromSlash(entry.Rel)), entry.Path)
		assert.False(t, entry.Info.IsDir())
		return nil
	})
	require.NoError(t, err)
}

func TestWalkSkipDirAndMaxDepth(t *testing.T) {
	t.Parallel()

	ts := scanner.NewTreeScanner(newTree(t))
	ts.SetSkipDir(func(rel string) bool { return rel == "skip" })
	ts.SetMaxDepth(1)

	rels, err := walkRels(t, ts, "/data")
	require.NoError(t, err)
	assert.Equal(t, []string{"Logs/app.log", "root.log"}, rels)

	ts.SetMaxDepth(0)
	rels, err = walkRels(t, ts, "/data")
	require.NoError(t, err)
	assert.Equal(t, []string{"root.log"}, rels)
}

func TestWalkResolvesRootIgnoringCase(t *testing.T) {
	t.Parallel()

	ts := scanner.NewTreeScanner(newTree(t))

	rels, err := walkRels(t, ts, "/DATA/logs")
	require.NoError(t, err)
	assert.Equal(t, []string{"app.log", "nested/old.log"}, rels)

	resolved, err := ts.ResolveRoot("/data/LOGS/Nested")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data", "Logs", "nested"), resolved)
}

func TestWalkCaseSensitiveRootMustMatchExactly(t *testing.T) {
	t.Parallel()

	ts := scanner.NewTreeScanner(newTree(t))
	ts.SetCaseInsensitive(false)

	_, err := walkRels(t, ts, "/data/logs")
	require.Error(t, err)

	var enumeration *errors.EnumerationError
	assert.True(t, errors.As(err, &enumeration))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestWalkRootMustBeDirectory(t *testing.T) {
	t.Parallel()

	ts := scanner.NewTreeScanner(newTree(t))

	_, err := walkRels(t, ts, "/data/root.log")
	var enumeration *errors.EnumerationError
	assert.True(t, errors.As(err, &enumeration))
}

func TestWalkSkipsInaccessibleDirectories(t *testing.T) {
	t.Parallel()

	faulty := testutil.NewFaultyFs(newTree(t))
	faulty.FailOpen("/data/Logs", fs.ErrPermission)
	ts := scanner.NewTreeScanner(faulty)

	rels, err := walkRels(t, ts, "/data")
	require.NoError(t, err)
	assert.Equal(t, []string{"root.log", "skip/ignored.txt"}, rels)
}

func TestWalkUnreadableRootIsAlwaysAFault(t *testing.T) {
	t.Parallel()

	faulty := testutil.NewFaultyFs(newTree(t))
	faulty.FailOpen("/data", fs.ErrPermission)
	ts := scanner.NewTreeScanner(faulty)

	rels, err := walkRels(t, ts, "/data")
	assert.Empty(t, rels)

	var enumeration *errors.EnumerationError
	require.True(t, errors.As(err, &enumeration))
	assert.Equal(t, "/data", enumeration.Path)
	assert.ErrorIs(t, err, fs.ErrPermission)
}

func TestWalkFailsOnInaccessibleWhenNotIgnored(t *testing.T) {
	t.Parallel()

	faulty := testutil.NewFaultyFs(newTree(t))
	faulty.FailOpen("/data/Logs", fs.ErrPermission)
	ts := scanner.NewTreeScanner(faulty)
	ts.SetIgnoreInaccessible(false)

	_, err := walkRels(t, ts, "/data")
	require.Error(t, err)

	var enumeration *errors.EnumerationError
	require.True(t, errors.As(err, &enumeration))
	assert.Equal(t, filepath.Join("/data", "Logs"), enumeration.Path)
	assert.ErrorIs(t, err, fs.ErrPermission)
}

func TestWalkNeverIgnoresOtherFaults(t *testing.T) {
	t.Parallel()

	ioErr := stderrors.New("device not ready")
	faulty := testutil.NewFaultyFs(newTree(t))
	faulty.FailOpen("/data/skip", ioErr)
	ts := scanner.NewTreeScanner(faulty)

	_, err := walkRels(t, ts, "/data")
	assert.ErrorIs(t, err, ioErr)
}

func TestWalkHonoursCancellation(t *testing.T) {
	t.Parallel()

	ts := scanner.NewTreeScanner(newTree(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := ts.Walk(ctx, "/data", func(scanner.FileEntry) error { return nil })
	assert.True(t, errors.IsCanceled(err))
	assert.ErrorIs(t, err, context.Canceled)

	ctx, cancel = context.WithCancel(context.Background())
	defer cancel()
	seen := 0
	err = ts.Walk(ctx, "/data", func(scanner.FileEntry) error {
		seen++
		cancel()
		return nil
	})
	assert.True(t, errors.IsCanceled(err))
	assert.Equal(t, 1, seen)
}

func TestWalkStopsOnCallbackError(t *testing.T) {
	t.Parallel()

	ts := scanner.NewTreeScanner(newTree(t))
	stop := stderrors.New("stop")

	err := ts.Walk(context.Background(), "/data", func(scanner.FileEntry) error { return stop })
	assert.Equal(t, stop, err)
}

func TestFilesSequence(t *testing.T) {
	t.Parallel()

	ts := scanner.NewTreeScanner(newTree(t))

	var rels []string
	for entry, err := range ts.Files(context.Background(), "/data") {
		require.NoError(t, err)
		rels = append(rels, entry.Rel)
	}
	assert.Len(t, rels, 4)

	count := 0
	for range ts.Files(context.Background(), "/data") {
		count++
		break
	}
	assert.Equal(t, 1, count)

	var lastErr error
	for _, err := range ts.Files(context.Background(), "/missing") {
		lastErr = err
	}
	assert.Error(t, lastErr)
}

func TestQuickScan(t *testing.T) {
	t.Parallel()

	ts := scanner.NewTreeScanner(newTree(t))

	summary, err := ts.QuickScan("/data")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.FileCount)
	assert.Equal(t, 2, summary.DirCount)
}
