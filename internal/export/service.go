package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/cheerioskun/globninja/internal/errors"
	"github.com/cheerioskun/globninja/internal/models"
	"github.com/spf13/afero"
)

// Service copies matched files to a destination, preserving their layout
// relative to the search root
type Service struct {
	fs     afero.Fs
	logger *log.Logger
}

// NewService creates a new export service
func NewService(fs afero.Fs) *Service {
	return &Service{
		fs:     fs,
		logger: log.New(io.Discard),
	}
}

// SetLogger sets the logger used for non-fatal copy problems
func (s *Service) SetLogger(logger *log.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Options contains configuration for export operations
type Options struct {
	DestinationPath string
	Overwrite       bool
}

// Summary describes an export
type Summary struct {
	FileCount       int    `json:"file_count"`
	TotalSize       int64  `json:"total_size"`
	SourcePath      string `json:"source_path"`
	DestinationPath string `json:"destination_path"`
}

// Summarize calculates what would be exported without copying anything
func (s *Service) Summarize(set *models.MatchSet, destPath string) (*Summary, error) {
	if set == nil {
		return nil, errors.NewInvalidArgument("set", "")
	}

	summary := &Summary{
		SourcePath:      set.BasePath,
		DestinationPath: destPath,
	}

	for _, resolved := range set.Resolved() {
		info, err := resolved.Stat(s.fs)
		if err != nil {
			return nil, errors.Errorf("failed to stat %s: %w", resolved.FullPath, err)
		}
		summary.FileCount++
		summary.TotalSize += info.Size()
	}

	return summary, nil
}

// Export copies every match to opts.DestinationPath
func (s *Service) Export(set *models.MatchSet, opts Options) (*Summary, error) {
	if set == nil {
		return nil, errors.NewInvalidArgument("set", "")
	}
	if strings.TrimSpace(opts.DestinationPath) == "" {
		return nil, errors.NewInvalidArgument("destinationPath", "")
	}

	if err := s.fs.MkdirAll(opts.DestinationPath, 0755); err != nil {
		return nil, errors.Errorf("failed to create destination directory: %w", err)
	}

	summary := &Summary{
		SourcePath:      set.BasePath,
		DestinationPath: opts.DestinationPath,
	}

	for _, resolved := range set.Resolved() {
		size, err := s.exportFile(resolved, opts)
		if err != nil {
			return summary, errors.Errorf("failed to export file %s: %w", resolved.Match.Path, err)
		}
		summary.FileCount++
		summary.TotalSize += size
	}

	return summary, nil
}

// exportFile copies a single file preserving directory structure
func (s *Service) exportFile(resolved models.ResolvedPath, opts Options) (int64, error) {
	destPath := filepath.Join(opts.DestinationPath, filepath.FromSlash(resolved.Match.Path))

	destDir := filepath.Dir(destPath)
	if err := s.fs.MkdirAll(destDir, 0755); err != nil {
		return 0, errors.Errorf("failed to create directory %s: %w", destDir, err)
	}

	if !opts.Overwrite {
		if exists, err := afero.Exists(s.fs, destPath); err != nil {
			return 0, errors.Errorf("failed to check if destination exists: %w", err)
		} else if exists {
			return 0, errors.Errorf("destination file exists and overwrite is disabled: %s", destPath)
		}
	}

	return s.copyFile(resolved.FullPath, destPath)
}

// copyFile copies a file from source to destination, preserving attributes
func (s *Service) copyFile(sourcePath, destPath string) (int64, error) {
	srcFile, err := s.fs.Open(sourcePath)
	if err != nil {
		return 0, errors.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return 0, errors.Errorf("failed to get source file info: %w", err)
	}

	destFile, err := s.fs.Create(destPath)
	if err != nil {
		return 0, errors.Errorf("failed to create destination file: %w", err)
	}
	defer destFile.Close()

	written, err := io.Copy(destFile, srcFile)
	if err != nil {
		return 0, errors.Errorf("failed to copy file contents: %w", err)
	}

	if err := s.fs.Chmod(destPath, srcInfo.Mode()); err != nil {
		s.logger.Warn("failed to preserve permissions", "path", destPath, "err", err)
	}
	if err := s.fs.Chtimes(destPath, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
		s.logger.Warn("failed to preserve timestamps", "path", destPath, "err", err)
	}

	return written, nil
}

// DefaultExportPath generates a default export path based on current working directory
func DefaultExportPath(basePath string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.Errorf("failed to get current working directory: %w", err)
	}

	baseName := filepath.Base(basePath)
	if baseName == string(filepath.Separator) || baseName == "." {
		baseName = "matches"
	}

	return filepath.Join(cwd, baseName+"_matches"), nil
}

// ValidateExportPath checks that the parent of path exists on fs
func ValidateExportPath(fs afero.Fs, path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("export path cannot be empty")
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return errors.Errorf("failed to resolve absolute path: %w", err)
		}
		path = absPath
	}

	parentDir := filepath.Dir(path)
	if exists, err := afero.DirExists(fs, parentDir); err != nil || !exists {
		return errors.Errorf("parent directory does not exist: %s", parentDir)
	}

	return nil
}

// FormatSize renders a byte count with a binary unit, e.g. "1.5 KB"
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
