package discovery

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cheerioskun/globninja/internal/errors"
	"github.com/cheerioskun/globninja/internal/models"
	"github.com/spf13/afero"
)

const directoryBuildProps = "Directory.Build.props"

var (
	projectSdkRegex      = regexp.MustCompile(`(?i)<Project Sdk="(.+?)"`)
	targetFrameworkRegex = regexp.MustCompile(`(?i)TargetFramework(?:.*)>(.+?)</`)
	msbuildKeyRegex      = regexp.MustCompile(`\$\((.+?)\)`)
)

// ProjectReader parses a project file
type ProjectReader interface {
	ReadProject(path string) (models.Project, error)
}

// DefaultProjectReader reads SDK and target framework details from MSBuild
// project files
type DefaultProjectReader struct {
	fs afero.Fs
}

// NewProjectReader creates a reader over fs
func NewProjectReader(fs afero.Fs) *DefaultProjectReader {
	return &DefaultProjectReader{fs: fs}
}

// ReadProject returns the parsed project. A missing file yields a project
// with only its path set.
func (r *DefaultProjectReader) ReadProject(path string) (models.Project, error) {
	project := models.NewProject(path)
	if !fileExists(r.fs, path) {
		return project, nil
	}

	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return project, errors.Errorf("failed to read project %s: %w", path, err)
	}
	content := string(data)

	tfms, index := submatch(targetFrameworkRegex, content)
	if tfms == "" || strings.HasPrefix(tfms, "$") {
		resolved, err := r.resolveFromBuildProps(tfms, path)
		if err != nil {
			return project, err
		}
		tfms = resolved
	}

	sdk, _ := submatch(projectSdkRegex, content)

	project.Sdk = strings.TrimSpace(sdk)
	project.RawTargetFrameworkMonikers = tfms
	project.TargetFrameworkLineNumber = lineNumberAt(content, index)
	return project, nil
}

// resolveFromBuildProps reads the target frameworks from the nearest
// Directory.Build.props. An MSBuild expression such as
// $(DefaultTargetFrameworks) is looked up by its property name.
func (r *DefaultProjectReader) resolveFromBuildProps(raw, projectPath string) (string, error) {
	propsPath, ok := findUpward(r.fs, filepath.Dir(projectPath), directoryBuildProps)
	if !ok {
		return raw, nil
	}

	data, err := afero.ReadFile(r.fs, propsPath)
	if err != nil {
		return raw, errors.Errorf("failed to read %s: %w", propsPath, err)
	}
	content := string(data)

	if raw == "" {
		value, _ := submatch(targetFrameworkRegex, content)
		return value, nil
	}

	key, _ := submatch(msbuildKeyRegex, raw)
	if key == "" {
		return raw, nil
	}

	property := regexp.MustCompile(`<` + regexp.QuoteMeta(key) + `>(.+)</` + regexp.QuoteMeta(key) + `>`)
	value, _ := submatch(property, content)
	if value == "" {
		return raw, nil
	}
	return value, nil
}
