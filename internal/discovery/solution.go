package discovery

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cheerioskun/globninja/internal/errors"
	"github.com/cheerioskun/globninja/internal/models"
	"github.com/spf13/afero"
)

var (
	slnProjectRegex  = regexp.MustCompile(`(?im)^Project\("\{[A-F0-9-]+\}"\) = ".*?", "(.*?)", "\{[A-F0-9-]+\}"`)
	slnxProjectRegex = regexp.MustCompile(`(?i)<Project\s+Path="([^"]+)"`)
)

// SolutionReader parses a solution file
type SolutionReader interface {
	ReadSolution(path string) (models.Solution, error)
}

// DefaultSolutionReader reads the projects referenced by .sln and .slnx files
type DefaultSolutionReader struct {
	fs       afero.Fs
	projects ProjectReader
}

// NewSolutionReader creates a reader that parses referenced projects with projects
func NewSolutionReader(fs afero.Fs, projects ProjectReader) *DefaultSolutionReader {
	return &DefaultSolutionReader{fs: fs, projects: projects}
}

// ReadSolution returns the solution and every referenced project that exists
func (r *DefaultSolutionReader) ReadSolution(path string) (models.Solution, error) {
	solution := models.Solution{FullPath: filepath.Clean(path)}
	if !fileExists(r.fs, solution.FullPath) {
		return solution, nil
	}

	var re *regexp.Regexp
	switch strings.ToLower(solution.Extension()) {
	case ".sln":
		re = slnProjectRegex
	case ".slnx":
		re = slnxProjectRegex
	default:
		return solution, nil
	}

	data, err := afero.ReadFile(r.fs, solution.FullPath)
	if err != nil {
		return solution, errors.Errorf("failed to read solution %s: %w", path, err)
	}

	dir := filepath.Dir(solution.FullPath)
	for _, match := range re.FindAllStringSubmatch(string(data), -1) {
		// Solution files always use backslashes
		rel := filepath.FromSlash(strings.ReplaceAll(match[1], `\`, "/"))
		projectPath := filepath.Join(dir, rel)
		if !fileExists(r.fs, projectPath) {
			continue
		}

		project, err := r.projects.ReadProject(projectPath)
		if err != nil {
			return solution, err
		}
		solution.Projects = append(solution.Projects, project)
	}

	return solution, nil
}
