// Package discovery finds .NET solutions, projects and Dockerfiles under a
// directory by running streaming glob queries concurrently.
package discovery

import (
	"context"
	"io"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/cheerioskun/globninja/internal/errors"
	"github.com/cheerioskun/globninja/internal/glob"
	"github.com/cheerioskun/globninja/internal/matcher"
	"github.com/cheerioskun/globninja/internal/models"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// Default discovery patterns
var (
	DefaultSolutionPatterns   = []string{"**/*.sln", "**/*.slnx"}
	DefaultProjectPatterns    = []string{"**/*.csproj", "**/*.fsproj", "**/*.vbproj"}
	DefaultDockerfilePatterns = []string{"**/Dockerfile"}
)

// Options refines which files are discovered
type Options struct {
	SolutionPatterns   []string
	ProjectPatterns    []string
	DockerfilePatterns []string

	SolutionIgnorePatterns   []string
	ProjectIgnorePatterns    []string
	DockerfileIgnorePatterns []string

	CaseInsensitive    bool
	IgnoreInaccessible bool
}

// DefaultOptions returns the default patterns with no ignores
func DefaultOptions() Options {
	return Options{
		SolutionPatterns:   DefaultSolutionPatterns,
		ProjectPatterns:    DefaultProjectPatterns,
		DockerfilePatterns: DefaultDockerfilePatterns,
		CaseInsensitive:    models.DefaultCaseInsensitive,
		IgnoreInaccessible: true,
	}
}

// Service discovers solutions, projects and Dockerfiles
type Service struct {
	fs          afero.Fs
	cache       *matcher.Cache
	options     Options
	solutions   SolutionReader
	projects    ProjectReader
	dockerfiles DockerfileReader
	logger      *log.Logger
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithOptions replaces the discovery options
func WithOptions(options Options) ServiceOption {
	return func(s *Service) {
		s.options = options
	}
}

// WithCache sets the matcher cache shared by the three queries
func WithCache(cache *matcher.Cache) ServiceOption {
	return func(s *Service) {
		if cache != nil {
			s.cache = cache
		}
	}
}

// WithReaders overrides the file readers. Nil readers keep the defaults.
func WithReaders(solutions SolutionReader, projects ProjectReader, dockerfiles DockerfileReader) ServiceOption {
	return func(s *Service) {
		if solutions != nil {
			s.solutions = solutions
		}
		if projects != nil {
			s.projects = projects
		}
		if dockerfiles != nil {
			s.dockerfiles = dockerfiles
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *log.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a discovery service over fs
func NewService(fs afero.Fs, opts ...ServiceOption) *Service {
	projects := NewProjectReader(fs)
	s := &Service{
		fs:          fs,
		options:     DefaultOptions(),
		projects:    projects,
		solutions:   NewSolutionReader(fs, projects),
		dockerfiles: NewDockerfileReader(fs),
		logger:      log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = glob.SharedCache()
	}
	return s
}

// DiscoverAll runs the solution, project and Dockerfile queries concurrently.
// The first failure cancels the other queries and is returned.
func (s *Service) DiscoverAll(ctx context.Context, root string) (*models.DiscoveryResultSet, error) {
	if root == "" {
		return nil, errors.NewInvalidArgument("root", "")
	}

	g, err := glob.New(root,
		glob.WithFs(s.fs),
		glob.WithCache(s.cache),
		glob.WithCaseInsensitive(s.options.CaseInsensitive),
		glob.WithIgnoreInaccessible(s.options.IgnoreInaccessible),
		glob.WithLogger(s.logger),
	)
	if err != nil {
		return nil, err
	}

	var (
		mu          sync.Mutex
		solutions   []models.Solution
		projects    []models.Project
		dockerfiles []models.Dockerfile
	)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return each(ctx, g, s.options.SolutionPatterns, s.options.SolutionIgnorePatterns, func(path string) error {
			solution, err := s.solutions.ReadSolution(path)
			if err != nil {
				return err
			}
			mu.Lock()
			solutions = append(solutions, solution)
			mu.Unlock()
			return nil
		})
	})

	group.Go(func() error {
		return each(ctx, g, s.options.ProjectPatterns, s.options.ProjectIgnorePatterns, func(path string) error {
			project, err := s.projects.ReadProject(path)
			if err != nil {
				return err
			}
			mu.Lock()
			projects = append(projects, project)
			mu.Unlock()
			return nil
		})
	})

	group.Go(func() error {
		return each(ctx, g, s.options.DockerfilePatterns, s.options.DockerfileIgnorePatterns, func(path string) error {
			dockerfile, err := s.dockerfiles.ReadDockerfile(path)
			if err != nil {
				return err
			}
			if dockerfile.IsNonDotNetBasedImage() {
				s.logger.Debug("skipping non-dotnet dockerfile", "path", path)
				return nil
			}
			mu.Lock()
			dockerfiles = append(dockerfiles, dockerfile)
			mu.Unlock()
			return nil
		})
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}

	result := &models.DiscoveryResultSet{
		Solutions:          dedupeSolutions(solutions),
		StandaloneProjects: standalone(dedupeProjects(projects), solutions),
		Dockerfiles:        dedupeDockerfiles(dockerfiles),
	}

	s.logger.Debug("discovery finished",
		"root", root,
		"solutions", len(result.Solutions),
		"standalone_projects", len(result.StandaloneProjects),
		"dockerfiles", len(result.Dockerfiles),
	)
	return result, nil
}

// each streams one query and calls fn with the full path of every match
func each(ctx context.Context, g *glob.Glob, patterns, ignorePatterns []string, fn func(path string) error) error {
	if len(patterns) == 0 {
		return nil
	}

	stream, err := g.Stream(ctx, patterns, ignorePatterns)
	if err != nil {
		return err
	}
	defer stream.Close()

	for stream.Next() {
		if err := fn(stream.Path()); err != nil {
			return err
		}
	}
	return stream.Err()
}

// standalone drops projects referenced by any solution
func standalone(projects []models.Project, solutions []models.Solution) []models.Project {
	referenced := make(map[string]bool)
	for _, solution := range solutions {
		for _, p := range solution.Projects {
			referenced[p.FullPath] = true
		}
	}

	out := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		if !referenced[p.FullPath] {
			out = append(out, p)
		}
	}
	return out
}

func dedupeSolutions(in []models.Solution) []models.Solution {
	return dedupeByPath(in, func(s models.Solution) string { return s.FullPath })
}

func dedupeProjects(in []models.Project) []models.Project {
	return dedupeByPath(in, func(p models.Project) string { return p.FullPath })
}

func dedupeDockerfiles(in []models.Dockerfile) []models.Dockerfile {
	return dedupeByPath(in, func(d models.Dockerfile) string { return d.FullPath })
}

func dedupeByPath[T any](in []T, key func(T) string) []T {
	seen := make(map[string]bool, len(in))
	out := make([]T, 0, len(in))
	for _, item := range in {
		k := key(item)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return key(out[i]) < key(out[j]) })
	return out
}
