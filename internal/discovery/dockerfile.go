package discovery

import (
	"regexp"
	"strings"

	"github.com/cheerioskun/globninja/internal/errors"
	"github.com/cheerioskun/globninja/internal/models"
	"github.com/spf13/afero"
)

var (
	fromImageRegex = regexp.MustCompile(`(?im)FROM\s+(\S+?dotnet\S+?):(\S+)`)
	copyImageRegex = regexp.MustCompile(`(?im)COPY\s+--from=(\S+?dotnet\S+?):(\S+)`)
)

// DockerfileReader parses a Dockerfile
type DockerfileReader interface {
	ReadDockerfile(path string) (models.Dockerfile, error)
}

// DefaultDockerfileReader finds dotnet base images in FROM and COPY --from lines
type DefaultDockerfileReader struct {
	fs afero.Fs
}

// NewDockerfileReader creates a reader over fs
func NewDockerfileReader(fs afero.Fs) *DefaultDockerfileReader {
	return &DefaultDockerfileReader{fs: fs}
}

// ReadDockerfile returns every distinct dotnet image the Dockerfile references
func (r *DefaultDockerfileReader) ReadDockerfile(path string) (models.Dockerfile, error) {
	dockerfile := models.Dockerfile{FullPath: path}
	if !fileExists(r.fs, path) {
		return dockerfile, nil
	}

	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return dockerfile, errors.Errorf("failed to read dockerfile %s: %w", path, err)
	}
	content := string(data)

	seen := make(map[models.ImageDetails]bool)
	for _, re := range []*regexp.Regexp{fromImageRegex, copyImageRegex} {
		for _, loc := range re.FindAllStringSubmatchIndex(content, -1) {
			image := content[loc[2]:loc[3]]
			details := parseImage(image, content[loc[4]:loc[5]], lineNumberAt(content, loc[4]))
			if seen[details] {
				continue
			}
			seen[details] = true
			dockerfile.ImageDetails = append(dockerfile.ImageDetails, details)
		}
	}

	return dockerfile, nil
}

// parseImage derives the target framework moniker from an image tag. A tag
// like 8.0-alpine is reduced to 8.0; framework images map 4.8 to net48 and
// versions below 4 map to netcoreappX.
func parseImage(image, tag string, line int) models.ImageDetails {
	if i := strings.Index(tag, "-"); i >= 0 {
		tag = tag[:i]
	}

	var tfm string
	switch {
	case strings.Contains(image, "framework"):
		tfm = "net" + strings.ReplaceAll(tag, ".", "")
	case tag == "" || tag[0] < '4' || tag[0] > '9':
		tfm = "netcoreapp" + tag
	default:
		tfm = "net" + tag
	}

	return models.ImageDetails{
		Image:                  image,
		Tag:                    tag,
		TargetFrameworkMoniker: tfm,
		LineNumber:             line,
	}
}
