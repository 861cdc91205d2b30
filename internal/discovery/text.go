package discovery

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"
)

// lineNumberAt returns the 1-based line holding content[index]
func lineNumberAt(content string, index int) int {
	if index < 0 {
		return -1
	}
	if index > len(content) {
		index = len(content)
	}
	return strings.Count(content[:index], "\n") + 1
}

// submatch returns the first capture group of re in content and its offset,
// or ("", -1) when there is no match
func submatch(re *regexp.Regexp, content string) (string, int) {
	loc := re.FindStringSubmatchIndex(content)
	if loc == nil || loc[2] < 0 {
		return "", -1
	}
	return content[loc[2]:loc[3]], loc[2]
}

// findUpward looks for name in dir and then in each parent directory
func findUpward(fs afero.Fs, dir, name string) (string, bool) {
	for {
		candidate := filepath.Join(dir, name)
		if info, err := fs.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// fileExists reports whether path exists and is a regular file
func fileExists(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	return err == nil && !info.IsDir()
}
