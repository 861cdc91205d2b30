package models

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Project is a .NET project file found during discovery
type Project struct {
	FullPath                   string `json:"full_path"`
	Sdk                        string `json:"sdk,omitempty"`
	RawTargetFrameworkMonikers string `json:"target_frameworks,omitempty"`
	TargetFrameworkLineNumber  int    `json:"target_framework_line"` // -1 when unknown
}

// NewProject creates a Project with no parsed details
func NewProject(fullPath string) Project {
	return Project{FullPath: fullPath, TargetFrameworkLineNumber: -1}
}

// IsSdkStyle reports whether the project declares an Sdk attribute
func (p Project) IsSdkStyle() bool {
	return p.Sdk != ""
}

// Name is the file name without extension
func (p Project) Name() string {
	return strings.TrimSuffix(filepath.Base(p.FullPath), p.Extension())
}

// Extension is the project file extension including the dot
func (p Project) Extension() string {
	return filepath.Ext(p.FullPath)
}

// TargetFrameworkMonikers splits the raw ';'-separated monikers
func (p Project) TargetFrameworkMonikers() []string {
	var tfms []string
	for _, tfm := range strings.Split(p.RawTargetFrameworkMonikers, ";") {
		if tfm = strings.TrimSpace(tfm); tfm != "" {
			tfms = append(tfms, tfm)
		}
	}
	return tfms
}

func (p Project) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Name=%s%s", p.Name(), p.Extension())
	if p.IsSdkStyle() {
		fmt.Fprintf(&sb, ", Sdk=%s", p.Sdk)
	}
	if strings.TrimSpace(p.RawTargetFrameworkMonikers) != "" {
		fmt.Fprintf(&sb, ", TargetFramework(s)=%s", p.RawTargetFrameworkMonikers)
	}
	return sb.String()
}

// Solution is a .sln or .slnx file and the projects it references
type Solution struct {
	FullPath string    `json:"full_path"`
	Projects []Project `json:"projects"`
}

// Name is the file name without extension
func (s Solution) Name() string {
	return strings.TrimSuffix(filepath.Base(s.FullPath), s.Extension())
}

// Extension is the solution file extension including the dot
func (s Solution) Extension() string {
	return filepath.Ext(s.FullPath)
}

// HasProject reports whether the solution references the project at fullPath
func (s Solution) HasProject(fullPath string) bool {
	for _, p := range s.Projects {
		if p.FullPath == fullPath {
			return true
		}
	}
	return false
}

func (s Solution) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Name=%s%s", s.Name(), s.Extension())
	if len(s.Projects) > 0 {
		names := make([]string, 0, len(s.Projects))
		for _, p := range s.Projects {
			names = append(names, p.Name())
		}
		fmt.Fprintf(&sb, ", Projects=[%s]", strings.Join(names, ", "))
	}
	return sb.String()
}

// ImageDetails describes one dotnet base image reference in a Dockerfile
type ImageDetails struct {
	Image                  string `json:"image"`
	Tag                    string `json:"tag"`
	TargetFrameworkMoniker string `json:"tfm"`
	LineNumber             int    `json:"line"`
}

// Dockerfile is a container definition found during discovery
type Dockerfile struct {
	FullPath     string         `json:"full_path"`
	ImageDetails []ImageDetails `json:"images,omitempty"`
}

// IsNonDotNetBasedImage reports whether no dotnet image was referenced
func (d Dockerfile) IsNonDotNetBasedImage() bool {
	return len(d.ImageDetails) == 0
}

// DiscoveryResultSet is the aggregate result of a discovery run. Every slice
// is sorted by FullPath and free of duplicates.
type DiscoveryResultSet struct {
	Solutions          []Solution   `json:"solutions"`
	StandaloneProjects []Project    `json:"standalone_projects"`
	Dockerfiles        []Dockerfile `json:"dockerfiles"`
}
