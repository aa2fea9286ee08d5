package provider

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrBuildNotFound   = errors.New("build not found")
)

// Source gives read access to the CI host's build records.
type Source interface {
	// LookupBuild returns the build with the given number in project.
	LookupBuild(ctx context.Context, project string, number int) (*Build, error)

	// PreviousBuilds returns the builds of project numbered below number,
	// most recent first.
	PreviousBuilds(ctx context.Context, project string, number int) ([]*Build, error)
}

// Snapshot is the on-disk form of a set of builds handed over by the host.
// Current names the build the lifecycle event is about.
type Snapshot struct {
	Current BuildKey          `json:"current" yaml:"current"`
	Env     map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	Builds  []*Build          `json:"builds" yaml:"builds"`
}

// MemorySource is a Source over an in-memory list of builds.
type MemorySource struct {
	byProject map[string]map[int]*Build
}

// NewMemorySource indexes builds by project and number.
func NewMemorySource(builds ...*Build) *MemorySource {
	s := &MemorySource{byProject: make(map[string]map[int]*Build)}
	for _, b := range builds {
		s.Add(b)
	}
	return s
}

// Add registers a build, replacing any earlier build with the same key.
func (s *MemorySource) Add(b *Build) {
	builds, ok := s.byProject[b.Project]
	if !ok {
		builds = make(map[int]*Build)
		s.byProject[b.Project] = builds
	}
	builds[b.Number] = b
}

// LookupBuild implements Source.
func (s *MemorySource) LookupBuild(ctx context.Context, project string, number int) (*Build, error) {
	builds, ok := s.byProject[project]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, project)
	}
	b, ok := builds[number]
	if !ok {
		return nil, fmt.Errorf("%w: %s#%d", ErrBuildNotFound, project, number)
	}
	return b, nil
}

// PreviousBuilds implements Source.
func (s *MemorySource) PreviousBuilds(ctx context.Context, project string, number int) ([]*Build, error) {
	builds, ok := s.byProject[project]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, project)
	}
	var prev []*Build
	for n, b := range builds {
		if n < number {
			prev = append(prev, b)
		}
	}
	sort.Slice(prev, func(i, j int) bool { return prev[i].Number > prev[j].Number })
	return prev, nil
}

// LoadSnapshot reads a YAML or JSON snapshot file. JSON is a subset of YAML,
// so one decoder handles both.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return ParseSnapshot(data, filepath.Ext(path))
}

// ParseSnapshot decodes snapshot data and checks that the current build is present.
func ParseSnapshot(data []byte, ext string) (*Snapshot, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse %s snapshot: %w", strings.TrimPrefix(ext, "."), err)
	}
	if snap.Current.Project == "" {
		return nil, fmt.Errorf("snapshot has no current build")
	}
	return &snap, nil
}

// Source returns a MemorySource over the snapshot's builds.
func (s *Snapshot) Source() *MemorySource {
	return NewMemorySource(s.Builds...)
}

// CurrentBuild returns the build named by Current.
func (s *Snapshot) CurrentBuild() (*Build, error) {
	return s.Source().LookupBuild(context.Background(), s.Current.Project, s.Current.Number)
}
