// Package artifact finds build outputs in a workspace and describes them the
// way the collector's binary artifact endpoint expects.
package artifact

import (
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar"

	"hygieia-reporter/src/logger"
)

// Spec configures which files are published as artifacts.
type Spec struct {
	Directory   string `mapstructure:"directory" json:"directory"`
	NamePattern string `mapstructure:"name_pattern" json:"namePattern"`
	Group       string `mapstructure:"group" json:"group"`
	Version     string `mapstructure:"version" json:"version,omitempty"`
}

// Descriptor is one binary artifact. It is comparable; descriptors equal in
// every field are the same artifact.
type Descriptor struct {
	CanonicalName string `json:"canonicalName"`
	ArtifactName  string `json:"artifactName"`
	Group         string `json:"artifactGroup"`
	Version       string `json:"artifactVersion"`
	Timestamp     int64  `json:"timestamp"`
	BuildID       string `json:"buildId"`
}

// Match is a file selected by a pattern walk.
type Match struct {
	Path      string
	Name      string
	Timestamp int64 // modification time, unix millis
}

// caseInsensitiveFS follows the default case rules of the host file system.
var caseInsensitiveFS = runtime.GOOS == "windows" || runtime.GOOS == "darwin"

// FindFiles walks dir recursively and returns the regular files whose name
// matches pattern in the directory that holds them. "**" means the same as
// "*": the pattern never spans directories, recursion happens regardless.
// Unreadable entries are logged and skipped.
func FindFiles(dir, pattern string, log logger.Logger) []Match {
	pattern = strings.ReplaceAll(pattern, "**", "*")
	if caseInsensitiveFS {
		pattern = strings.ToLower(pattern)
	}

	var matches []Match
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn("Cannot read %s: %v", path, err)
			return nil
		}
		if d.IsDir() {
			return nil
		}

		name := d.Name()
		candidate := name
		if caseInsensitiveFS {
			candidate = strings.ToLower(candidate)
		}
		ok, err := doublestar.Match(pattern, candidate)
		if err != nil {
			log.Error("Invalid file pattern %q: %v", pattern, err)
			return filepath.SkipAll
		}
		if !ok {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			log.Warn("Cannot read attributes of %s: %v", path, err)
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		matches = append(matches, Match{Path: path, Name: name, Timestamp: info.ModTime().UnixMilli()})
		return nil
	})
	if err != nil {
		log.Error("Artifact scan of %s stopped: %v", dir, err)
	}

	return matches
}

// Resolve scans root/spec.Directory for files matching spec.NamePattern and
// returns one descriptor per distinct artifact, sorted by canonical name.
func Resolve(spec Spec, root, buildID string, log logger.Logger) []Descriptor {
	dir := filepath.Join(root, spec.Directory)

	set := make(map[Descriptor]struct{})
	for _, m := range FindFiles(dir, spec.NamePattern, log) {
		set[Describe(spec, m, buildID)] = struct{}{}
	}

	out := make([]Descriptor, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CanonicalName != out[j].CanonicalName {
			return out[i].CanonicalName < out[j].CanonicalName
		}
		return out[i].Timestamp < out[j].Timestamp
	})
	return out
}

// Describe builds the descriptor for one matched file.
func Describe(spec Spec, m Match, buildID string) Descriptor {
	version := strings.TrimSpace(spec.Version)
	if version == "" {
		version = GuessVersion(m.Name)
	}

	return Descriptor{
		CanonicalName: m.Name,
		ArtifactName:  ArtifactName(m.Name, version),
		Group:         spec.Group,
		Version:       version,
		Timestamp:     m.Timestamp,
		BuildID:       buildID,
	}
}
