package artifact

import (
	"path/filepath"
	"strings"
)

// GuessVersion infers a version from a file name such as "app-1.2.3.jar".
// The final extension is dropped; if the remaining stem still contains a dot,
// the part before the last dot is cut back to its last "-" or "_" and joined
// with the part after it. A stem without a dot has no version.
func GuessVersion(filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))

	dot := strings.LastIndex(stem, ".")
	if dot < 0 {
		return ""
	}

	major, minor := stem[:dot], stem[dot+1:]
	if cut := strings.LastIndexAny(major, "-_"); cut >= 0 {
		major = major[cut+1:]
	}
	return major + "." + minor
}

// ArtifactName removes version (and a "-" or "_" right before it) from
// filename and keeps the extension: ("app-1.2.3.jar", "1.2.3") -> "app.jar".
// The file name is returned unchanged when the version is empty or is not
// found after the first character.
func ArtifactName(filename, version string) string {
	if version == "" {
		return filename
	}
	idx := strings.Index(filename, version)
	if idx <= 0 {
		return filename
	}

	name := filename[:idx]
	if last := name[len(name)-1]; last == '-' || last == '_' {
		name = name[:len(name)-1]
	}
	return name + filepath.Ext(filename)
}
