// Package sanitize cleans free-text fields (commit messages, author names)
// before they are published to the collector. Change-log entries produced by
// CI hosts can carry terminal escape sequences and stray control bytes that
// the dashboard would render literally.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Buildkite-style timestamp markers: \x1b_bk;t=...\x07
var timestampMarker = regexp.MustCompile(`\x1b_bk;t=[0-9]+\x07`)

// StripANSI removes ANSI escape sequences and CI timestamp markers.
func StripANSI(s string) string {
	s = timestampMarker.ReplaceAllString(s, "")
	return ansi.Strip(s)
}

// CommitMessage strips escape sequences and control characters other than
// newline and tab, and trims trailing whitespace.
func CommitMessage(s string) string {
	s = StripANSI(s)
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	return strings.TrimRight(s, " \t\r\n")
}
