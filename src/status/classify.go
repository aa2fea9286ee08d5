// Package status derives the human-facing status label of a finished or
// running build from its result and the project's build history.
package status

import "hygieia-reporter/src/provider"

// Label is a symbolic build status used in notification messages.
type Label string

const (
	Starting     Label = "Starting"
	BackToNormal Label = "BackToNormal"
	StillFailing Label = "StillFailing"
	Success      Label = "Success"
	Failure      Label = "Failure"
	Aborted      Label = "Aborted"
	NotBuilt     Label = "NotBuilt"
	Unstable     Label = "Unstable"
	Unknown      Label = "Unknown"
)

var display = map[Label]string{
	Starting:     "Starting...",
	BackToNormal: "Back to normal",
	StillFailing: "Still Failing",
	Success:      "Success",
	Failure:      "Failure",
	Aborted:      "Aborted",
	NotBuilt:     "Not built",
	Unstable:     "Unstable",
	Unknown:      "Unknown",
}

// Display returns the text shown to people for the label.
func (l Label) Display() string {
	if s, ok := display[l]; ok {
		return s
	}
	return string(l)
}

// Classify labels build given the project's earlier builds, most recent
// first. Aborted builds in the history are skipped when looking for the
// previous result; a history with nothing but aborted builds counts as a
// previous success.
func Classify(build *provider.Build, previous []*provider.Build) Label {
	if build.Building {
		return Starting
	}

	effective := EffectivePrevious(previous)
	result := build.Result

	if result == provider.ResultSuccess &&
		(effective == provider.ResultFailure || effective == provider.ResultUnstable) &&
		LastSuccessful(previous) != nil {
		return BackToNormal
	}
	if result == provider.ResultFailure && effective == provider.ResultFailure {
		return StillFailing
	}

	switch result {
	case provider.ResultSuccess:
		return Success
	case provider.ResultFailure:
		return Failure
	case provider.ResultAborted:
		return Aborted
	case provider.ResultNotBuilt:
		return NotBuilt
	case provider.ResultUnstable:
		return Unstable
	default:
		return Unknown
	}
}

// EffectivePrevious returns the most recent non-aborted result, or
// ResultSuccess when there is none.
func EffectivePrevious(previous []*provider.Build) provider.Result {
	for _, b := range previous {
		if b == nil || b.Result == provider.ResultAborted {
			continue
		}
		return b.Result
	}
	return provider.ResultSuccess
}

// LastSuccessful returns the most recent successful build, or nil.
func LastSuccessful(previous []*provider.Build) *provider.Build {
	for _, b := range previous {
		if b != nil && b.Result == provider.ResultSuccess {
			return b
		}
	}
	return nil
}
