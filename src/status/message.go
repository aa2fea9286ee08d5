package status

import (
	"fmt"
	"time"

	"hygieia-reporter/src/provider"
)

// BackToNormalDuration is the time between the end of the last successful
// build and the end of build.
func BackToNormalDuration(build, lastSuccess *provider.Build) time.Duration {
	return time.Duration(build.EndTime()-lastSuccess.EndTime()) * time.Millisecond
}

// Message renders the one-line notification for a classified build, e.g.
// "app - #42 Back to normal after 3 min 2 sec (http://ci/job/app/42/)".
func Message(label Label, build, lastSuccess *provider.Build) string {
	head := fmt.Sprintf("%s - #%d %s", build.Project, build.Number, label.Display())

	if label == Starting {
		return fmt.Sprintf("%s (%s)", head, build.BuildURL())
	}

	elapsed := time.Duration(build.Duration) * time.Millisecond
	if label == BackToNormal && lastSuccess != nil {
		elapsed = BackToNormalDuration(build, lastSuccess)
	}
	return fmt.Sprintf("%s after %s (%s)", head, FormatDuration(elapsed), build.BuildURL())
}

// FormatDuration renders d with its two most significant units.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	switch {
	case d >= 24*time.Hour:
		days := d / (24 * time.Hour)
		return fmt.Sprintf("%d day %d hr", days, (d-days*24*time.Hour)/time.Hour)
	case d >= time.Hour:
		return fmt.Sprintf("%d hr %d min", d/time.Hour, (d%time.Hour)/time.Minute)
	case d >= time.Minute:
		return fmt.Sprintf("%d min %d sec", d/time.Minute, (d%time.Minute)/time.Second)
	case d >= time.Second:
		return fmt.Sprintf("%d sec", d/time.Second)
	default:
		return fmt.Sprintf("%d ms", d/time.Millisecond)
	}
}
