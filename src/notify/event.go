package notify

import (
	"net/url"
	"strconv"
	"strings"

	"hygieia-reporter/src/contracts"
	"hygieia-reporter/src/provider"
	"hygieia-reporter/src/sanitize"
	"hygieia-reporter/src/scm"
)

// NewBuildEvent assembles the build record. An incomplete build is reported
// as in progress without end time or duration.
func NewBuildEvent(b *provider.Build, commits []scm.Commit, niceName, instanceURL string, complete bool) *contracts.BuildEvent {
	event := &contracts.BuildEvent{
		NiceName:        niceName,
		JobName:         b.Project,
		JobURL:          b.URL,
		BuildURL:        b.BuildURL(),
		InstanceURL:     instanceURL,
		Number:          strconv.Itoa(b.Number),
		StartTime:       b.StartTime,
		StartedBy:       b.StartedBy,
		SourceChangeSet: cleanCommits(commits),
	}

	if complete {
		event.BuildStatus = b.Result.String()
		event.Duration = b.Duration
		event.EndTime = b.EndTime()
	} else {
		event.BuildStatus = contracts.BuildStatusInProgress
	}
	return event
}

// InstanceURL returns the CI root URL: JENKINS_URL from env when set,
// otherwise the project URL up to "/job/<project>/".
func InstanceURL(b *provider.Build, env map[string]string) string {
	if v := env["JENKINS_URL"]; v != "" {
		return v
	}

	if i := strings.Index(b.URL, "/job/"+b.Project+"/"); i >= 0 {
		return b.URL[:i]
	}

	u, err := url.Parse(b.URL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func cleanCommits(commits []scm.Commit) []scm.Commit {
	out := make([]scm.Commit, len(commits))
	for i, c := range commits {
		c.Message = sanitize.CommitMessage(c.Message)
		c.Author = sanitize.StripANSI(c.Author)
		out[i] = c
	}
	return out
}
