// Package deploy describes the artifacts a build deployed, one collector
// deploy record per artifact.
package deploy

import (
	"strconv"

	"hygieia-reporter/src/artifact"
	"hygieia-reporter/src/contracts"
	"hygieia-reporter/src/logger"
	"hygieia-reporter/src/provider"
)

// Spec configures deploy publishing.
type Spec struct {
	Directory          string `mapstructure:"directory"`
	Pattern            string `mapstructure:"pattern"`
	Group              string `mapstructure:"group"`
	Version            string `mapstructure:"version"`
	Environment        string `mapstructure:"environment"`
	Application        string `mapstructure:"application"`
	PublishDeployStart bool   `mapstructure:"publish_deploy_start"`
}

// ArtifactSpec is the artifact selection part of the deploy spec.
func (s Spec) ArtifactSpec() artifact.Spec {
	return artifact.Spec{
		Directory:   s.Directory,
		NamePattern: s.Pattern,
		Group:       s.Group,
		Version:     s.Version,
	}
}

// Job carries the build fields copied into each deploy record.
type Job struct {
	Build       *provider.Build
	BuildID     string
	NiceName    string
	InstanceURL string
}

// Requests resolves the deployed artifacts under root and returns one deploy
// request per distinct artifact. The order follows artifact.Resolve.
func Requests(spec Spec, root string, job Job, log logger.Logger) []*contracts.DeployDataCreateRequest {
	b := job.Build
	app := spec.Application
	if app == "" {
		app = b.Project
	}

	descriptors := artifact.Resolve(spec.ArtifactSpec(), root, job.BuildID, log)
	seen := make(map[contracts.DeployDataCreateRequest]struct{}, len(descriptors))
	out := make([]*contracts.DeployDataCreateRequest, 0, len(descriptors))
	for _, d := range descriptors {
		req := contracts.DeployDataCreateRequest{
			BuildID:         job.BuildID,
			ExecutionID:     strconv.Itoa(b.Number),
			JobName:         b.Project,
			JobURL:          b.URL,
			InstanceURL:     job.InstanceURL,
			NiceName:        job.NiceName,
			AppName:         app,
			EnvName:         spec.Environment,
			ArtifactName:    d.ArtifactName,
			ArtifactGroup:   d.Group,
			ArtifactVersion: d.Version,
			DeployStatus:    b.Result.String(),
			StartTime:       b.StartTime,
			EndTime:         b.EndTime(),
			Duration:        b.Duration,
			StartedBy:       b.StartedBy,
		}
		// Files that differ only in timestamp deploy the same artifact.
		if _, dup := seen[req]; dup {
			continue
		}
		seen[req] = struct{}{}
		out = append(out, &req)
	}
	return out
}
