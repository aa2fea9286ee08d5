package scm

import (
	"context"
	"errors"
	"fmt"

	"hygieia-reporter/src/logger"
	"hygieia-reporter/src/provider"
)

// ResolveBuild returns the build whose change set should be used for commit
// extraction. A build with changes is returned as-is. A build without changes
// but with an upstream cause is replaced by its upstream build, repeatedly,
// until a build with changes or without an upstream cause is reached.
//
// Errors wrap provider.ErrCyclicUpstream when the chain revisits a build and
// provider.ErrMissingPredecessor when an upstream build cannot be found.
func ResolveBuild(ctx context.Context, src provider.Source, build *provider.Build) (*provider.Build, error) {
	visited := map[provider.BuildKey]bool{build.Key(): true}

	current := build
	for !current.HasChanges() && current.Upstream != nil {
		key := current.Upstream.Key()
		if visited[key] {
			return nil, fmt.Errorf("%w: %s revisits %s", provider.ErrCyclicUpstream, current.Key(), key)
		}
		visited[key] = true

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		upstream, err := src.LookupBuild(ctx, key.Project, key.Number)
		if err != nil {
			if errors.Is(err, provider.ErrProjectNotFound) || errors.Is(err, provider.ErrBuildNotFound) {
				return nil, fmt.Errorf("%w: %s (upstream of %s): %v", provider.ErrMissingPredecessor, key, current.Key(), err)
			}
			return nil, fmt.Errorf("failed to look up upstream build %s: %w", key, err)
		}
		if upstream == nil {
			return nil, fmt.Errorf("%w: %s (upstream of %s)", provider.ErrMissingPredecessor, key, current.Key())
		}
		current = upstream
	}

	return current, nil
}

// CommitsFor resolves the build carrying the changes and extracts its commits.
// Resolution errors are logged and the build's own change set is used instead.
func CommitsFor(ctx context.Context, src provider.Source, build *provider.Build, log logger.Logger) []Commit {
	resolved, err := ResolveBuild(ctx, src, build)
	if err != nil {
		log.Warn("Could not resolve upstream change set for %s, using its own: %v", build.Key(), err)
		resolved = build
	}
	return ExtractCommits(resolved)
}
