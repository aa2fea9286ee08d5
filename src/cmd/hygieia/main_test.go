package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hygieia-reporter/src/broker"
	"hygieia-reporter/src/logger"
	"hygieia-reporter/src/provider"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSnapshotFlags(t *testing.T) {
	_, err := (&jobFlags{}).loadSnapshot()
	assert.Error(t, err, "neither --snapshot nor --from-db")

	_, err = (&jobFlags{fromDB: true, project: "app"}).loadSnapshot()
	assert.Error(t, err, "--from-db without --number")

	snap, err := (&jobFlags{fromDB: true, project: "app", number: 3}).loadSnapshot()
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestResolveJob_Snapshot(t *testing.T) {
	log = logger.NewSilentLogger()
	path := writeFile(t, "snap.yaml", `
current: {project: app, number: 2}
builds:
  - {project: app, number: 2, result: SUCCESS}
  - {project: app, number: 1, result: FAILURE}
`)
	flags := &jobFlags{snapshot: path, workspace: "/ws"}
	snap, err := flags.loadSnapshot()
	require.NoError(t, err)

	job, src, err := resolveJob(context.Background(), flags, snap, &reporter{}, map[string]string{"A": "b"})
	require.NoError(t, err)
	assert.Equal(t, 2, job.Build.Number)
	assert.Equal(t, "/ws", job.Workspace)
	assert.Equal(t, "b", job.Env["A"])

	prev, err := src.PreviousBuilds(context.Background(), "app", 2)
	require.NoError(t, err)
	require.Len(t, prev, 1)
	assert.Equal(t, provider.ResultFailure, prev[0].Result)
}

func TestResolveJob_FromDBNeedsLedger(t *testing.T) {
	flags := &jobFlags{fromDB: true, project: "app", number: 1}
	_, _, err := resolveJob(context.Background(), flags, nil, &reporter{}, nil)
	assert.Error(t, err)
}

func TestValidateRecordsFlags(t *testing.T) {
	defer func() { recordsFlags.project, recordsFlags.number = "", 0 }()

	recordsFlags.project, recordsFlags.number = "app", 7
	assert.Error(t, validateRecordsFlags(""), "ledger dsn is required")
	assert.NoError(t, validateRecordsFlags("postgres://localhost/hygieia"))

	recordsFlags.number = 0
	assert.Error(t, validateRecordsFlags("postgres://localhost/hygieia"))
}

func TestClassifyInput(t *testing.T) {
	classifyFlags.snapshot = ""
	classifyFlags.result = "FAILURE"
	classifyFlags.history = []string{"ABORTED", " FAILURE"}
	t.Cleanup(func() {
		classifyFlags.result = ""
		classifyFlags.history = nil
	})

	build, previous, err := classifyInput(context.Background())
	require.NoError(t, err)
	assert.Equal(t, provider.ResultFailure, build.Result)
	require.Len(t, previous, 2)
	assert.Equal(t, provider.ResultFailure, previous[1].Result)
}

func TestDescribeEvent(t *testing.T) {
	line := describeEvent(broker.Message{
		Topic: "hygieia.builds",
		Value: []byte(`{"jobName":"app","number":"7","buildStatus":"SUCCESS","buildUrl":"http://ci/job/app/7/","sourceChangeSet":[{}]}`),
	})
	assert.Equal(t, "app #7 SUCCESS (1 commits) http://ci/job/app/7/", line)

	assert.Contains(t, describeEvent(broker.Message{Topic: "t", Value: []byte("{")}), "undecodable")
}
