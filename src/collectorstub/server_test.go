package collectorstub

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hygieia-reporter/src/artifact"
	"hygieia-reporter/src/collector"
	"hygieia-reporter/src/contracts"
	"hygieia-reporter/src/provider"
)

func newStub(t *testing.T, opts ...Option) (*Server, *collector.Client) {
	t.Helper()
	stub := New("", opts...)
	ts := httptest.NewServer(stub.Handler())
	t.Cleanup(ts.Close)
	return stub, collector.NewClient(ts.URL+"/api", "secret")
}

func TestServer_AcceptsBuildAndArtifact(t *testing.T) {
	stub, client := newStub(t, WithToken("secret"))
	ctx := context.Background()

	resp := client.PublishBuild(ctx, &contracts.BuildEvent{JobName: "app", Number: "1"})
	require.True(t, resp.Created(), resp.String())
	assert.NotContains(t, resp.Value, `"`)

	art := client.PublishArtifact(ctx, artifact.Descriptor{CanonicalName: "app-1.0.jar", BuildID: resp.Value})
	require.True(t, art.Created(), art.String())

	builds := stub.Received(collector.PathBuild)
	require.Len(t, builds, 1)
	assert.Equal(t, resp.Value, builds[0].ID)
	assert.JSONEq(t, `"app-1.0.jar"`, string(mustField(t, stub.Received(collector.PathArtifact)[0], "canonicalName")))
	assert.Len(t, stub.Received(""), 2)
}

func TestServer_RejectsBadToken(t *testing.T) {
	_, client := newStub(t, WithToken("other"))

	err := client.Ping(context.Background())
	assert.True(t, errors.Is(err, provider.ErrAuthFailed), "got %v", err)
}

func TestServer_FailWith(t *testing.T) {
	stub, client := newStub(t)
	stub.FailWith(collector.PathTest, http.StatusInternalServerError)

	resp := client.PublishTestResults(context.Background(), &contracts.TestDataCreateRequest{})
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Empty(t, stub.Received(collector.PathTest))
}

func TestServer_CollectorItems(t *testing.T) {
	stub, client := newStub(t)
	stub.AddItem("Build", map[string]any{"options": map[string]any{"jobName": "app"}})
	stub.AddItem("Build", map[string]any{"id": "no-options"})

	opts, err := client.CollectorItemOptions(context.Background(), "Build")
	require.NoError(t, err)
	require.Len(t, opts, 1)
	assert.Equal(t, "app", opts[0]["jobName"])

	require.NoError(t, client.Ping(context.Background()))
}

func mustField(t *testing.T, p Payload, name string) json.RawMessage {
	t.Helper()
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(p.Body, &fields); err != nil {
		t.Fatalf("payload %s is not an object: %v", p.Path, err)
	}
	return fields[name]
}
