package sonar

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{
  "serverUrl": "http://sonar.local",
  "component": {
    "id": "AX1",
    "key": "com.example:app",
    "name": "app",
    "version": "1.2",
    "measures": [
      {"metric": "ncloc", "value": "1200"},
      {"metric": "coverage", "value": "81.3", "formattedValue": "81.3%", "status": "Ok"},
      {"value": "orphan"}
    ]
  }
}`

func TestParseReport(t *testing.T) {
	r, err := ParseReport([]byte(sample))
	require.NoError(t, err)

	req := r.Request("abc123", "ci", 5000)

	assert.Equal(t, "abc123", req.BuildID)
	assert.Equal(t, "app", req.ProjectName)
	assert.Equal(t, "http://sonar.local/dashboard?id=com.example:app", req.ProjectURL)
	require.Len(t, req.Metrics, 2)
	assert.Equal(t, "coverage", req.Metrics[0].Name)
	assert.Equal(t, "81.3%", req.Metrics[0].FormattedValue)
	assert.Equal(t, "1200", req.Metrics[1].FormattedValue)
}

func TestParseReport_Invalid(t *testing.T) {
	_, err := ParseReport([]byte(`{`))
	assert.Error(t, err)

	_, err = ParseReport([]byte(`{"component": {}}`))
	assert.Error(t, err)
}

func TestReadReport_RelativeToRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "measures.json"), []byte(sample), 0o644))

	r, err := ReadReport(root, "measures.json")
	require.NoError(t, err)
	assert.Equal(t, "1.2", r.Component.Version)

	_, err = ReadReport(root, "missing.json")
	assert.Error(t, err)
}
