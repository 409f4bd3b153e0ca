package exportcmder

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSRS = "# SOFTWARE REQUIREMENTS SPECIFICATION\n\nFR-1: The system shall track stock.\n"

func seedArtifact(t *testing.T, dataDir, sessionID string) {
	t.Helper()
	specDir := filepath.Join(dataDir, "specifications")
	require.NoError(t, os.MkdirAll(specDir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(specDir, "srs_"+sessionID+"_20260101_120000.txt"),
		[]byte(sampleSRS), 0o644))
}

func TestExportToStdout(t *testing.T) {
	dataDir := t.TempDir()
	seedArtifact(t, dataDir, "abc")

	cmd := NewExportCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"abc", "--data", dataDir})
	require.NoError(t, cmd.Execute())

	// Not a terminal, so the document passes through unrendered
	assert.Contains(t, out.String(), "FR-1: The system shall track stock.")
}

func TestExportToFile(t *testing.T) {
	dataDir := t.TempDir()
	seedArtifact(t, dataDir, "abc")

	outPath := filepath.Join(t.TempDir(), "srs.txt")

	cmd := NewExportCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"abc", "--data", dataDir, "--out", outPath})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "Wrote "+outPath)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "FR-1: The system shall track stock.")
	// Escape sequences never land in exported files
	assert.NotContains(t, string(data), "\x1b[")
}

func TestExportPicksLatest(t *testing.T) {
	dataDir := t.TempDir()
	specDir := filepath.Join(dataDir, "specifications")
	require.NoError(t, os.MkdirAll(specDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(specDir, "srs_abc_20260101_120000.txt"), []byte("old draft"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(specDir, "srs_abc_20260102_120000.txt"), []byte("new draft"), 0o644))

	cmd := NewExportCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"abc", "--data", dataDir})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "new draft")
	assert.NotContains(t, out.String(), "old draft")
}

func TestExportNoArtifact(t *testing.T) {
	cmd := NewExportCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"missing", "--data", t.TempDir()})
	require.Error(t, cmd.Execute())
}
