package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ingestsim/internal/harness"
	"github.com/roach88/ingestsim/internal/header"
	"github.com/roach88/ingestsim/internal/scenario"
)

func TestRun_InteractiveByNumber(t *testing.T) {
	f := newFixture(t)

	stdout, _, err := execute(t, "0\ny\n\\q\n", f.args("run")...)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Using Data Directory: "+f.dataDir)
	assert.Contains(t, stdout, "Available Scenario(s)")
	assert.Contains(t, stdout, "0)First\n1)Broken\n")
	assert.Contains(t, stdout, "Running scenario: First")
	assert.Contains(t, stdout, "Delivered MSG_ONE (unique id 0)")
	assert.Contains(t, stdout, "Expected result: the message plays")
	assert.Contains(t, stdout, "Scenario First: pass")
	assert.Contains(t, stdout, "Exiting ...")

	data, err := os.ReadFile(filepath.Join(f.ingestDir, "MSG_ONE"))
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "Message Unique Identifier is 0 \x1bb")
	assert.NotContains(t, text, headerLine, "header should be rewritten")

	rec, err := header.Parse(text)
	require.NoError(t, err)
	assert.Equal(t, 15*60.0, rec.Expires.Sub(rec.Created).Seconds())
}

func TestRun_InteractiveUnknownThenQuit(t *testing.T) {
	f := newFixture(t)

	stdout, _, err := execute(t, "Nope\n\\q\n", f.args("run")...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "No scenario exists with name: Nope")
	assert.Contains(t, stdout, "Exiting ...")
}

func TestRun_InteractiveEOF(t *testing.T) {
	f := newFixture(t)

	stdout, _, err := execute(t, "", f.args("run")...)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(stdout, "Exiting ...\n"))
}

func TestRun_CreatesLargeFile(t *testing.T) {
	f := newFixture(t)

	_, _, err := execute(t, "\\q\n", f.args("run")...)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(f.dataDir, scenario.ParsingDir, scenario.LargeFileName))
	require.NoError(t, err)
	assert.Equal(t, int64(1024), info.Size())
}

func TestRun_PromptsForMissingDataDir(t *testing.T) {
	f := newFixture(t)
	args := []string{
		"--config", f.config,
		"--data-dir", filepath.Join(f.dir, "absent"),
		"--ingest-dir", f.ingestDir,
		"--scenarios", f.catalog,
		"run",
	}

	stdout, _, err := execute(t, f.dataDir+"\n\\q\n", args...)
	require.NoError(t, err)
	assert.Contains(t, stdout, DataDirPrompt)
	assert.Contains(t, stdout, "Using Data Directory: "+f.dataDir)
}

func TestRun_RejectsBadDataDirAnswer(t *testing.T) {
	f := newFixture(t)
	args := []string{
		"--config", f.config,
		"--data-dir", filepath.Join(f.dir, "absent"),
		"--ingest-dir", f.ingestDir,
		"--scenarios", f.catalog,
		"run",
	}

	_, _, err := execute(t, filepath.Join(f.dir, "also-absent")+"\n", args...)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRun_MissingIngestDir(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Remove(f.ingestDir))

	stdout, _, err := execute(t, "\\q\n", f.args("run")...)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "ingest directory not found")
}

func TestRun_ByNameFailVerdict(t *testing.T) {
	f := newFixture(t)

	stdout, _, err := execute(t, "n\n", f.args("run", "First")...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "Scenario First: fail")
	assert.Contains(t, stdout, "0 passed, 1 failed, 0 aborted")
}

func TestRun_UnknownScenario(t *testing.T) {
	f := newFixture(t)

	stdout, _, err := execute(t, "", f.args("run", "Nope")...)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "No scenario exists with name: Nope")
}

func TestRun_AbortedScenario(t *testing.T) {
	f := newFixture(t)

	stdout, _, err := execute(t, "", f.args("run", "Broken")...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "Scenario Broken aborted")
	assert.Contains(t, stdout, "0 passed, 0 failed, 1 aborted")
}

func TestRun_AllJSON(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, err := execute(t, "y\n", f.args("--format", "json", "run", "ALL")...)
	require.Error(t, err, "Broken aborts")
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stderr, "Running scenario: First")

	var resp struct {
		Status string     `json:"status"`
		Data   RunSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Passed)
	assert.Equal(t, 0, resp.Data.Failed)
	assert.Equal(t, 1, resp.Data.Aborted)
	require.Len(t, resp.Data.Executions, 2)
	assert.Equal(t, "First", resp.Data.Executions[0].Scenario)
	assert.Equal(t, harness.VerdictPass, resp.Data.Executions[0].Verdict)
}
