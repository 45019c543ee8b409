package cli

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-recap/internal/appcore"
	"movie-recap/internal/appdirs"
	"movie-recap/internal/types"
)

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"run", "serve", "worker", "enqueue", "history", "doctor", "version"} {
		assert.Contains(t, names, want)
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("workdir"))
}

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "version: dev")
	assert.Contains(t, out.String(), "commit: none")
}

func TestPrintPath(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	printPath(&out, "present", dir)
	printPath(&out, "absent", filepath.Join(dir, "nope"))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "path.present: "+dir+" (exists)", lines[0])
	assert.Contains(t, lines[1], "(missing)")
}

func TestPrintBatch(t *testing.T) {
	result := appcore.BatchResult{RunID: "run-9"}
	result.Add(appcore.JobResult{Title: "Heat", Status: appcore.JobStatusSucceeded, Stage: appcore.StageSourceRetired, Planned: 20, Produced: 19, Warnings: []string{"w"}})
	result.Add(appcore.JobResult{Title: "Alien", Status: appcore.JobStatusFailed, Stage: appcore.StageSubtitlesAcquired, Err: errors.New("no clips")})

	var out bytes.Buffer
	printBatch(&out, result)

	text := out.String()
	assert.Contains(t, text, "19/20")
	assert.Contains(t, text, "no clips")
	assert.Contains(t, text, "run run-9: processed 1, failed 1, skipped 0")
}

func TestPrintHistory(t *testing.T) {
	var out bytes.Buffer
	printHistory(&out, []types.MovieRun{{
		ID:         3,
		Title:      "Heat",
		Status:     "failed",
		Stage:      "plan_generated",
		Planned:    25,
		FailReason: "interrupted",
		StartedAt:  time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
	}})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "2026-03-01 10:30")
	assert.Contains(t, lines[1], "0/25")
	assert.Contains(t, lines[1], "interrupted")
}

func TestDirLabel(t *testing.T) {
	ws := appdirs.NewWorkspace(t.TempDir())

	labels := make([]string, 0, len(ws.Dirs()))
	for _, dir := range ws.Dirs() {
		labels = append(labels, dirLabel(ws, dir))
	}
	assert.Equal(t, []string{"movies", "output", "music", "clips", "audio", "subtitles", "vertical", "retired"}, labels)
	assert.Equal(t, "other", dirLabel(ws, "/elsewhere"))
}
