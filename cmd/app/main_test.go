package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/study-analytics/internal/filter"
	"github.com/BuzzLyutic/study-analytics/internal/model"
	"github.com/BuzzLyutic/study-analytics/internal/repo"
	"github.com/BuzzLyutic/study-analytics/internal/service"
	"github.com/BuzzLyutic/study-analytics/pkg/respond"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind string
		wantCode int
	}{
		{"validation", fmt.Errorf("%w: title is required", service.ErrValidation), kindInvalidInput, exitInvalid},
		{"invalid filter", fmt.Errorf("%w: unknown sort", filter.ErrInvalidFilter), kindInvalidInput, exitInvalid},
		{"invalid query", filter.ErrInvalidQuery, kindInvalidInput, exitInvalid},
		{"usage", usageError("bad flag"), kindInvalidInput, exitInvalid},
		{"not found", repo.ErrorNotFound, kindNotFound, exitNotFound},
		{"store", fmt.Errorf("%w: pg 08006: boom", repo.ErrStoreUnavailable), kindStoreUnavailable, exitInternal},
		{"other", errors.New("boom"), kindInternal, exitInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, code := classify(tt.err)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"go", "sql"}, splitList(" go, ,sql ,"))
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"1,2", "3"})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)

	_, err = parseIDs([]string{"1", "x"})
	assert.ErrorIs(t, err, errUsage)

	_, err = parseIDs([]string{"-4"})
	assert.ErrorIs(t, err, errUsage)
}

func TestParseOrders(t *testing.T) {
	orders, err := parseOrders([]string{"3=1", "4=0"})
	require.NoError(t, err)
	assert.Equal(t, []model.TaskOrder{{ID: 3, Order: 1}, {ID: 4, Order: 0}}, orders)

	_, err = parseOrders([]string{"3"})
	assert.ErrorIs(t, err, errUsage)
	_, err = parseOrders([]string{"3=first"})
	assert.ErrorIs(t, err, errUsage)
}

// withSQLite points the CLI at a fresh database file shared by several runs.
func withSQLite(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NOTES_CONFIG_FILE", "")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "notes.db"))
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("TZ_NAME", "UTC")
}

func runCLI(t *testing.T, args ...string) (int, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, &stdout, &stderr
}

func TestRun_HelpExplainsStoreLifetime(t *testing.T) {
	code, out, errOut := runCLI(t, "--help")
	require.Equal(t, 0, code, errOut.String())
	assert.Contains(t, out.String(), "only as long as one command")
	assert.Contains(t, out.String(), "STORE_DRIVER=sqlite")
}

func TestRun_NotesLifecycle(t *testing.T) {
	withSQLite(t)

	code, out, errOut := runCLI(t, "--owner", "1", "notes", "add", "--title", "Optics", "--content", "light waves", "--tags", "physics,exam")
	require.Equal(t, 0, code, errOut.String())
	var created model.Note
	require.NoError(t, json.Unmarshal(out.Bytes(), &created))
	assert.Equal(t, 11, created.WordCount)

	code, out, _ = runCLI(t, "--owner", "1", "notes", "list", "--tags", "exam")
	require.Equal(t, 0, code)
	var notes []model.Note
	require.NoError(t, json.Unmarshal(out.Bytes(), &notes))
	require.Len(t, notes, 1)
	assert.Equal(t, "Optics", notes[0].Title)

	code, out, _ = runCLI(t, "--owner", "2", "notes", "list")
	require.Equal(t, 0, code)
	assert.JSONEq(t, "[]", out.String())

	code, _, errOut = runCLI(t, "--owner", "2", "notes", "get", fmt.Sprint(created.ID))
	assert.Equal(t, exitNotFound, code)
	var body respond.ErrorBody
	require.NoError(t, json.Unmarshal(errOut.Bytes(), &body))
	assert.Equal(t, kindNotFound, body.Kind)

	code, out, _ = runCLI(t, "--owner", "1", "search", "waves")
	require.Equal(t, 0, code)
	assert.Contains(t, out.String(), `"total": 1`)
}

func TestRun_TasksLifecycle(t *testing.T) {
	withSQLite(t)

	code, out, errOut := runCLI(t, "--owner", "1", "tasks", "add", "--title", "Essay", "--priority", "high")
	require.Equal(t, 0, code, errOut.String())
	var created model.Task
	require.NoError(t, json.Unmarshal(out.Bytes(), &created))

	code, out, errOut = runCLI(t, "--owner", "1", "tasks", "status", "done", fmt.Sprint(created.ID))
	require.Equal(t, 0, code, errOut.String())
	assert.Contains(t, out.String(), "Task completed")

	code, out, _ = runCLI(t, "--owner", "1", "tasks", "rate")
	require.Equal(t, 0, code)
	assert.JSONEq(t, `{"completion_rate": 100}`, out.String())

	code, out, _ = runCLI(t, "--owner", "1", "analytics", "streak")
	require.Equal(t, 0, code)
	assert.JSONEq(t, `{"study_streak": 1}`, out.String())
}

func TestRun_InvalidInput(t *testing.T) {
	withSQLite(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing owner", []string{"notes", "list"}},
		{"bad sort", []string{"--owner", "1", "notes", "list", "--sort", "colour"}},
		{"bad date", []string{"--owner", "1", "tasks", "list", "--start", "tomorrow"}},
		{"blank search", []string{"--owner", "1", "search", "  "}},
		{"bad id", []string{"--owner", "1", "notes", "get", "abc"}},
		{"unknown flag", []string{"--owner", "1", "notes", "list", "--colour", "red"}},
		{"empty title", []string{"--owner", "1", "tasks", "add"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := runCLI(t, tt.args...)
			assert.Equal(t, exitInvalid, code, errOut.String())

			var body respond.ErrorBody
			require.NoError(t, json.Unmarshal(errOut.Bytes(), &body))
			assert.Equal(t, kindInvalidInput, body.Kind)
		})
	}
}
