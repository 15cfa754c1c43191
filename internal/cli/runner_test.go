package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Joseda-hg/studyplanner/internal/model"
	"github.com/Joseda-hg/studyplanner/internal/task"
)

func TestAddListToggleRemove(t *testing.T) {
	runner, out, _ := newTestRunner(t)

	require.Equal(t, 0, runner.Run([]string{"add", "-c", "Work", "-p", "High", "-due", "2024-06-01", "Finish", "report"}))
	require.Equal(t, 0, runner.Run([]string{"add", "Buy", "milk"}))

	tasks := runner.Store.Tasks()
	require.Len(t, tasks, 2)
	require.Equal(t, "Finish report", tasks[0].Text)
	require.Equal(t, model.CategoryWork, tasks[0].Category)
	require.Equal(t, model.PriorityHigh, tasks[0].Priority)
	require.Equal(t, model.PriorityMedium, tasks[1].Priority)

	out.Reset()
	require.Equal(t, 0, runner.Run([]string{"ls"}))
	require.Contains(t, out.String(), "Finish report")
	require.Contains(t, out.String(), "2024-06-01 overdue")
	require.Contains(t, out.String(), "due None")

	require.Equal(t, 0, runner.Run([]string{"done", "1"}))
	require.True(t, runner.Store.Tasks()[0].Completed)

	out.Reset()
	require.Equal(t, 0, runner.Run([]string{"ls", "-group"}))
	require.NotContains(t, out.String(), "overdue")
	pendingAt := strings.Index(out.String(), "Pending")
	doneAt := strings.Index(out.String(), "Done")
	require.True(t, pendingAt >= 0 && doneAt > pendingAt)

	require.Equal(t, 0, runner.Run([]string{"rm", "1"}))
	tasks = runner.Store.Tasks()
	require.Len(t, tasks, 1)
	require.Equal(t, "Buy milk", tasks[0].Text)
}

func TestAddEmptyTextIsUsageError(t *testing.T) {
	runner, _, errOut := newTestRunner(t)

	require.Equal(t, 2, runner.Run([]string{"add", "  "}))
	require.Contains(t, errOut.String(), "task text is required")
	require.Zero(t, runner.Store.Len())
}

func TestIndexErrors(t *testing.T) {
	runner, _, errOut := newTestRunner(t)
	require.Equal(t, 0, runner.Run([]string{"add", "only"}))

	require.Equal(t, 2, runner.Run([]string{"done", "2"}))
	require.Contains(t, errOut.String(), "index out of range: have 1, got 2")

	require.Equal(t, 2, runner.Run([]string{"rm", "0"}))
	require.Equal(t, 2, runner.Run([]string{"rm", "x"}))
	require.Equal(t, 2, runner.Run([]string{"done"}))
	require.Equal(t, 1, runner.Store.Len())
}

func TestSaveFailureIsReported(t *testing.T) {
	runner, _, errOut := newTestRunner(t)
	runner.SaveErr = func() error { return errors.New("disk full") }

	require.Equal(t, 1, runner.Run([]string{"add", "kept in memory"}))
	require.Contains(t, errOut.String(), "disk full")
	require.Equal(t, 1, runner.Store.Len())
}

func TestExport(t *testing.T) {
	runner, out, _ := newTestRunner(t)
	require.Equal(t, 0, runner.Run([]string{"add", "Finish report"}))

	out.Reset()
	require.Equal(t, 0, runner.Run([]string{"export", "-format", "text"}))
	require.Contains(t, out.String(), "1. Finish report")

	out.Reset()
	require.Equal(t, 0, runner.Run([]string{"export", "-o", "-"}))
	require.Contains(t, out.String(), "<strong>Finish report</strong>")

	path := filepath.Join(t.TempDir(), "report.html")
	require.Equal(t, 0, runner.Run([]string{"export", "-o", path}))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), "Completed: No")

	require.Equal(t, 2, runner.Run([]string{"export", "-format", "pdf"}))
}

func TestUnknownSubcommand(t *testing.T) {
	runner, out, errOut := newTestRunner(t)
	require.Equal(t, 2, runner.Run([]string{"frobnicate"}))
	require.Contains(t, errOut.String(), "unknown subcommand")
	require.Contains(t, out.String(), "Subcommands:")

	require.Equal(t, 2, runner.Run(nil))
	require.Equal(t, 0, runner.Run([]string{"help"}))
}

func newTestRunner(t *testing.T) (*Runner, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &Runner{
		Store: task.New(nil),
		Out:   out,
		Err:   errOut,
		Now:   func() time.Time { return time.Date(2024, 6, 10, 12, 0, 0, 0, time.Local) },
	}, out, errOut
}
