package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Joseda-hg/studyplanner/internal/model"
)

func sampleTasks() []model.Task {
	return []model.Task{
		{ID: "1", Text: "Finish report", Category: model.CategoryWork, Priority: model.PriorityHigh, DueDate: "2024-06-01"},
		{ID: "2", Text: "Call mum", Category: model.CategoryPersonal, Priority: model.PriorityLow, Completed: true},
	}
}

func TestHTMLListsTasksInOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, sampleTasks()))
	out := buf.String()

	require.Contains(t, out, "<h1>Smart Study Planner Tasks</h1>")
	require.Equal(t, 2, strings.Count(out, "<li>"))

	first := strings.Index(out, "Finish report")
	second := strings.Index(out, "Call mum")
	require.True(t, first >= 0 && second > first)

	require.Contains(t, out, "Due: 2024-06-01")
	require.Contains(t, out, "Due: None")
	require.Contains(t, out, "Completed: No")
	require.Contains(t, out, "Completed: Yes")
	require.NotContains(t, strings.ToLower(out), "overdue")
}

func TestHTMLEscapesText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, []model.Task{{Text: "<script>alert(1)</script>"}}))
	require.NotContains(t, buf.String(), "<script>")
	require.Contains(t, buf.String(), "&lt;script&gt;")
}

func TestTextReport(t *testing.T) {
	out := Text(sampleTasks())
	require.True(t, strings.HasPrefix(out, Title+"\n"))
	require.Contains(t, out, "1. Finish report")
	require.Contains(t, out, "2. Call mum")
	require.Contains(t, out, "   Due: None")
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "tasks.html")
	require.NoError(t, WriteFile(path, sampleTasks()))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), "Finish report")
}
