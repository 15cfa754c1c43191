package export

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Joseda-hg/studyplanner/internal/model"
)

const Title = "Smart Study Planner Tasks"

//go:embed templates/report.tmpl
var templateFS embed.FS

var reportTemplate = template.Must(template.ParseFS(templateFS, "templates/report.tmpl"))

// Entry is one report line. Reports carry no overdue status.
type Entry struct {
	Text      string
	Category  string
	Priority  string
	Due       string
	Completed string
}

func Entries(tasks []model.Task) []Entry {
	entries := make([]Entry, 0, len(tasks))
	for _, task := range tasks {
		entries = append(entries, Entry{
			Text:      task.Text,
			Category:  string(task.Category),
			Priority:  string(task.Priority),
			Due:       dueOrNone(task.DueDate),
			Completed: yesNo(task.Completed),
		})
	}
	return entries
}

func HTML(w io.Writer, tasks []model.Task) error {
	data := struct {
		Title   string
		Entries []Entry
	}{Title: Title, Entries: Entries(tasks)}

	if err := reportTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func Text(tasks []model.Task) string {
	var b strings.Builder
	b.WriteString(Title + "\n")
	b.WriteString(strings.Repeat("=", len(Title)) + "\n")
	for i, entry := range Entries(tasks) {
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, entry.Text)
		fmt.Fprintf(&b, "   Category: %s\n", entry.Category)
		fmt.Fprintf(&b, "   Priority: %s\n", entry.Priority)
		fmt.Fprintf(&b, "   Due: %s\n", entry.Due)
		fmt.Fprintf(&b, "   Completed: %s\n", entry.Completed)
	}
	return b.String()
}

func WriteFile(path string, tasks []model.Task) error {
	var buf bytes.Buffer
	if err := HTML(&buf, tasks); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

func dueOrNone(value string) string {
	if strings.TrimSpace(value) == "" {
		return "None"
	}
	return value
}

func yesNo(value bool) string {
	if value {
		return "Yes"
	}
	return "No"
}
