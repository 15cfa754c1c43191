package tui

import (
	"fmt"
	"time"

	"github.com/Joseda-hg/studyplanner/internal/model"
)

func formatDue(task model.Task) string {
	if task.DueDate == "" {
		return "none"
	}
	return task.DueDate
}

func formatTaskSummary(task model.Task, today time.Time) string {
	box := "[ ]"
	if task.Completed {
		box = "[x]"
	}
	flag := " "
	if model.IsOverdue(task, today) {
		flag = "!"
	}
	return fmt.Sprintf("%s%s %s | %s | %s | %s", flag, box, task.Text, task.Category, task.Priority, formatDue(task))
}

func formatTaskDetail(task model.Task, today time.Time) []string {
	completed := "No"
	if task.Completed {
		completed = "Yes"
	}
	lines := []string{
		task.Text,
		"",
		fmt.Sprintf("Category: %s", task.Category),
		fmt.Sprintf("Priority: %s", task.Priority),
		fmt.Sprintf("Due: %s", formatDue(task)),
		fmt.Sprintf("Completed: %s", completed),
		fmt.Sprintf("Created: %s", task.Timestamp),
	}
	if model.IsOverdue(task, today) {
		lines = append(lines, "", "OVERDUE")
	}
	return lines
}
