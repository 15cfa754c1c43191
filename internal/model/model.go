package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "1/2/2006, 3:04:05 PM"
)

type Category string

const (
	CategoryGeneral  Category = "General"
	CategoryStudy    Category = "Study"
	CategoryWork     Category = "Work"
	CategoryPersonal Category = "Personal"
)

var Categories = []Category{CategoryGeneral, CategoryStudy, CategoryWork, CategoryPersonal}

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

type Task struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	Category  Category `json:"category"`
	Priority  Priority `json:"priority"`
	DueDate   string   `json:"dueDate"`
	Timestamp string   `json:"timestamp"`
	Completed bool     `json:"completed"`
}

// Due returns the parsed due date. ok is false when the task has no deadline
// or the stored value is not a calendar date.
func (t Task) Due() (due time.Time, ok bool) {
	value := strings.TrimSpace(t.DueDate)
	if value == "" {
		return time.Time{}, false
	}
	parsed, err := time.ParseInLocation(DateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// Draft is the not-yet-submitted input held by a creation form.
type Draft struct {
	Text     string   `json:"text"`
	Category Category `json:"category"`
	Priority Priority `json:"priority"`
	DueDate  string   `json:"dueDate"`
}

func NewDraft() Draft {
	return Draft{Category: CategoryGeneral, Priority: PriorityMedium}
}

func ParseCategory(value string) (Category, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return CategoryGeneral, nil
	}
	for _, category := range Categories {
		if strings.EqualFold(string(category), trimmed) {
			return category, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", value)
}

func ParsePriority(value string) (Priority, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return PriorityMedium, nil
	}
	for _, priority := range Priorities {
		if strings.EqualFold(string(priority), trimmed) {
			return priority, nil
		}
	}
	return "", fmt.Errorf("unknown priority %q", value)
}

func NextCategory(current Category, delta int) Category {
	return cycle(Categories, current, delta)
}

func NextPriority(current Priority, delta int) Priority {
	return cycle(Priorities, current, delta)
}

func cycle[T comparable](order []T, current T, delta int) T {
	index := 0
	for i, value := range order {
		if value == current {
			index = i
			break
		}
	}
	index = ((index+delta)%len(order) + len(order)) % len(order)
	return order[index]
}
