package tui

import (
	"fmt"

	"github.com/Joseda-hg/studyplanner/internal/model"
)

const (
	fieldText = iota
	fieldCategory
	fieldPriority
	fieldDue
	fieldCount
)

var fieldLabels = [fieldCount]string{
	fieldText:     "Text",
	fieldCategory: "Category (space/←→)",
	fieldPriority: "Priority (space/←→)",
	fieldDue:      "Due (YYYY-MM-DD)",
}

// formState edits the UI's draft in place; index is the focused field.
type formState struct {
	draft *model.Draft
	index int
}

func (f *formState) value(field int) string {
	switch field {
	case fieldText:
		return f.draft.Text
	case fieldCategory:
		return string(f.draft.Category)
	case fieldPriority:
		return string(f.draft.Priority)
	case fieldDue:
		return f.draft.DueDate
	}
	return ""
}

func (f *formState) isChoice() bool {
	return f.index == fieldCategory || f.index == fieldPriority
}

func (f *formState) cycle(delta int) {
	switch f.index {
	case fieldCategory:
		f.draft.Category = model.NextCategory(f.draft.Category, delta)
	case fieldPriority:
		f.draft.Priority = model.NextPriority(f.draft.Priority, delta)
	}
}

func (f *formState) appendRune(ch rune) {
	switch f.index {
	case fieldText:
		f.draft.Text += string(ch)
	case fieldDue:
		f.draft.DueDate += string(ch)
	}
}

func (f *formState) backspace() {
	trim := func(value string) string {
		runes := []rune(value)
		if len(runes) == 0 {
			return value
		}
		return string(runes[:len(runes)-1])
	}
	switch f.index {
	case fieldText:
		f.draft.Text = trim(f.draft.Text)
	case fieldDue:
		f.draft.DueDate = trim(f.draft.DueDate)
	}
}

func (f *formState) clearField() {
	switch f.index {
	case fieldText:
		f.draft.Text = ""
	case fieldDue:
		f.draft.DueDate = ""
	}
}

func (f *formState) next() {
	if f.index < fieldCount-1 {
		f.index++
	}
}

func (f *formState) prev() {
	if f.index > 0 {
		f.index--
	}
}

func (f *formState) lines() []string {
	lines := make([]string, 0, fieldCount)
	for field := 0; field < fieldCount; field++ {
		prefix := "  "
		if field == f.index {
			prefix = "> "
		}
		lines = append(lines, fmt.Sprintf("%s%s: %s", prefix, fieldLabels[field], f.value(field)))
	}
	return lines
}

func (f *formState) cursorX() int {
	label := fieldLabels[f.index] + ": "
	return len([]rune(label)) + len([]rune(f.value(f.index))) + 2
}
