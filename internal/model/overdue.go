package model

import "time"

// Today truncates now to midnight in its own location.
func Today(now time.Time) time.Time {
	year, month, day := now.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, now.Location())
}

// IsOverdue reports whether an incomplete task's due date falls strictly
// before today. The result is derived on every call and never stored.
func IsOverdue(task Task, today time.Time) bool {
	if task.Completed {
		return false
	}
	due, ok := task.Due()
	if !ok {
		return false
	}
	year, month, day := due.Date()
	dueDay := time.Date(year, month, day, 0, 0, 0, 0, today.Location())
	return dueDay.Before(Today(today))
}
