package core

import "time"

// DueDate computes an invoice due date from its creation date: the first day
// of the following month plus (termDays − 1) extra days. A 30-day term on any
// March creation therefore falls due April 30. The result is fixed at
// creation and never recomputed.
func DueDate(created time.Time, termDays int) time.Time {
	firstOfNext := time.Date(created.Year(), created.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	return firstOfNext.AddDate(0, 0, termDays-1)
}

// DaysOverdue returns how many whole days the due date lies in the past. The
// second return is false when the due date is today or in the future.
func DaysOverdue(due, today time.Time) (int, bool) {
	d := midnight(today).Sub(midnight(due))
	if d <= 0 {
		return 0, false
	}
	return int(d.Hours() / 24), true
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
