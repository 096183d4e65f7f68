package util

import "time"

// DueDates generates the installment due-date schedule for a plan.
// Monthly cadence advances calendar months from the start date (AddDate
// normalization applies, e.g. Jan 31 + 1 month = Mar 2/3), weekly
// advances 7 days, and a one-time plan collapses to a single date.
func DueDates(start time.Time, cadence string, count int) []time.Time {
	if count < 1 {
		return nil
	}
	if cadence == "one_time" {
		return []time.Time{start}
	}

	dates := make([]time.Time, count)
	for i := 0; i < count; i++ {
		switch cadence {
		case "weekly":
			dates[i] = start.AddDate(0, 0, 7*i)
		default: // monthly
			dates[i] = start.AddDate(0, i, 0)
		}
	}
	return dates
}

// DueSoonWindow reports whether due falls within the reminder window:
// already past due, or due within the next `days` days.
func DueSoonWindow(due, now time.Time, days int) bool {
	return due.Before(now.AddDate(0, 0, days))
}
