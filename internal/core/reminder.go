package core

import (
	"sort"
	"time"
)

const (
	// OneShotReminderLimit caps how many non repeating reminders are considered.
	OneShotReminderLimit = 5
	// UpcomingReminderLimit is how many reminders the dashboard shows.
	UpcomingReminderLimit = 3
)

// SelectUpcoming picks the next reminders to display.
//
// Candidates are ordered by (month, day) ignoring the year and kept when that
// pair is not before today's. Every repeat frequency is compared the same way,
// so a weekly or daily reminder only shows up while its stored month and day
// are still ahead in the current year.
func SelectUpcoming(candidates []Reminder, today time.Time, limit int) []Reminder {
	sorted := make([]Reminder, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return monthDayBefore(sorted[i].Date, sorted[j].Date)
	})

	out := make([]Reminder, 0, limit)
	for _, r := range sorted {
		if len(out) == limit {
			break
		}
		if monthDayBefore(r.Date, today) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func monthDayBefore(a, b time.Time) bool {
	if a.Month() != b.Month() {
		return a.Month() < b.Month()
	}
	return a.Day() < b.Day()
}
