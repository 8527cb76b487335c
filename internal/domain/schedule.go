package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DueAt reports whether the contact's schedule matches the given wall-clock
// minute. Seconds are ignored; the scheduler's once-per-minute guard handles
// repeated hits within the same minute.
func DueAt(now time.Time, c *Contact) bool {
	if !c.Enabled {
		return false
	}
	return c.RunsOn(now.Weekday()) && now.Hour() == c.Hour && now.Minute() == c.Minute
}

// NextRun computes the next wall-clock occurrence of the contact's schedule
// strictly after now, in now's location. ok is false when the weekday set is
// empty or unparsable.
func NextRun(now time.Time, c *Contact) (next time.Time, ok bool) {
	if len(c.Weekdays) == 0 {
		return time.Time{}, false
	}
	set := make(map[time.Weekday]bool, len(c.Weekdays))
	for _, d := range c.Weekdays {
		wd, err := ParseWeekday(d)
		if err != nil {
			return time.Time{}, false
		}
		set[wd] = true
	}

	// Today counts only if the scheduled minute is still ahead.
	if set[now.Weekday()] {
		at := time.Date(now.Year(), now.Month(), now.Day(), c.Hour, c.Minute, 0, 0, now.Location())
		if at.After(now) {
			return at, true
		}
	}
	for ahead := 1; ahead <= 7; ahead++ {
		day := now.AddDate(0, 0, ahead)
		if set[day.Weekday()] {
			return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, now.Location()), true
		}
	}
	return time.Time{}, false
}

// UpcomingRun pairs a contact with its next concrete run time.
type UpcomingRun struct {
	Contact Contact
	At      time.Time
}

// Upcoming returns the runs scheduled within the next `days` days, soonest
// first. Disabled contacts are skipped.
func Upcoming(now time.Time, contacts []Contact, days int) []UpcomingRun {
	horizon := now.AddDate(0, 0, days)
	var runs []UpcomingRun
	for _, c := range contacts {
		if !c.Enabled {
			continue
		}
		at, ok := NextRun(now, &c)
		if !ok || at.After(horizon) {
			continue
		}
		runs = append(runs, UpcomingRun{Contact: c, At: at})
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].At.Before(runs[j].At) })
	return runs
}

// SummarizeUpcoming renders a one-line summary of the next week of runs.
func SummarizeUpcoming(now time.Time, contacts []Contact) string {
	runs := Upcoming(now, contacts, 7)
	if len(runs) == 0 {
		return "No upcoming schedules in the next 7 days."
	}
	parts := make([]string, 0, len(runs))
	for _, r := range runs {
		parts = append(parts, fmt.Sprintf("%s %s - %s", r.At.Weekday(), r.Contact.TimeLabel(), r.Contact.Recipient))
	}
	return strings.Join(parts, "; ")
}
