package domain

import (
	"testing"
	"time"
)

// helper: a Monday. 2025-05-05 was a Monday.
func mustTime(t *testing.T, y int, m time.Month, d, hh, mm int) time.Time {
	t.Helper()
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func testContact() Contact {
	return Contact{
		ID:        "contact_1",
		Phone:     "+15550001111",
		Recipient: "Oksana",
		Hour:      8,
		Minute:    0,
		Weekdays:  []string{"monday"},
		Enabled:   true,
	}
}

func TestDueAt_MatchesScheduledMinute(t *testing.T) {
	c := testContact()
	now := mustTime(t, 2025, time.May, 5, 8, 0) // Monday 08:00
	if !DueAt(now, &c) {
		t.Fatalf("expected contact due at Monday 08:00")
	}
}

func TestDueAt_WrongMinute(t *testing.T) {
	c := testContact()
	now := mustTime(t, 2025, time.May, 5, 8, 1)
	if DueAt(now, &c) {
		t.Fatalf("contact must not be due at 08:01")
	}
}

func TestDueAt_WrongWeekday(t *testing.T) {
	c := testContact()
	now := mustTime(t, 2025, time.May, 6, 8, 0) // Tuesday
	if DueAt(now, &c) {
		t.Fatalf("contact must not be due on Tuesday")
	}
}

func TestDueAt_DisabledContact(t *testing.T) {
	c := testContact()
	c.Enabled = false
	now := mustTime(t, 2025, time.May, 5, 8, 0)
	if DueAt(now, &c) {
		t.Fatalf("disabled contact must never be due")
	}
}

func TestNextRun_LaterToday(t *testing.T) {
	c := testContact()
	now := mustTime(t, 2025, time.May, 5, 6, 30) // Monday 06:30
	next, ok := NextRun(now, &c)
	if !ok {
		t.Fatalf("expected a next run")
	}
	want := mustTime(t, 2025, time.May, 5, 8, 0)
	if !next.Equal(want) {
		t.Fatalf("want %v, got %v", want, next)
	}
}

func TestNextRun_AlreadyPassedToday(t *testing.T) {
	c := testContact()
	now := mustTime(t, 2025, time.May, 5, 9, 0) // Monday 09:00, past 08:00
	next, ok := NextRun(now, &c)
	if !ok {
		t.Fatalf("expected a next run")
	}
	want := mustTime(t, 2025, time.May, 12, 8, 0) // next Monday
	if !next.Equal(want) {
		t.Fatalf("want %v, got %v", want, next)
	}
}

func TestNextRun_ExactlyAtScheduledMinute(t *testing.T) {
	// NextRun is strictly after now; at 08:00:00 sharp the next run is next week.
	c := testContact()
	now := mustTime(t, 2025, time.May, 5, 8, 0)
	next, ok := NextRun(now, &c)
	if !ok {
		t.Fatalf("expected a next run")
	}
	want := mustTime(t, 2025, time.May, 12, 8, 0)
	if !next.Equal(want) {
		t.Fatalf("want %v, got %v", want, next)
	}
}

func TestNextRun_EmptyWeekdays(t *testing.T) {
	c := testContact()
	c.Weekdays = nil
	if _, ok := NextRun(mustTime(t, 2025, time.May, 5, 6, 0), &c); ok {
		t.Fatalf("empty weekday set must have no next run")
	}
}

func TestUpcoming_SortedSoonestFirst(t *testing.T) {
	monday := testContact()
	wednesday := testContact()
	wednesday.ID = "contact_2"
	wednesday.Recipient = "Marta"
	wednesday.Weekdays = []string{"wednesday"}
	wednesday.Hour = 7

	now := mustTime(t, 2025, time.May, 4, 12, 0) // Sunday
	runs := Upcoming(now, []Contact{wednesday, monday}, 7)
	if len(runs) != 2 {
		t.Fatalf("want 2 runs, got %d", len(runs))
	}
	if runs[0].Contact.ID != "contact_1" || runs[1].Contact.ID != "contact_2" {
		t.Fatalf("runs out of order: %s before %s", runs[0].Contact.ID, runs[1].Contact.ID)
	}
}

func TestUpcoming_SkipsDisabled(t *testing.T) {
	c := testContact()
	c.Enabled = false
	runs := Upcoming(mustTime(t, 2025, time.May, 4, 12, 0), []Contact{c}, 7)
	if len(runs) != 0 {
		t.Fatalf("disabled contact must not appear in upcoming runs")
	}
}

func TestSummarizeUpcoming_Empty(t *testing.T) {
	got := SummarizeUpcoming(mustTime(t, 2025, time.May, 4, 12, 0), nil)
	if got != "No upcoming schedules in the next 7 days." {
		t.Fatalf("unexpected summary: %q", got)
	}
}
