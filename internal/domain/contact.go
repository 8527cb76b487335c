package domain

import (
	"fmt"
	"strings"
	"time"
)

// Contact represents one recipient configuration: who to message and when.
type Contact struct {
	ID        string   `json:"id"`
	Phone     string   `json:"phone"`
	Recipient string   `json:"recipient"`
	Hour      int      `json:"hour"`
	Minute    int      `json:"minute"`
	Weekdays  []string `json:"weekdays"` // lowercase day names, e.g. "monday"
	Enabled   bool     `json:"enabled"`
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday resolves a lowercase-insensitive day name to time.Weekday.
func ParseWeekday(s string) (time.Weekday, error) {
	d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("%w: invalid weekday %q", ErrValidation, s)
	}
	return d, nil
}

// ExpandWeekdays normalizes a list of day names, expanding the shortcuts
// "weekdays", "weekend" and "all". Duplicates are collapsed, order is
// Monday-first for stable display.
func ExpandWeekdays(days []string) ([]string, error) {
	set := make(map[time.Weekday]bool, 7)
	for _, d := range days {
		switch strings.ToLower(strings.TrimSpace(d)) {
		case "weekdays":
			for wd := time.Monday; wd <= time.Friday; wd++ {
				set[wd] = true
			}
		case "weekend":
			set[time.Saturday] = true
			set[time.Sunday] = true
		case "all":
			for wd := time.Sunday; wd <= time.Saturday; wd++ {
				set[wd] = true
			}
		default:
			wd, err := ParseWeekday(d)
			if err != nil {
				return nil, err
			}
			set[wd] = true
		}
	}
	var out []string
	for i := 0; i < 7; i++ {
		wd := time.Weekday((int(time.Monday) + i) % 7)
		if set[wd] {
			out = append(out, strings.ToLower(wd.String()))
		}
	}
	return out, nil
}

// Validate checks the contact invariants: non-empty phone, sane time fields
// and a non-empty, well-formed weekday set.
func (c *Contact) Validate() error {
	if strings.TrimSpace(c.Phone) == "" {
		return fmt.Errorf("%w: phone number is empty", ErrValidation)
	}
	if strings.TrimSpace(c.Recipient) == "" {
		return fmt.Errorf("%w: recipient name is empty", ErrValidation)
	}
	if c.Hour < 0 || c.Hour > 23 {
		return fmt.Errorf("%w: hour %d out of range", ErrValidation, c.Hour)
	}
	if c.Minute < 0 || c.Minute > 59 {
		return fmt.Errorf("%w: minute %d out of range", ErrValidation, c.Minute)
	}
	if len(c.Weekdays) == 0 {
		return fmt.Errorf("%w: weekday set is empty", ErrValidation)
	}
	for _, d := range c.Weekdays {
		if _, err := ParseWeekday(d); err != nil {
			return err
		}
	}
	return nil
}

// RunsOn reports whether the contact's schedule includes the given weekday.
func (c *Contact) RunsOn(wd time.Weekday) bool {
	for _, d := range c.Weekdays {
		if parsed, err := ParseWeekday(d); err == nil && parsed == wd {
			return true
		}
	}
	return false
}

// TimeLabel returns the scheduled time as HH:MM.
func (c *Contact) TimeLabel() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}
