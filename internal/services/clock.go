package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseClock parses a boarding-time string. Accepted shapes: "H:MM",
// "HH:MM", optionally suffixed with AM or PM in any case ("7:05 AM",
// "07:05pm"). The returned hour is on the 24h clock.
func ParseClock(raw string) (hour, minute int, err error) {
	s := strings.ToUpper(strings.TrimSpace(raw))

	meridiem := ""
	for _, suf := range []string{"AM", "PM"} {
		if strings.HasSuffix(s, suf) {
			meridiem = suf
			s = strings.TrimSpace(strings.TrimSuffix(s, suf))
			break
		}
	}

	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, raw)
	}
	hour, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, raw)
	}
	minute, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, raw)
	}

	switch meridiem {
	case "":
		if hour < 0 || hour > 23 {
			return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, raw)
		}
	case "AM":
		if hour < 1 || hour > 12 {
			return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, raw)
		}
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour < 1 || hour > 12 {
			return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, raw)
		}
		if hour != 12 {
			hour += 12
		}
	}
	return hour, minute, nil
}

// CombineClock applies a boarding-time string to a calendar date, in the
// date's location.
func CombineClock(raw string, date time.Time) (time.Time, error) {
	h, m, err := ParseClock(raw)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), h, m, 0, 0, date.Location()), nil
}

// FormatClock renders minutes-of-day as "HH:MM", wrapping at 24h.
func FormatClock(minutesOfDay int) string {
	minutesOfDay = ((minutesOfDay % 1440) + 1440) % 1440
	return fmt.Sprintf("%02d:%02d", minutesOfDay/60, minutesOfDay%60)
}

// DayOf truncates a timestamp to its calendar day.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WeekdayName returns the lowercase full English weekday name of t.
func WeekdayName(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(strings.TrimSpace(s), needle) {
			return true
		}
	}
	return false
}
