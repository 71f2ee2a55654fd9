package services

import (
	"errors"
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in     string
		hour   int
		minute int
	}{
		{"7:05", 7, 5},
		{"07:05", 7, 5},
		{"14:30", 14, 30},
		{"0:00", 0, 0},
		{"23:59", 23, 59},
		{"7:05 AM", 7, 5},
		{"7:05am", 7, 5},
		{"7:05 PM", 19, 5},
		{"12:00 AM", 0, 0},
		{"12:00 PM", 12, 0},
		{"12:30 pm", 12, 30},
		{"  8:15 Pm ", 20, 15},
	}
	for _, c := range cases {
		h, m, err := ParseClock(c.in)
		if err != nil {
			t.Errorf("ParseClock(%q) error: %v", c.in, err)
			continue
		}
		if h != c.hour || m != c.minute {
			t.Errorf("ParseClock(%q) = %d:%d, want %d:%d", c.in, h, m, c.hour, c.minute)
		}
	}
}

func TestParseClockRejectsGarbage(t *testing.T) {
	for _, in := range []string{
		"", "seven", "7", "7:60", "24:00", "13:00 PM", "0:30 AM", "7:05:30", "-1:00", "7:-5",
	} {
		if _, _, err := ParseClock(in); !errors.Is(err, ErrInvalidTimeFormat) {
			t.Errorf("ParseClock(%q) = %v, want ErrInvalidTimeFormat", in, err)
		}
	}
}

func TestCombineClock(t *testing.T) {
	date := time.Date(2025, 3, 10, 17, 45, 12, 0, time.Local)
	got, err := CombineClock("7:05 AM", date)
	if err != nil {
		t.Fatalf("CombineClock error: %v", err)
	}
	want := time.Date(2025, 3, 10, 7, 5, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("CombineClock = %v, want %v", got, want)
	}
}

func TestFormatClockWraps(t *testing.T) {
	cases := map[int]string{
		0:        "00:00",
		425:      "07:05",
		1439:     "23:59",
		1440:     "00:00",
		1500:     "01:00",
		2 * 1440: "00:00",
	}
	for in, want := range cases {
		if got := FormatClock(in); got != want {
			t.Errorf("FormatClock(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestWeekdayNameLowercase(t *testing.T) {
	// 2025-03-10 is a Monday.
	d := time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)
	if got := WeekdayName(d); got != "monday" {
		t.Errorf("WeekdayName = %q, want %q", got, "monday")
	}
}
