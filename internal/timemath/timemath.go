package timemath

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	SecondsPerDay = 24 * 3600
	DateLayout    = "2006-01-02"

	// MaxDurationHours keeps h*3600+59*60+59 inside an int.
	MaxDurationHours = (math.MaxInt - 3599) / 3600
)

var (
	ErrInvalidClock    = errors.New("invalid clock time")
	ErrInvalidDuration = errors.New("invalid duration")
	ErrInvalidMonth    = errors.New("invalid month")
)

var (
	clockPattern    = regexp.MustCompile(`^(\d{1,2}):(\d{2}):(\d{2})\s+([aApP][mM])$`)
	durationPattern = regexp.MustCompile(`^(\d+):(\d{2}):(\d{2})$`)
)

// Window is a [Start, End) range of seconds since midnight.
type Window struct {
	Start int
	End   int
}

// ToSeconds converts a 12-hour clock time such as "6:01:20 am" to seconds
// since midnight.
func ToSeconds(clock string) (int, error) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(clock))
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, clock)
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	if hours < 1 || hours > 12 || minutes > 59 || seconds > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, clock)
	}

	pm := strings.EqualFold(m[4], "pm")
	if !pm && hours == 12 {
		hours = 0
	}
	if pm && hours != 12 {
		hours += 12
	}
	return hours*3600 + minutes*60 + seconds, nil
}

// ValidClock reports whether s is a well-formed 12-hour clock time.
func ValidClock(s string) bool {
	_, err := ToSeconds(s)
	return err == nil
}

// ValidDate reports whether s is a real calendar date in YYYY-MM-DD form.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// FormatDuration renders seconds as h:mm:ss. Hours are not padded and may
// exceed 24. Negative input renders as 0:00:00.
func FormatDuration(totalSeconds int) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
}

// ParseDuration is the inverse of FormatDuration.
func ParseDuration(s string) (int, error) {
	m := durationPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	hours, err := strconv.Atoi(m[1])
	if err != nil || hours > MaxDurationHours {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	if minutes > 59 || seconds > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	return hours*3600 + minutes*60 + seconds, nil
}

// span returns start and end in seconds, with end pushed past midnight when
// the shift crosses it.
func span(start, end string) (int, int, error) {
	s, err := ToSeconds(start)
	if err != nil {
		return 0, 0, err
	}
	e, err := ToSeconds(end)
	if err != nil {
		return 0, 0, err
	}
	if e < s {
		e += SecondsPerDay
	}
	return s, e, nil
}

// ShiftDuration returns the elapsed time between two clock times.
func ShiftDuration(start, end string) (string, error) {
	s, e, err := span(start, end)
	if err != nil {
		return "", err
	}
	return FormatDuration(e - s), nil
}

// IdleTime returns the part of the shift that falls outside w.
func IdleTime(start, end string, w Window) (string, error) {
	s, e, err := span(start, end)
	if err != nil {
		return "", err
	}

	idle := 0
	if s < w.Start {
		idle += max(0, min(e, w.Start)-s)
	}
	if e > w.End {
		idle += max(0, e-max(s, w.End))
	}
	return FormatDuration(idle), nil
}

// ActiveTime subtracts idle from shift. The result never goes below zero.
func ActiveTime(shift, idle string) (string, error) {
	shiftSeconds, err := ParseDuration(shift)
	if err != nil {
		return "", err
	}
	idleSeconds, err := ParseDuration(idle)
	if err != nil {
		return "", err
	}
	return FormatDuration(shiftSeconds - idleSeconds), nil
}

// ParseMonth accepts "4", "04" and similar, returning 1-12.
func ParseMonth(s string) (int, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	m, err := strconv.Atoi(s)
	if err != nil || m < 1 || m > 12 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return m, nil
}

// MonthOf returns the month component of a YYYY-MM-DD date, or 0 if the
// date does not parse.
func MonthOf(date string) int {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return 0
	}
	return int(t.Month())
}
