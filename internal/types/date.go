package types

import (
	"time"
)

// Date returns midnight UTC of the given calendar day
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// TruncateToDay drops the time of day and normalizes to UTC
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return Date(y, m, d)
}

// DaysInMonth returns the length of the calendar month containing t (28..31)
func DaysInMonth(t time.Time) int {
	y, m, _ := t.Date()
	return Date(y, m+1, 0).Day()
}

// DaysInclusive counts calendar days in [start, end]. Returns 0 when end is before start.
func DaysInclusive(start, end time.Time) int {
	s, e := TruncateToDay(start), TruncateToDay(end)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s).Hours()/24) + 1
}

// AddClampedDate adds years and months without overflowing into the next
// month, e.g. Jan 31 + 1 month is Feb 28 (or 29), never Mar 3.
func AddClampedDate(t time.Time, years, months, days int) time.Time {
	y, m, d := t.Date()
	h, min, sec := t.Clock()

	newY := y + years
	newM := time.Month(int(m) + months)
	for newM > 12 {
		newM -= 12
		newY++
	}
	for newM < 1 {
		newM += 12
		newY--
	}

	lastDay := time.Date(newY, newM+1, 0, 0, 0, 0, 0, t.Location()).Day()
	if d > lastDay {
		d = lastDay
	}

	return time.Date(newY, newM, d, h, min, sec, t.Nanosecond(), t.Location()).AddDate(0, 0, days)
}

// MinTime returns the earlier of two times
func MinTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// MaxTime returns the later of two times
func MaxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
