package domain

import "time"

// DateRange is a half-open window [Start, End) on Workout.StartedAt.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// DayRange returns the window covering the UTC calendar day of d:
// [d 00:00:00.000, d 23:59:59.999).
func DayRange(d time.Time) DateRange {
	d = d.UTC()
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Hour - time.Millisecond)
	return DateRange{Start: start, End: end}
}

// Contains reports whether t falls inside the window.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Now returns the current time at the precision the stores keep.
func Now() time.Time {
	return Normalize(time.Now())
}

// Normalize converts t to UTC at microsecond precision, which is what a
// postgres timestamp column round-trips.
func Normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
