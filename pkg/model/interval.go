package model

import (
	"fmt"
	"time"
)

// Interval is a half-open time range [StartsAt, EndsAt).
// Two intervals that share a boundary do not overlap.
type Interval struct {
	StartsAt time.Time `json:"starts_at" bson:"starts_at"`
	EndsAt   time.Time `json:"ends_at" bson:"ends_at"`
}

func NewInterval(startsAt, endsAt time.Time) Interval {
	return Interval{StartsAt: startsAt, EndsAt: endsAt}
}

// IsValid reports whether the interval is well-formed.
// Zero-length intervals are not valid.
func (i Interval) IsValid() bool {
	return i.StartsAt.Before(i.EndsAt)
}

func (i Interval) Duration() time.Duration {
	return i.EndsAt.Sub(i.StartsAt)
}

// Overlaps reports whether i and other intersect under half-open semantics:
// a.start < b.end AND b.start < a.end.
func (i Interval) Overlaps(other Interval) bool {
	return i.StartsAt.Before(other.EndsAt) && other.StartsAt.Before(i.EndsAt)
}

// Days returns the UTC calendar days the interval touches, truncated to
// midnight. Used to decide which cached availability views to invalidate.
func (i Interval) Days() []time.Time {
	var days []time.Time
	day := i.StartsAt.UTC().Truncate(24 * time.Hour)
	// EndsAt is exclusive, so an interval ending exactly at midnight does
	// not touch that day.
	last := i.EndsAt.Add(-time.Nanosecond).UTC().Truncate(24 * time.Hour)
	for !day.After(last) {
		days = append(days, day)
		day = day.Add(24 * time.Hour)
	}
	return days
}

func (i Interval) String() string {
	return fmt.Sprintf("[%s, %s)", i.StartsAt.Format(time.RFC3339), i.EndsAt.Format(time.RFC3339))
}

// Conflicts reports whether candidate overlaps any of existing.
// Callers are responsible for filtering existing down to states that
// actually block admission.
func Conflicts(candidate Interval, existing []Interval) bool {
	for _, e := range existing {
		if candidate.Overlaps(e) {
			return true
		}
	}
	return false
}

// DayWindow returns the [00:00, 24:00) UTC interval for the day containing t.
func DayWindow(t time.Time) Interval {
	start := t.UTC().Truncate(24 * time.Hour)
	return Interval{StartsAt: start, EndsAt: start.Add(24 * time.Hour)}
}
