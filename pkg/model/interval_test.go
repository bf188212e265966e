package model

import (
	"testing"
	"time"
)

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("failed to parse time %q: %v", value, err)
	}
	return parsed
}

func TestInterval_IsValid(t *testing.T) {
	base := mustParse(t, "2026-09-01T10:00:00Z")

	tests := []struct {
		name     string
		interval Interval
		want     bool
	}{
		{
			name:     "well formed",
			interval: NewInterval(base, base.Add(time.Hour)),
			want:     true,
		},
		{
			name:     "zero length",
			interval: NewInterval(base, base),
			want:     false,
		},
		{
			name:     "inverted",
			interval: NewInterval(base.Add(time.Hour), base),
			want:     false,
		},
		{
			name:     "zero values",
			interval: Interval{},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.interval.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInterval_Overlaps(t *testing.T) {
	base := mustParse(t, "2026-09-01T10:00:00Z")

	tests := []struct {
		name string
		a    Interval
		b    Interval
		want bool
	}{
		{
			name: "identical intervals",
			a:    NewInterval(base, base.Add(time.Hour)),
			b:    NewInterval(base, base.Add(time.Hour)),
			want: true,
		},
		{
			name: "partial overlap",
			a:    NewInterval(base, base.Add(time.Hour)),
			b:    NewInterval(base.Add(30*time.Minute), base.Add(90*time.Minute)),
			want: true,
		},
		{
			name: "contained",
			a:    NewInterval(base, base.Add(2*time.Hour)),
			b:    NewInterval(base.Add(30*time.Minute), base.Add(time.Hour)),
			want: true,
		},
		{
			name: "adjacent intervals share a boundary",
			a:    NewInterval(base, base.Add(time.Hour)),
			b:    NewInterval(base.Add(time.Hour), base.Add(2*time.Hour)),
			want: false,
		},
		{
			name: "adjacent in the other order",
			a:    NewInterval(base.Add(time.Hour), base.Add(2*time.Hour)),
			b:    NewInterval(base, base.Add(time.Hour)),
			want: false,
		},
		{
			name: "fully disjoint",
			a:    NewInterval(base, base.Add(time.Hour)),
			b:    NewInterval(base.Add(3*time.Hour), base.Add(4*time.Hour)),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			// Overlap is symmetric.
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("Overlaps() reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInterval_Days(t *testing.T) {
	tests := []struct {
		name     string
		interval Interval
		want     []string
	}{
		{
			name: "single day",
			interval: Interval{
				StartsAt: mustParse(t, "2026-09-01T10:00:00Z"),
				EndsAt:   mustParse(t, "2026-09-01T11:00:00Z"),
			},
			want: []string{"2026-09-01"},
		},
		{
			name: "spans midnight",
			interval: Interval{
				StartsAt: mustParse(t, "2026-09-01T23:00:00Z"),
				EndsAt:   mustParse(t, "2026-09-02T01:00:00Z"),
			},
			want: []string{"2026-09-01", "2026-09-02"},
		},
		{
			name: "ends exactly at midnight",
			interval: Interval{
				StartsAt: mustParse(t, "2026-09-01T22:00:00Z"),
				EndsAt:   mustParse(t, "2026-09-02T00:00:00Z"),
			},
			want: []string{"2026-09-01"},
		},
		{
			name: "three days",
			interval: Interval{
				StartsAt: mustParse(t, "2026-09-01T12:00:00Z"),
				EndsAt:   mustParse(t, "2026-09-03T12:00:00Z"),
			},
			want: []string{"2026-09-01", "2026-09-02", "2026-09-03"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days := tt.interval.Days()
			if len(days) != len(tt.want) {
				t.Fatalf("Days() returned %d days, want %d", len(days), len(tt.want))
			}
			for i, day := range days {
				if got := day.Format("2006-01-02"); got != tt.want[i] {
					t.Errorf("Days()[%d] = %s, want %s", i, got, tt.want[i])
				}
			}
		})
	}
}

func TestConflicts(t *testing.T) {
	base := mustParse(t, "2026-09-01T10:00:00Z")
	candidate := NewInterval(base, base.Add(time.Hour))

	existing := []Interval{
		NewInterval(base.Add(-2*time.Hour), base.Add(-time.Hour)),
		NewInterval(base.Add(2*time.Hour), base.Add(3*time.Hour)),
	}
	if Conflicts(candidate, existing) {
		t.Error("expected no conflict against disjoint intervals")
	}

	existing = append(existing, NewInterval(base.Add(30*time.Minute), base.Add(2*time.Hour)))
	if !Conflicts(candidate, existing) {
		t.Error("expected conflict against overlapping interval")
	}

	if Conflicts(candidate, nil) {
		t.Error("expected no conflict against empty set")
	}
}

func TestDayWindow(t *testing.T) {
	window := DayWindow(mustParse(t, "2026-09-01T15:30:00Z"))

	if got := window.StartsAt.Format(time.RFC3339); got != "2026-09-01T00:00:00Z" {
		t.Errorf("window start = %s, want midnight", got)
	}
	if got := window.Duration(); got != 24*time.Hour {
		t.Errorf("window duration = %s, want 24h", got)
	}
}
