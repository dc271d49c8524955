package validation

import (
	"testing"
	"time"
)

func at(hhmm string) time.Time {
	ts, err := time.Parse(time.RFC3339, "2024-01-15T"+hhmm+":00Z")
	if err != nil {
		panic(err)
	}
	return ts
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		s1, e1, s2, e2 time.Time
		want           bool
	}{
		{"partial overlap", at("10:00"), at("11:00"), at("10:30"), at("11:30"), true},
		{"back-to-back does not overlap", at("10:00"), at("11:00"), at("11:00"), at("12:00"), false},
		{"identical intervals overlap", at("10:00"), at("11:00"), at("10:00"), at("11:00"), true},
		{"contained interval", at("10:00"), at("12:00"), at("10:30"), at("11:00"), true},
		{"disjoint", at("10:00"), at("11:00"), at("13:00"), at("14:00"), false},
		{"touching at start", at("11:00"), at("12:00"), at("10:00"), at("11:00"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.s1, tt.e1, tt.s2, tt.e2); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
		})
	}
}

// Overlap must be symmetric, and any non-empty interval overlaps itself.
func TestOverlapsSymmetry(t *testing.T) {
	pairs := [][4]time.Time{
		{at("10:00"), at("11:00"), at("10:30"), at("11:30")},
		{at("10:00"), at("11:00"), at("11:00"), at("12:00")},
		{at("09:00"), at("17:00"), at("12:00"), at("12:30")},
	}
	for _, p := range pairs {
		if Overlaps(p[0], p[1], p[2], p[3]) != Overlaps(p[2], p[3], p[0], p[1]) {
			t.Errorf("Overlaps not symmetric for %v", p)
		}
	}
	if !Overlaps(at("10:00"), at("11:00"), at("10:00"), at("11:00")) {
		t.Error("non-empty interval must overlap itself")
	}
}
