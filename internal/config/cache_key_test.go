package config

import (
	"testing"
	"time"
)

func TestWeeklyUsageKey(t *testing.T) {
	tests := []struct {
		name string
		date string
		want string
	}{
		{"midweek", "2026-08-27", "usage:u1:2026-W35"},
		{"sunday shares the week's key", "2026-08-30", "usage:u1:2026-W35"},
		{"next monday rolls the week", "2026-08-31", "usage:u1:2026-W36"},
		{"january 1st can belong to the prior iso year", "2027-01-01", "usage:u1:2026-W53"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day, err := time.Parse("2006-01-02", tt.date)
			if err != nil {
				t.Fatalf("parse %q: %v", tt.date, err)
			}
			if got := CacheKey.WeeklyUsageKey("u1", day); got != tt.want {
				t.Errorf("WeeklyUsageKey = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSectionResultKey(t *testing.T) {
	got := CacheKey.SectionResultKey("course-1", "section-2")
	want := "seneca:course:course-1:section:section-2:result"
	if got != want {
		t.Errorf("SectionResultKey = %q, want %q", got, want)
	}
}
