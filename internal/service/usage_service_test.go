package service

import (
	"testing"
	"time"
)

func TestISOWeekStart(t *testing.T) {
	tests := []struct {
		name string
		date string
		want string
	}{
		{"monday maps to itself", "2026-08-24", "2026-08-24"},
		{"midweek maps back to monday", "2026-08-27", "2026-08-24"},
		{"saturday maps back to monday", "2026-08-29", "2026-08-24"},
		{"sunday belongs to the preceding monday", "2026-08-30", "2026-08-24"},
		{"year boundary stays in the old week", "2026-01-01", "2025-12-29"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day, err := time.Parse("2006-01-02", tt.date)
			if err != nil {
				t.Fatalf("parse %q: %v", tt.date, err)
			}
			if got := isoWeekStart(day); got != tt.want {
				t.Errorf("isoWeekStart(%s) = %q, want %q", tt.date, got, tt.want)
			}
		})
	}
}
