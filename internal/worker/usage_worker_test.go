package worker

import (
	"strings"
	"testing"
)

func TestDecodeUsagePayload(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{
			name: "valid payload",
			raw:  `{"user_id":"6ba7b810-9dad-11d1-80b4-00c04fd430c8","week_start":"2026-08-24","used_at":1756500000}`,
		},
		{
			name:    "broken json",
			raw:     `{"user_id":`,
			wantErr: "unexpected end",
		},
		{
			name:    "unparsable user id",
			raw:     `{"user_id":"not-a-uuid","week_start":"2026-08-24","used_at":1756500000}`,
			wantErr: "invalid user id",
		},
		{
			name:    "empty user id",
			raw:     `{"week_start":"2026-08-24","used_at":1756500000}`,
			wantErr: "invalid user id",
		},
		{
			name:    "unparsable week start",
			raw:     `{"user_id":"6ba7b810-9dad-11d1-80b4-00c04fd430c8","week_start":"next monday","used_at":1756500000}`,
			wantErr: "invalid week start",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := decodeUsagePayload(tt.raw)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("decodeUsagePayload failed: %v", err)
				}
				if p.WeekStart != "2026-08-24" {
					t.Errorf("WeekStart = %q, want %q", p.WeekStart, "2026-08-24")
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got none")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}
