package registration

import (
	"errors"
	"testing"
	"time"
)

func TestValidateCreate(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)

	tests := []struct {
		name       string
		now        time.Time
		quota      int
		registered int
		duplicate  bool
		wantErr    error
	}{
		{
			name:    "before sales start",
			now:     start.Add(-time.Minute),
			quota:   10,
			wantErr: ErrSalesNotStarted,
		},
		{
			name:  "exactly at sales start succeeds",
			now:   start,
			quota: 10,
		},
		{
			name:    "after sales end",
			now:     end.Add(time.Second),
			quota:   10,
			wantErr: ErrSalesEnded,
		},
		{
			name:  "exactly at sales end succeeds",
			now:   end,
			quota: 10,
		},
		{
			name:       "quota full",
			now:        start.Add(time.Hour),
			quota:      5,
			registered: 5,
			wantErr:    ErrQuotaFull,
		},
		{
			name:       "last slot available",
			now:        start.Add(time.Hour),
			quota:      5,
			registered: 4,
		},
		{
			name:      "duplicate registration",
			now:       start.Add(time.Hour),
			quota:     10,
			duplicate: true,
			wantErr:   ErrAlreadyRegistered,
		},
		{
			name:       "quota checked before duplicate",
			now:        start.Add(time.Hour),
			quota:      1,
			registered: 1,
			duplicate:  true,
			wantErr:    ErrQuotaFull,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCreate(start, end, tt.quota, tt.registered, tt.duplicate, tt.now)

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected success, got %v", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
