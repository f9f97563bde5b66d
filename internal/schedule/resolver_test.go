package schedule

import (
	"testing"
	"time"

	"github.com/orderhub/orderhub-backend/pkg/config"
)

func newTestResolver() *Resolver {
	return NewResolver(config.CheckoutConfig{DefaultCutoffHour: 9, DefaultCutoffMinute: 0})
}

func intPtr(v int) *int { return &v }

func TestNextDeliveryDate(t *testing.T) {
	// 2025-08-13 is a Wednesday.
	wednesday := time.Date(2025, 8, 13, 10, 0, 0, 0, time.UTC)
	tuesday := time.Date(2025, 8, 12, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		rule       Rule
		ref        time.Time
		wantOffset int
		wantOK     bool
	}{
		{
			name:       "next configured day later this week",
			rule:       Rule{Days: []int{2, 5}, CutoffHour: intPtr(14), CutoffMinute: intPtr(0)},
			ref:        wednesday,
			wantOffset: 2, // Friday
			wantOK:     true,
		},
		{
			name:       "today before cutoff delivers today",
			rule:       Rule{Days: []int{2}, CutoffHour: intPtr(14), CutoffMinute: intPtr(0)},
			ref:        tuesday.Add(9 * time.Hour),
			wantOffset: 0,
			wantOK:     true,
		},
		{
			name:       "today after cutoff pushes a full week",
			rule:       Rule{Days: []int{2}, CutoffHour: intPtr(14), CutoffMinute: intPtr(0)},
			ref:        tuesday.Add(15 * time.Hour),
			wantOffset: 7,
			wantOK:     true,
		},
		{
			name:       "exactly at cutoff still makes today",
			rule:       Rule{Days: []int{2}, CutoffHour: intPtr(14), CutoffMinute: intPtr(0)},
			ref:        tuesday.Add(14 * time.Hour),
			wantOffset: 0,
			wantOK:     true,
		},
		{
			name:       "wraps over the weekend",
			rule:       Rule{Days: []int{1}}, // Monday, default cutoff 09:00
			ref:        wednesday,
			wantOffset: 5,
			wantOK:     true,
		},
		{
			name:   "no configured days means no schedule",
			rule:   Rule{},
			ref:    wednesday,
			wantOK: false,
		},
		{
			name:       "invalid day numbers are skipped",
			rule:       Rule{Days: []int{0, 8, 5}},
			ref:        wednesday,
			wantOffset: 2,
			wantOK:     true,
		},
	}

	r := newTestResolver()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := r.NextDeliveryDate(tc.rule, tc.ref)
			if ok != tc.wantOK {
				t.Fatalf("expected ok=%v, got %v", tc.wantOK, ok)
			}
			if !tc.wantOK {
				return
			}
			want := tc.ref.AddDate(0, 0, tc.wantOffset)
			if got.Year() != want.Year() || got.Month() != want.Month() || got.Day() != want.Day() {
				t.Fatalf("expected date %v (+%d days), got %v", want.Format("2006-01-02"), tc.wantOffset, got.Format("2006-01-02"))
			}
			if got.Hour() != deliveredAtHour || got.Minute() != 0 {
				t.Fatalf("expected normalized time-of-day, got %v", got.Format("15:04"))
			}
		})
	}
}

func TestNextDeliveryDateOffsetBounds(t *testing.T) {
	r := newTestResolver()
	ref := time.Date(2025, 8, 13, 23, 59, 0, 0, time.UTC)
	for day := 1; day <= 7; day++ {
		got, ok := r.NextDeliveryDate(Rule{Days: []int{day}}, ref)
		if !ok {
			t.Fatalf("day %d: expected a schedule", day)
		}
		offset := int(got.Truncate(24*time.Hour).Sub(ref.Truncate(24*time.Hour)).Hours() / 24)
		if offset < 0 || offset > 7 {
			t.Fatalf("day %d: offset %d out of [0,7]", day, offset)
		}
	}
}
