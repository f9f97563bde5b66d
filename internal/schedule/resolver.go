package schedule

import (
	"time"

	"github.com/orderhub/orderhub-backend/pkg/config"
)

// deliveredAtHour is the fixed time-of-day delivery dates are normalized to.
// Noon avoids day shifts around DST transitions.
const deliveredAtHour = 12

// Rule is a supplier's weekly delivery recurrence: ISO weekday numbers
// (1 = Monday .. 7 = Sunday) plus an optional daily order cutoff.
type Rule struct {
	Days         []int
	CutoffHour   *int
	CutoffMinute *int
}

// Resolver computes the next delivery date for a recurrence rule relative to
// a reference instant.
type Resolver struct {
	defaultCutoffHour   int
	defaultCutoffMinute int
}

func NewResolver(cfg config.CheckoutConfig) *Resolver {
	return &Resolver{
		defaultCutoffHour:   cfg.DefaultCutoffHour,
		defaultCutoffMinute: cfg.DefaultCutoffMinute,
	}
}

// NextDeliveryDate returns the next date on which delivery occurs, normalized
// to a fixed time-of-day, and false if the rule has no configured days.
//
// For each configured day the forward distance from the reference day is
// 0..6, wrapping over the week. A distance of 0 means delivery is today: if
// the reference instant is already past the cutoff, today's window has
// closed and the distance becomes a full week instead. The smallest distance
// across all configured days wins.
func (r *Resolver) NextDeliveryDate(rule Rule, ref time.Time) (time.Time, bool) {
	best := -1
	for _, day := range rule.Days {
		if day < 1 || day > 7 {
			continue
		}
		dist := (day - isoWeekday(ref) + 7) % 7
		if dist == 0 && r.pastCutoff(rule, ref) {
			dist = 7
		}
		if best == -1 || dist < best {
			best = dist
		}
	}
	if best == -1 {
		return time.Time{}, false
	}

	next := ref.AddDate(0, 0, best)
	return time.Date(next.Year(), next.Month(), next.Day(), deliveredAtHour, 0, 0, 0, ref.Location()), true
}

func (r *Resolver) pastCutoff(rule Rule, ref time.Time) bool {
	hour := r.defaultCutoffHour
	minute := r.defaultCutoffMinute
	if rule.CutoffHour != nil {
		hour = *rule.CutoffHour
	}
	if rule.CutoffMinute != nil {
		minute = *rule.CutoffMinute
	}
	// Strictly after: an order placed exactly at the cutoff still makes today.
	return ref.Hour()*60+ref.Minute() > hour*60+minute
}

// isoWeekday maps Go's Sunday-based weekday to ISO numbering (Monday = 1).
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
