package enums

import "fmt"

// ReadinessStatus summarizes whether a supplier order can be sent, is blocked,
// has been drafted, or has already gone out.
type ReadinessStatus string

const (
	ReadinessStatusReady          ReadinessStatus = "ready"
	ReadinessStatusPricingPending ReadinessStatus = "pricing_pending"
	ReadinessStatusMinimumNotMet  ReadinessStatus = "minimum_not_met"
	ReadinessStatusDraftCreated   ReadinessStatus = "draft_created"
	ReadinessStatusSent           ReadinessStatus = "sent"
)

var validReadinessStatuses = []ReadinessStatus{
	ReadinessStatusReady,
	ReadinessStatusPricingPending,
	ReadinessStatusMinimumNotMet,
	ReadinessStatusDraftCreated,
	ReadinessStatusSent,
}

// String implements fmt.Stringer.
func (s ReadinessStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ReadinessStatus.
func (s ReadinessStatus) IsValid() bool {
	for _, candidate := range validReadinessStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseReadinessStatus converts raw input into a ReadinessStatus.
func ParseReadinessStatus(value string) (ReadinessStatus, error) {
	for _, candidate := range validReadinessStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid readiness status %q", value)
}
