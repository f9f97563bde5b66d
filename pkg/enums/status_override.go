package enums

import "fmt"

// StatusOverride records a user-driven transition layered on top of the
// derived readiness status. Absence of an override means "use derived status".
type StatusOverride string

const (
	StatusOverrideDraftCreated StatusOverride = "draft_created"
	StatusOverrideSent         StatusOverride = "sent"
)

var validStatusOverrides = []StatusOverride{
	StatusOverrideDraftCreated,
	StatusOverrideSent,
}

// String implements fmt.Stringer.
func (o StatusOverride) String() string {
	return string(o)
}

// IsValid reports whether the value is a known StatusOverride.
func (o StatusOverride) IsValid() bool {
	for _, candidate := range validStatusOverrides {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseStatusOverride converts raw input into a StatusOverride.
func ParseStatusOverride(value string) (StatusOverride, error) {
	for _, candidate := range validStatusOverrides {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid status override %q", value)
}
