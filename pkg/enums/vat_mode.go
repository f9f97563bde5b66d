package enums

import "fmt"

// VATMode selects which unit price feeds the section totals.
type VATMode string

const (
	VATModeNet   VATMode = "net"
	VATModeGross VATMode = "gross"
)

var validVATModes = []VATMode{
	VATModeNet,
	VATModeGross,
}

// String implements fmt.Stringer.
func (m VATMode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known VATMode.
func (m VATMode) IsValid() bool {
	for _, candidate := range validVATModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseVATMode converts raw input into a VATMode, defaulting to net when empty.
func ParseVATMode(value string) (VATMode, error) {
	if value == "" {
		return VATModeNet, nil
	}
	for _, candidate := range validVATModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vat mode %q", value)
}
