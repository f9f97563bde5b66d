package types

import "strings"

// Address holds a delivery address as edited by the buyer. Stored as jsonb.
type Address struct {
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city"`
	PostalCode string  `json:"postal_code"`
	Country    string  `json:"country"`
}

// IsZero reports whether no field carries a value.
func (a Address) IsZero() bool {
	return strings.TrimSpace(a.Line1) == "" &&
		a.Line2 == nil &&
		strings.TrimSpace(a.City) == "" &&
		strings.TrimSpace(a.PostalCode) == "" &&
		strings.TrimSpace(a.Country) == ""
}

// OneLine renders the address as a single comma-separated line.
func (a Address) OneLine() string {
	parts := make([]string, 0, 5)
	for _, part := range []string{a.Line1, deref(a.Line2), a.City, a.PostalCode, a.Country} {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, ", ")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
