package types

import "strings"

// ContactInfo is the buyer-editable order contact for a supplier. Stored as jsonb.
type ContactInfo struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone,omitempty"`
}

// HasEmail reports whether a non-blank email is on file.
func (c ContactInfo) HasEmail() bool {
	return strings.TrimSpace(c.Email) != ""
}
