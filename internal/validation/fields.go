// Package validation provides pure validation helpers shared by the service
// layer: required-field checks, email format validation, and the half-open
// interval overlap rule used for event scheduling.
package validation

import (
	"net/mail"
	"strings"
)

// NonBlank reports whether s contains at least one non-whitespace character.
func NonBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}

// ValidEmail reports whether s is a syntactically valid email address.
// The address must be bare (no display name) and carry a domain.
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	// Reject "Name <a@b.c>" style input; the stored value must be the address itself.
	if addr.Address != s {
		return false
	}
	at := strings.LastIndex(addr.Address, "@")
	return at > 0 && at < len(addr.Address)-1
}
