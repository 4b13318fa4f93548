package model

import "regexp"

// emailAddressPattern is the conservative address check used everywhere
// an address is validated before a send is permitted.
var emailAddressPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// ValidEmailAddress reports whether s looks like a deliverable email
// address: local part, "@", domain, and a TLD of at least two letters.
func ValidEmailAddress(s string) bool {
	return emailAddressPattern.MatchString(s)
}
