package model

import "time"

// SenderAccount is a configured sender identity: a verified From address
// plus an optional signature. The Resend API key is never stored on the
// struct; it lives in the OS keyring keyed by the account ID.
type SenderAccount struct {
	ID           string    `db:"id"`
	WebsiteName  string    `db:"website_name"`
	EmailAddress string    `db:"email_address"`
	Signature    string    `db:"signature"`
	IsDefault    bool      `db:"is_default"`
	CreatedAt    time.Time `db:"created_at"`
}

// Domain returns the part of the account's email address after the "@",
// or "" if the address has no domain part.
func (a SenderAccount) Domain() string {
	for i := len(a.EmailAddress) - 1; i >= 0; i-- {
		if a.EmailAddress[i] == '@' {
			return a.EmailAddress[i+1:]
		}
	}
	return ""
}
