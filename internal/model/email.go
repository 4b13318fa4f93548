package model

import (
	"strings"
	"time"
)

// SentEmail is the immutable historical record of one dispatched message.
// It is created only after Resend has accepted the send and never mutated
// afterwards. AccountID references the sender account used; it is set to
// nil (not cascaded) when that account is later deleted.
type SentEmail struct {
	ID        string
	From      string
	To        []string
	CC        []string
	BCC       []string
	Subject   string
	HTMLBody  string
	TextBody  string
	SentAt    time.Time
	ResendID  string
	AccountID *string

	// Attachments are owned by the email: deleting the email deletes them.
	Attachments []StoredAttachment
}

// RecipientsSummary returns the To addresses joined for list display.
func (e SentEmail) RecipientsSummary() string {
	return strings.Join(e.To, ", ")
}

// HasAttachments reports whether the email has any stored attachments.
func (e SentEmail) HasAttachments() bool {
	return len(e.Attachments) > 0
}

// AttachmentCount returns the number of stored attachments.
func (e SentEmail) AttachmentCount() int {
	return len(e.Attachments)
}

// StoredAttachment is the metadata row for one attachment file persisted
// on local disk. LocalPath is relative to the attachments base directory
// so the base directory can move without invalidating stored paths. The
// file itself is not tracked by the database; callers deleting a
// SentEmail must remove its attachment folder as well.
type StoredAttachment struct {
	ID          string    `db:"id"`
	EmailID     string    `db:"email_id"`
	Filename    string    `db:"filename"`
	ContentType string    `db:"content_type"`
	FileSize    int64     `db:"file_size"`
	LocalPath   string    `db:"local_path"`
	CreatedAt   time.Time `db:"created_at"`
}
