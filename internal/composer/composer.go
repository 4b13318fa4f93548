// Package composer implements the email composition workflow: form
// state, validation, signature handling, dispatch through the Resend
// client, and best-effort persistence of sent history.
package composer

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pshrestha/justsend/internal/attachments"
	"github.com/pshrestha/justsend/internal/credential"
	"github.com/pshrestha/justsend/internal/model"
	"github.com/pshrestha/justsend/internal/resend"
	"github.com/pshrestha/justsend/internal/store"
)

var (
	// ErrNoAccountSelected is returned when a send is attempted
	// without a configured sender account.
	ErrNoAccountSelected = errors.New("no sender account selected, please select an account first")

	// ErrSendInProgress is returned when a send is attempted while a
	// previous one is still in flight.
	ErrSendInProgress = errors.New("a send is already in progress")
)

// Composer holds the state of the message being written and orchestrates
// the send. One send is in flight at a time, serialized by a flag; the
// terminal front end is assumed to be the only caller.
type Composer struct {
	To       string
	From     string
	Subject  string
	CC       string
	BCC      string
	ReplyTo  string
	HTMLBody string

	store   store.Store
	storage *attachments.Storage
	creds   credential.Store
	baseURL string

	attachments []resend.Attachment
	account     *model.SenderAccount
	sending     bool
}

// New creates a composer. baseURL overrides the Resend endpoint; pass ""
// for production.
func New(s store.Store, storage *attachments.Storage, creds credential.Store, baseURL string) *Composer {
	return &Composer{
		store:   s,
		storage: storage,
		creds:   creds,
		baseURL: baseURL,
	}
}

// Account returns the active sender account, or nil.
func (c *Composer) Account() *model.SenderAccount {
	return c.account
}

// Sending reports whether a send is currently in flight. The front end
// uses it to disable re-entry.
func (c *Composer) Sending() bool {
	return c.sending
}

// Attachments returns the pending attachment list.
func (c *Composer) Attachments() []resend.Attachment {
	return c.attachments
}

// AddAttachment appends a pending attachment. No dedup is performed.
func (c *Composer) AddAttachment(att resend.Attachment) {
	c.attachments = append(c.attachments, att)
}

// RemoveAttachment removes the pending attachment at index i.
// Out-of-range indexes are ignored.
func (c *Composer) RemoveAttachment(i int) {
	if i < 0 || i >= len(c.attachments) {
		return
	}
	c.attachments = append(c.attachments[:i], c.attachments[i+1:]...)
}

// SetAccount switches the active sender account. If the body still ends
// with the previous account's signature block, that suffix is stripped
// before the new account's signature (if any) is appended, and the From
// address is updated. The strip is an exact string-suffix match on the
// rendered block; a body edited after the signature was appended will
// not match and keeps the old signature.
func (c *Composer) SetAccount(account *model.SenderAccount) {
	if c.account != nil && c.account.Signature != "" {
		block := signatureBlock(c.account.Signature)
		if strings.HasSuffix(c.HTMLBody, block) {
			c.HTMLBody = strings.TrimSuffix(c.HTMLBody, block)
		}
	}

	c.account = account
	if account == nil {
		return
	}

	c.From = account.EmailAddress
	if account.Signature != "" {
		c.HTMLBody += signatureBlock(account.Signature)
	}
}

// signatureBlock renders a signature as the HTML fragment appended to
// the body: two line breaks, a "--" separator line, then the signature
// with newlines converted to <br>.
func signatureBlock(signature string) string {
	return "<br><br>--<br>" + strings.ReplaceAll(signature, "\n", "<br>")
}

// IsValid reports whether the form is complete enough to send: To, From,
// Subject, and body non-empty, and both addresses well-formed. The front
// end gates the send action on it, so no network call happens for an
// invalid form.
func (c *Composer) IsValid() bool {
	return c.To != "" &&
		c.From != "" &&
		c.Subject != "" &&
		c.HTMLBody != "" &&
		model.ValidEmailAddress(c.To) &&
		model.ValidEmailAddress(c.From)
}

// ParseRecipients splits a comma-separated address list, trimming
// whitespace and dropping empty tokens. Returns nil when nothing was
// parsed so that "not provided" is distinguishable from "provided but
// empty".
func ParseRecipients(text string) []string {
	var out []string
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Send validates the account, dispatches the message through the Resend
// API, and on success persists a history record and clears the form.
//
// An API failure is returned with the form left untouched. A history
// persistence failure after a successful send is logged but not
// returned: the remote send is the source of truth, and local history is
// best-effort.
func (c *Composer) Send(ctx context.Context) error {
	if c.account == nil {
		return ErrNoAccountSelected
	}
	if c.sending {
		return ErrSendInProgress
	}

	c.sending = true
	defer func() { c.sending = false }()

	apiKey, err := c.creds.Get(c.account.ID)
	if err != nil || apiKey == "" {
		return ErrNoAccountSelected
	}

	plainText := ExtractPlainText(c.HTMLBody)

	client := resend.NewClientWithBaseURL(apiKey, c.baseURL)
	resp, err := client.SendEmail(ctx, resend.SendEmailParams{
		From:        c.From,
		To:          []string{c.To},
		Subject:     c.Subject,
		HTML:        c.HTMLBody,
		Text:        plainText,
		CC:          ParseRecipients(c.CC),
		BCC:         ParseRecipients(c.BCC),
		ReplyTo:     ParseRecipients(c.ReplyTo),
		Attachments: c.attachments,
	})
	if err != nil {
		return err
	}

	if err := c.saveHistory(ctx, resp.ID, plainText); err != nil {
		log.Printf("failed to save sent email: %v", err)
	}

	c.ClearForm()
	return nil
}

// saveHistory writes the attachment files to disk and inserts the
// sent-email record. Individual attachment failures are logged and
// skipped rather than aborting the save.
func (c *Composer) saveHistory(ctx context.Context, resendID, plainText string) error {
	emailID := uuid.New().String()

	var stored []model.StoredAttachment
	for _, att := range c.attachments {
		data, err := att.Data()
		if err != nil {
			log.Printf("failed to decode attachment %s: %v", att.Filename, err)
			continue
		}

		relPath, err := c.storage.SaveAttachment(data, att.Filename, emailID)
		if err != nil {
			log.Printf("failed to save attachment %s: %v", att.Filename, err)
			continue
		}

		stored = append(stored, model.StoredAttachment{
			ID:          uuid.New().String(),
			EmailID:     emailID,
			Filename:    att.Filename,
			ContentType: att.ContentType,
			FileSize:    int64(len(data)),
			LocalPath:   relPath,
			CreatedAt:   time.Now().UTC(),
		})
	}

	accountID := c.account.ID
	return c.store.CreateSentEmail(ctx, model.SentEmail{
		ID:          emailID,
		From:        c.From,
		To:          []string{c.To},
		CC:          ParseRecipients(c.CC),
		BCC:         ParseRecipients(c.BCC),
		Subject:     c.Subject,
		HTMLBody:    c.HTMLBody,
		TextBody:    plainText,
		SentAt:      time.Now().UTC(),
		ResendID:    resendID,
		AccountID:   &accountID,
		Attachments: stored,
	})
}

// ClearForm resets every message field. The selected account and its
// From address survive so the next message starts from the same sender.
func (c *Composer) ClearForm() {
	c.To = ""
	c.Subject = ""
	c.CC = ""
	c.BCC = ""
	c.ReplyTo = ""
	c.HTMLBody = ""
	c.attachments = nil
}
