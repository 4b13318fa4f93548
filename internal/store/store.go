package store

import (
	"context"

	"github.com/pshrestha/justsend/internal/model"
)

// EmailFilter controls filtering and pagination for sent-email queries.
// Results are always ordered by sent_at descending (newest first).
type EmailFilter struct {
	Query  *string // search subject + from address
	Limit  int
	Offset int
}

// Store defines the persistence interface for sender accounts, sent-email
// history, and stored-attachment metadata.
//
// Attachment files on disk are NOT managed here; callers deleting a sent
// email must also remove its attachment folder via the attachments
// storage. Attachment rows themselves are cascade-deleted with their
// email, and sent emails keep a nullify-on-delete reference to their
// sender account.
type Store interface {
	// === Sender accounts ===

	CreateAccount(ctx context.Context, account model.SenderAccount) error
	UpdateAccount(ctx context.Context, account model.SenderAccount) error
	DeleteAccount(ctx context.Context, id string) error
	GetAccountByID(ctx context.Context, id string) (*model.SenderAccount, error)
	GetAccounts(ctx context.Context) ([]model.SenderAccount, error)
	ClearDefaultAccounts(ctx context.Context) error
	SetAccountDefault(ctx context.Context, id string, isDefault bool) error

	// === Sent emails ===

	CreateSentEmail(ctx context.Context, email model.SentEmail) error
	GetSentEmails(ctx context.Context, filter EmailFilter) ([]model.SentEmail, error)
	GetSentEmailByID(ctx context.Context, id string) (*model.SentEmail, error)
	DeleteSentEmail(ctx context.Context, id string) error

	// === Stored attachments ===

	GetAttachmentsForEmail(ctx context.Context, emailID string) ([]model.StoredAttachment, error)
}
