// Package history provides read and delete operations over the local
// sent-email archive, keeping attachment files on disk in step with the
// database records.
package history

import (
	"context"
	"fmt"

	"github.com/pshrestha/justsend/internal/attachments"
	"github.com/pshrestha/justsend/internal/model"
	"github.com/pshrestha/justsend/internal/store"
)

// Service exposes the sent-email history.
type Service struct {
	store   store.Store
	storage *attachments.Storage
}

// NewService creates a history service.
func NewService(s store.Store, storage *attachments.Storage) *Service {
	return &Service{store: s, storage: storage}
}

// List returns sent emails newest first. A non-empty query filters by
// subject and from address.
func (s *Service) List(ctx context.Context, query string) ([]model.SentEmail, error) {
	filter := store.EmailFilter{}
	if query != "" {
		filter.Query = &query
	}
	return s.store.GetSentEmails(ctx, filter)
}

// Get returns a single sent email with its attachments.
func (s *Service) Get(ctx context.Context, id string) (*model.SentEmail, error) {
	return s.store.GetSentEmailByID(ctx, id)
}

// Delete removes a sent email. Its attachment folder is deleted from
// disk first (best effort, since the files are not tracked by the
// database), then the record; attachment rows cascade with it.
func (s *Service) Delete(ctx context.Context, email model.SentEmail) error {
	s.storage.DeleteEmailFolder(email.ID)
	if err := s.store.DeleteSentEmail(ctx, email.ID); err != nil {
		return fmt.Errorf("deleting email record: %w", err)
	}
	return nil
}

// DeleteAll removes every sent email and its attachment files.
func (s *Service) DeleteAll(ctx context.Context) error {
	emails, err := s.store.GetSentEmails(ctx, store.EmailFilter{})
	if err != nil {
		return err
	}
	for _, email := range emails {
		if err := s.Delete(ctx, email); err != nil {
			return err
		}
	}
	return nil
}

// LoadAttachment reads the file content for a stored attachment.
func (s *Service) LoadAttachment(att model.StoredAttachment) ([]byte, error) {
	return s.storage.LoadAttachment(att.LocalPath)
}

// TotalStorageUsed returns the bytes used by all stored attachment files.
func (s *Service) TotalStorageUsed() int64 {
	return s.storage.TotalStorageUsed()
}

// FormattedStorageUsed returns the storage statistic for display.
func (s *Service) FormattedStorageUsed() string {
	return s.storage.FormattedStorageUsed()
}
