package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pshrestha/justsend/internal/model"
)

// CreateSentEmail inserts a sent-email record together with its stored
// attachment rows in a single transaction. This is the store's atomic
// save unit; the attachment files themselves must already be on disk.
func (s *SQLiteStore) CreateSentEmail(ctx context.Context, email model.SentEmail) error {
	if email.ID == "" {
		email.ID = uuid.New().String()
	}
	if email.SentAt.IsZero() {
		email.SentAt = time.Now().UTC()
	}

	toJSON, err := marshalAddresses(email.To)
	if err != nil {
		return fmt.Errorf("marshaling to addresses: %w", err)
	}
	ccJSON, err := marshalAddresses(email.CC)
	if err != nil {
		return fmt.Errorf("marshaling cc addresses: %w", err)
	}
	bccJSON, err := marshalAddresses(email.BCC)
	if err != nil {
		return fmt.Errorf("marshaling bcc addresses: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sent_emails (
			id, from_address, to_addresses, cc_addresses, bcc_addresses,
			subject, html_body, text_body, sent_at, resend_id, account_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		email.ID, email.From, toJSON, ccJSON, bccJSON,
		email.Subject, email.HTMLBody, email.TextBody,
		email.SentAt.UTC(), email.ResendID, email.AccountID,
	)
	if err != nil {
		return fmt.Errorf("inserting sent email %s: %w", email.ID, err)
	}

	for _, att := range email.Attachments {
		if att.ID == "" {
			att.ID = uuid.New().String()
		}
		if att.CreatedAt.IsZero() {
			att.CreatedAt = time.Now().UTC()
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO attachments (
				id, email_id, filename, content_type, file_size, local_path, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			att.ID, email.ID, att.Filename, att.ContentType,
			att.FileSize, att.LocalPath, att.CreatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("inserting attachment %s: %w", att.Filename, err)
		}
	}

	return tx.Commit()
}

// GetSentEmails retrieves sent emails matching the filter, newest first.
// Attachment rows are loaded for each email.
func (s *SQLiteStore) GetSentEmails(ctx context.Context, filter EmailFilter) ([]model.SentEmail, error) {
	query := "SELECT * FROM sent_emails"
	var args []interface{}

	if filter.Query != nil && *filter.Query != "" {
		query += " WHERE (subject LIKE ? OR from_address LIKE ?)"
		q := "%" + *filter.Query + "%"
		args = append(args, q, q)
	}

	query += " ORDER BY sent_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sent emails: %w", err)
	}
	defer rows.Close()

	var emails []model.SentEmail
	for rows.Next() {
		email, err := scanSentEmail(rows)
		if err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range emails {
		atts, err := s.GetAttachmentsForEmail(ctx, emails[i].ID)
		if err != nil {
			return nil, err
		}
		emails[i].Attachments = atts
	}

	return emails, nil
}

// GetSentEmailByID retrieves a single sent email with its attachments.
func (s *SQLiteStore) GetSentEmailByID(ctx context.Context, id string) (*model.SentEmail, error) {
	row := s.db.QueryRowxContext(ctx, "SELECT * FROM sent_emails WHERE id = ?", id)

	email, err := scanSentEmailInto(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("sent email %s not found", id)
		}
		return nil, fmt.Errorf("getting sent email %s: %w", id, err)
	}

	atts, err := s.GetAttachmentsForEmail(ctx, id)
	if err != nil {
		return nil, err
	}
	email.Attachments = atts

	return &email, nil
}

// DeleteSentEmail removes a sent email. CASCADE removes its attachment
// rows; the caller is responsible for the attachment files on disk.
func (s *SQLiteStore) DeleteSentEmail(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sent_emails WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting sent email %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("sent email %s not found", id)
	}
	return nil
}

// GetAttachmentsForEmail retrieves the stored-attachment rows for one email.
func (s *SQLiteStore) GetAttachmentsForEmail(ctx context.Context, emailID string) ([]model.StoredAttachment, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT * FROM attachments WHERE email_id = ? ORDER BY created_at",
		emailID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying attachments for email %s: %w", emailID, err)
	}
	defer rows.Close()

	var atts []model.StoredAttachment
	for rows.Next() {
		var att model.StoredAttachment
		var createdAt time.Time
		err := rows.Scan(
			&att.ID, &att.EmailID, &att.Filename, &att.ContentType,
			&att.FileSize, &att.LocalPath, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning attachment row: %w", err)
		}
		att.CreatedAt = createdAt
		atts = append(atts, att)
	}
	return atts, rows.Err()
}

// marshalAddresses serializes an address list to JSON for storage.
// A nil list is stored as an empty array.
func marshalAddresses(addrs []string) (string, error) {
	if addrs == nil {
		addrs = []string{}
	}
	data, err := json.Marshal(addrs)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSentEmailInto(sc rowScanner) (model.SentEmail, error) {
	var (
		email     model.SentEmail
		toJSON    string
		ccJSON    string
		bccJSON   string
		sentAt    time.Time
		accountID sql.NullString
	)

	err := sc.Scan(
		&email.ID, &email.From, &toJSON, &ccJSON, &bccJSON,
		&email.Subject, &email.HTMLBody, &email.TextBody,
		&sentAt, &email.ResendID, &accountID,
	)
	if err != nil {
		return model.SentEmail{}, err
	}

	email.SentAt = sentAt
	if accountID.Valid {
		email.AccountID = &accountID.String
	}

	if err := json.Unmarshal([]byte(toJSON), &email.To); err != nil {
		return model.SentEmail{}, fmt.Errorf("unmarshaling to addresses: %w", err)
	}
	if err := json.Unmarshal([]byte(ccJSON), &email.CC); err != nil {
		return model.SentEmail{}, fmt.Errorf("unmarshaling cc addresses: %w", err)
	}
	if err := json.Unmarshal([]byte(bccJSON), &email.BCC); err != nil {
		return model.SentEmail{}, fmt.Errorf("unmarshaling bcc addresses: %w", err)
	}
	if len(email.CC) == 0 {
		email.CC = nil
	}
	if len(email.BCC) == 0 {
		email.BCC = nil
	}

	return email, nil
}

// scanSentEmail scans a sent-email row from a sqlx.Rows result set.
func scanSentEmail(rows *sqlx.Rows) (model.SentEmail, error) {
	email, err := scanSentEmailInto(rows)
	if err != nil {
		return model.SentEmail{}, fmt.Errorf("scanning sent email row: %w", err)
	}
	return email, nil
}
