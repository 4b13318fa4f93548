package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pshrestha/justsend/internal/model"
)

// CreateAccount inserts a new sender account.
func (s *SQLiteStore) CreateAccount(ctx context.Context, account model.SenderAccount) error {
	if strings.TrimSpace(account.EmailAddress) == "" {
		return fmt.Errorf("account email address must not be empty")
	}
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, website_name, email_address, signature, is_default, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		account.ID, account.WebsiteName, account.EmailAddress,
		account.Signature, boolToInt(account.IsDefault), account.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating account: %w", err)
	}
	return nil
}

// UpdateAccount updates an account's website name, email address, and signature.
func (s *SQLiteStore) UpdateAccount(ctx context.Context, account model.SenderAccount) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET website_name = ?, email_address = ?, signature = ?
		WHERE id = ?`,
		account.WebsiteName, account.EmailAddress, account.Signature, account.ID,
	)
	if err != nil {
		return fmt.Errorf("updating account %s: %w", account.ID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("account %s not found", account.ID)
	}
	return nil
}

// DeleteAccount removes an account. Sent emails that reference it keep
// their history rows with the account reference set to NULL.
func (s *SQLiteStore) DeleteAccount(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting account %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("account %s not found", id)
	}
	return nil
}

// GetAccountByID retrieves a single account by its ID.
func (s *SQLiteStore) GetAccountByID(ctx context.Context, id string) (*model.SenderAccount, error) {
	row := s.db.QueryRowxContext(ctx, "SELECT * FROM accounts WHERE id = ?", id)

	account, err := scanAccountRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account %s not found", id)
		}
		return nil, fmt.Errorf("getting account %s: %w", id, err)
	}
	return &account, nil
}

// GetAccounts retrieves all sender accounts, newest first.
func (s *SQLiteStore) GetAccounts(ctx context.Context) ([]model.SenderAccount, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT * FROM accounts ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.SenderAccount
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// ClearDefaultAccounts clears the default flag on every account.
func (s *SQLiteStore) ClearDefaultAccounts(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "UPDATE accounts SET is_default = 0")
	if err != nil {
		return fmt.Errorf("clearing default accounts: %w", err)
	}
	return nil
}

// SetAccountDefault sets or clears the default flag on a single account.
func (s *SQLiteStore) SetAccountDefault(ctx context.Context, id string, isDefault bool) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE accounts SET is_default = ? WHERE id = ?",
		boolToInt(isDefault), id,
	)
	if err != nil {
		return fmt.Errorf("setting default flag on account %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("account %s not found", id)
	}
	return nil
}

func scanAccountInto(sc rowScanner) (model.SenderAccount, error) {
	var (
		account   model.SenderAccount
		isDefault int
		createdAt time.Time
	)

	err := sc.Scan(
		&account.ID, &account.WebsiteName, &account.EmailAddress,
		&account.Signature, &isDefault, &createdAt,
	)
	if err != nil {
		return model.SenderAccount{}, err
	}

	account.IsDefault = isDefault != 0
	account.CreatedAt = createdAt
	return account, nil
}

// scanAccount scans an account row from a sqlx.Rows result set.
func scanAccount(rows *sqlx.Rows) (model.SenderAccount, error) {
	account, err := scanAccountInto(rows)
	if err != nil {
		return model.SenderAccount{}, fmt.Errorf("scanning account row: %w", err)
	}
	return account, nil
}

// scanAccountRow scans a single account row from a sqlx.Row.
func scanAccountRow(row *sqlx.Row) (model.SenderAccount, error) {
	return scanAccountInto(row)
}
