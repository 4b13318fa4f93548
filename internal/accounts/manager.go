// Package accounts manages sender identities: CRUD over accounts, the
// single-default invariant, and credential storage in the OS keyring.
package accounts

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pshrestha/justsend/internal/credential"
	"github.com/pshrestha/justsend/internal/model"
	"github.com/pshrestha/justsend/internal/store"
)

// Manager performs account operations against the record store and the
// credential store. It owns the "at most one default account" invariant;
// the storage layer does not enforce it.
type Manager struct {
	store store.Store
	creds credential.Store
}

// NewManager creates an account manager.
func NewManager(s store.Store, creds credential.Store) *Manager {
	return &Manager{store: s, creds: creds}
}

// Accounts returns all sender accounts, newest first.
func (m *Manager) Accounts(ctx context.Context) ([]model.SenderAccount, error) {
	return m.store.GetAccounts(ctx)
}

// AddAccount creates a new sender account and stores its API key in the
// credential store. The first account ever added becomes the default.
func (m *Manager) AddAccount(ctx context.Context, websiteName, emailAddress, apiKey, signature string) (*model.SenderAccount, error) {
	existing, err := m.store.GetAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}

	account := model.SenderAccount{
		ID:           uuid.New().String(),
		WebsiteName:  websiteName,
		EmailAddress: emailAddress,
		Signature:    signature,
		IsDefault:    len(existing) == 0,
	}

	if err := m.store.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	if err := m.creds.Set(account.ID, apiKey); err != nil {
		return nil, fmt.Errorf("storing API key: %w", err)
	}

	return &account, nil
}

// UpdateAccount updates an account's details and rewrites its API key.
func (m *Manager) UpdateAccount(ctx context.Context, account model.SenderAccount, apiKey string) error {
	if err := m.store.UpdateAccount(ctx, account); err != nil {
		return err
	}
	if apiKey != "" {
		if err := m.creds.Set(account.ID, apiKey); err != nil {
			return fmt.Errorf("storing API key: %w", err)
		}
	}
	return nil
}

// DeleteAccount removes an account, purges its API key from the
// credential store, and, if it was the default, promotes the first
// remaining account.
func (m *Manager) DeleteAccount(ctx context.Context, account model.SenderAccount) error {
	if err := m.creds.Delete(account.ID); err != nil {
		return fmt.Errorf("deleting API key: %w", err)
	}
	if err := m.store.DeleteAccount(ctx, account.ID); err != nil {
		return err
	}

	if account.IsDefault {
		remaining, err := m.store.GetAccounts(ctx)
		if err != nil {
			return fmt.Errorf("listing accounts: %w", err)
		}
		if len(remaining) > 0 {
			return m.SetDefault(ctx, remaining[0])
		}
	}
	return nil
}

// SetDefault makes the given account the default, clearing the flag on
// every other account first so at most one default ever exists.
func (m *Manager) SetDefault(ctx context.Context, account model.SenderAccount) error {
	if err := m.store.ClearDefaultAccounts(ctx); err != nil {
		return err
	}
	return m.store.SetAccountDefault(ctx, account.ID, true)
}

// DefaultAccount returns the default account, falling back to the first
// account when no default flag is set. Returns nil when no accounts exist.
func (m *Manager) DefaultAccount(ctx context.Context) (*model.SenderAccount, error) {
	accounts, err := m.store.GetAccounts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if accounts[i].IsDefault {
			return &accounts[i], nil
		}
	}
	if len(accounts) > 0 {
		return &accounts[0], nil
	}
	return nil, nil
}

// APIKey resolves the stored API key for an account.
func (m *Manager) APIKey(account model.SenderAccount) (string, error) {
	return m.creds.Get(account.ID)
}

// ValidateAPIKeyFormat reports whether key looks like a Resend API key:
// the "re_" prefix and more than ten characters.
func (m *Manager) ValidateAPIKeyFormat(key string) bool {
	return strings.HasPrefix(key, "re_") && len(key) > 10
}

// ValidateEmailFormat reports whether s is a plausible email address.
func (m *Manager) ValidateEmailFormat(s string) bool {
	return model.ValidEmailAddress(s)
}

// ExistingAPIKey returns the stored API key of the account whose website
// name matches (case-insensitive exact match), to pre-fill a new account
// under the same name. Returns "" when no such account exists.
func (m *Manager) ExistingAPIKey(ctx context.Context, websiteName string) (string, error) {
	account, err := m.findByWebsiteName(ctx, websiteName)
	if err != nil || account == nil {
		return "", err
	}
	key, err := m.creds.Get(account.ID)
	if err != nil {
		return "", nil
	}
	return key, nil
}

// ExistingDomain returns the email domain of the account whose website
// name matches (case-insensitive exact match), or "" when none does.
func (m *Manager) ExistingDomain(ctx context.Context, websiteName string) (string, error) {
	account, err := m.findByWebsiteName(ctx, websiteName)
	if err != nil || account == nil {
		return "", err
	}
	return account.Domain(), nil
}

func (m *Manager) findByWebsiteName(ctx context.Context, websiteName string) (*model.SenderAccount, error) {
	accounts, err := m.store.GetAccounts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if strings.EqualFold(accounts[i].WebsiteName, websiteName) {
			return &accounts[i], nil
		}
	}
	return nil, nil
}
