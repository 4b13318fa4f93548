// Package credential stores Resend API keys in the operating system
// keyring, keyed by sender-account ID.
package credential

import (
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "justsend"

// Store is the secret-store interface consumed by the account manager and
// the composer. Keys are sender-account IDs; values are API keys.
type Store interface {
	Get(accountID string) (string, error)
	Set(accountID, apiKey string) error
	Delete(accountID string) error
}

// Keyring is a Store backed by the system keyring (macOS Keychain,
// Secret Service, Windows Credential Manager, pass, or an encrypted file
// as a last resort).
type Keyring struct {
	fileDir string
}

// NewKeyring creates a keyring-backed credential store. fileDir is used
// only by the file fallback backend.
func NewKeyring(fileDir string) *Keyring {
	return &Keyring{fileDir: fileDir}
}

func (k *Keyring) open() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  k.fileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt("justsend-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Get retrieves the API key for the given account ID.
func (k *Keyring) Get(accountID string) (string, error) {
	ring, err := k.open()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(accountID)
	if err != nil {
		return "", fmt.Errorf("getting credential for account %s: %w", accountID, err)
	}

	return string(item.Data), nil
}

// Set stores the API key for the given account ID.
func (k *Keyring) Set(accountID, apiKey string) error {
	ring, err := k.open()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  accountID,
		Data: []byte(apiKey),
	})
	if err != nil {
		return fmt.Errorf("setting credential for account %s: %w", accountID, err)
	}

	return nil
}

// Delete removes the API key for the given account ID. A missing entry is
// not an error.
func (k *Keyring) Delete(accountID string) error {
	ring, err := k.open()
	if err != nil {
		return err
	}

	if err := ring.Remove(accountID); err != nil && err != keyring.ErrKeyNotFound {
		return fmt.Errorf("deleting credential for account %s: %w", accountID, err)
	}

	return nil
}
