package accounts_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pshrestha/justsend/internal/accounts"
	"github.com/pshrestha/justsend/internal/model"
	"github.com/pshrestha/justsend/tests/testutil"
)

// fakeCredStore keeps API keys in memory for tests.
type fakeCredStore struct {
	keys map[string]string
}

func newFakeCredStore() *fakeCredStore {
	return &fakeCredStore{keys: make(map[string]string)}
}

func (f *fakeCredStore) Get(accountID string) (string, error) {
	return f.keys[accountID], nil
}

func (f *fakeCredStore) Set(accountID, key string) error {
	f.keys[accountID] = key
	return nil
}

func (f *fakeCredStore) Delete(accountID string) error {
	delete(f.keys, accountID)
	return nil
}

func newManager(t *testing.T) (*accounts.Manager, *fakeCredStore) {
	t.Helper()
	creds := newFakeCredStore()
	return accounts.NewManager(testutil.NewTestStore(t), creds), creds
}

func countDefaults(t *testing.T, m *accounts.Manager) int {
	t.Helper()
	accts, err := m.Accounts(context.Background())
	require.NoError(t, err)
	n := 0
	for _, a := range accts {
		if a.IsDefault {
			n++
		}
	}
	return n
}

func TestAddAccount_FirstBecomesDefault(t *testing.T) {
	ctx := context.Background()
	m, creds := newManager(t)

	first, err := m.AddAccount(ctx, "My Site", "hello@mysite.com", "re_key_111111", "Best,\nP")
	require.NoError(t, err)
	assert.True(t, first.IsDefault)
	assert.Equal(t, "re_key_111111", creds.keys[first.ID])

	second, err := m.AddAccount(ctx, "Other Site", "hi@other.com", "re_key_222222", "")
	require.NoError(t, err)
	assert.False(t, second.IsDefault)

	assert.Equal(t, 1, countDefaults(t, m))
}

func TestSetDefault_SingleDefaultInvariant(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	a, err := m.AddAccount(ctx, "A", "a@a.com", "re_key_111111", "")
	require.NoError(t, err)
	b, err := m.AddAccount(ctx, "B", "b@b.com", "re_key_222222", "")
	require.NoError(t, err)

	require.NoError(t, m.SetDefault(ctx, *b))
	assert.Equal(t, 1, countDefaults(t, m))

	def, err := m.DefaultAccount(ctx)
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, b.ID, def.ID)

	require.NoError(t, m.SetDefault(ctx, *a))
	assert.Equal(t, 1, countDefaults(t, m))
}

func TestDeleteAccount_PromotesRemaining(t *testing.T) {
	ctx := context.Background()
	m, creds := newManager(t)

	a, err := m.AddAccount(ctx, "A", "a@a.com", "re_key_111111", "")
	require.NoError(t, err)
	_, err = m.AddAccount(ctx, "B", "b@b.com", "re_key_222222", "")
	require.NoError(t, err)

	require.NoError(t, m.DeleteAccount(ctx, *a))

	_, purged := creds.keys[a.ID]
	assert.False(t, purged)

	def, err := m.DefaultAccount(ctx)
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.True(t, def.IsDefault)
	assert.Equal(t, 1, countDefaults(t, m))
}

func TestDeleteAccount_LastAccount(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	a, err := m.AddAccount(ctx, "A", "a@a.com", "re_key_111111", "")
	require.NoError(t, err)

	require.NoError(t, m.DeleteAccount(ctx, *a))

	def, err := m.DefaultAccount(ctx)
	require.NoError(t, err)
	assert.Nil(t, def)
}

func TestValidateAPIKeyFormat(t *testing.T) {
	m, _ := newManager(t)

	tests := []struct {
		key  string
		want bool
	}{
		{"re_abcdefgh123", true},
		{"re_12345678", true},     // 11 chars, just over the minimum
		{"re_1234567", false},     // exactly 10 chars
		{"sk_abcdefgh123", false}, // wrong prefix
		{"re_", false},
		{"", false},
		{"abcdefghijklmnop", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, m.ValidateAPIKeyFormat(tt.key), "key %q", tt.key)
	}
}

func TestValidateEmailFormat(t *testing.T) {
	m, _ := newManager(t)

	tests := []struct {
		addr string
		want bool
	}{
		{"hello@example.com", true},
		{"first.last+tag@sub.example.co", true},
		{"no-at-sign", false},
		{"missing@tld", false},
		{"@example.com", false},
		{"hello@example.c", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, m.ValidateEmailFormat(tt.addr), "addr %q", tt.addr)
	}
}

func TestExistingAPIKeyAndDomain(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	_, err := m.AddAccount(ctx, "My Site", "hello@mysite.com", "re_key_111111", "")
	require.NoError(t, err)

	// Lookup is case-insensitive on the website name.
	key, err := m.ExistingAPIKey(ctx, "my site")
	require.NoError(t, err)
	assert.Equal(t, "re_key_111111", key)

	domain, err := m.ExistingDomain(ctx, "MY SITE")
	require.NoError(t, err)
	assert.Equal(t, "mysite.com", domain)

	key, err = m.ExistingAPIKey(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestUpdateAccount(t *testing.T) {
	ctx := context.Background()
	m, creds := newManager(t)

	a, err := m.AddAccount(ctx, "A", "a@a.com", "re_key_111111", "old sig")
	require.NoError(t, err)

	a.Signature = "new sig"
	a.WebsiteName = "A Renamed"
	require.NoError(t, m.UpdateAccount(ctx, *a, "re_key_333333"))

	accts, err := m.Accounts(ctx)
	require.NoError(t, err)
	require.Len(t, accts, 1)
	assert.Equal(t, "A Renamed", accts[0].WebsiteName)
	assert.Equal(t, "new sig", accts[0].Signature)
	assert.Equal(t, "re_key_333333", creds.keys[a.ID])

	// An empty key leaves the stored credential untouched.
	require.NoError(t, m.UpdateAccount(ctx, *a, ""))
	assert.Equal(t, "re_key_333333", creds.keys[a.ID])
}

func TestAccountDomain(t *testing.T) {
	acct := model.SenderAccount{EmailAddress: "hello@mysite.com"}
	assert.Equal(t, "mysite.com", acct.Domain())

	acct.EmailAddress = "invalid"
	assert.Empty(t, acct.Domain())
}
