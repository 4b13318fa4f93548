package composer_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pshrestha/justsend/internal/attachments"
	"github.com/pshrestha/justsend/internal/composer"
	"github.com/pshrestha/justsend/internal/model"
	"github.com/pshrestha/justsend/internal/resend"
	"github.com/pshrestha/justsend/internal/store"
	"github.com/pshrestha/justsend/tests/testutil"
)

type fakeCredStore struct {
	keys map[string]string
}

func newFakeCredStore() *fakeCredStore {
	return &fakeCredStore{keys: make(map[string]string)}
}

func (f *fakeCredStore) Get(accountID string) (string, error) { return f.keys[accountID], nil }
func (f *fakeCredStore) Set(accountID, key string) error {
	f.keys[accountID] = key
	return nil
}
func (f *fakeCredStore) Delete(accountID string) error {
	delete(f.keys, accountID)
	return nil
}

func newComposer(t *testing.T, baseURL string) (*composer.Composer, store.Store, *fakeCredStore) {
	t.Helper()
	s := testutil.NewTestStore(t)
	storage, err := attachments.NewStorage(t.TempDir())
	require.NoError(t, err)
	creds := newFakeCredStore()
	return composer.New(s, storage, creds, baseURL), s, creds
}

func testAccount(signature string) *model.SenderAccount {
	return &model.SenderAccount{
		ID:           "acct-1",
		WebsiteName:  "My Site",
		EmailAddress: "hello@mysite.com",
		Signature:    signature,
	}
}

func TestSetAccount_AppendsSignature(t *testing.T) {
	c, _, _ := newComposer(t, "")

	c.HTMLBody = "Hello there"
	c.SetAccount(testAccount("Best,\nPriya"))

	assert.Equal(t, "hello@mysite.com", c.From)
	assert.Equal(t, "Hello there<br><br>--<br>Best,<br>Priya", c.HTMLBody)
}

func TestSetAccount_SwapsSignatureOnSwitch(t *testing.T) {
	c, _, _ := newComposer(t, "")

	c.HTMLBody = "Hello"
	c.SetAccount(testAccount("Sig A"))
	require.Equal(t, "Hello<br><br>--<br>Sig A", c.HTMLBody)

	other := &model.SenderAccount{
		ID:           "acct-2",
		EmailAddress: "hi@other.com",
		Signature:    "Sig B",
	}
	c.SetAccount(other)

	assert.Equal(t, "hi@other.com", c.From)
	assert.Equal(t, "Hello<br><br>--<br>Sig B", c.HTMLBody)
}

func TestSetAccount_EditedBodyKeepsOldSignature(t *testing.T) {
	c, _, _ := newComposer(t, "")

	c.HTMLBody = "Hello"
	c.SetAccount(testAccount("Sig A"))

	// Typing after the signature breaks the suffix match, so the old
	// block stays and the new one is appended after it.
	c.HTMLBody += " PS: one more thing"
	c.SetAccount(&model.SenderAccount{
		ID:           "acct-2",
		EmailAddress: "hi@other.com",
		Signature:    "Sig B",
	})

	assert.Equal(t,
		"Hello<br><br>--<br>Sig A PS: one more thing<br><br>--<br>Sig B",
		c.HTMLBody)
}

func TestSetAccount_NoSignature(t *testing.T) {
	c, _, _ := newComposer(t, "")

	c.HTMLBody = "Hello"
	c.SetAccount(testAccount(""))

	assert.Equal(t, "Hello", c.HTMLBody)
	assert.Equal(t, "hello@mysite.com", c.From)
}

func TestParseRecipients(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{" , , ", nil},
		{"a@b.com", []string{"a@b.com"}},
		{"a@b.com, c@d.com", []string{"a@b.com", "c@d.com"}},
		{"  a@b.com ,c@d.com  ", []string{"a@b.com", "c@d.com"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, composer.ParseRecipients(tt.in), "input %q", tt.in)
	}
}

func TestIsValid(t *testing.T) {
	c, _, _ := newComposer(t, "")

	assert.False(t, c.IsValid())

	c.To = "to@example.com"
	c.From = "from@example.com"
	c.Subject = "Hi"
	c.HTMLBody = "<p>Hello</p>"
	assert.True(t, c.IsValid())

	c.To = "not-an-address"
	assert.False(t, c.IsValid())

	c.To = "to@example.com"
	c.Subject = ""
	assert.False(t, c.IsValid())
}

func TestSend_NoAccount(t *testing.T) {
	c, _, _ := newComposer(t, "")
	err := c.Send(context.Background())
	assert.ErrorIs(t, err, composer.ErrNoAccountSelected)
}

func TestSend_MissingAPIKey(t *testing.T) {
	c, _, _ := newComposer(t, "")
	c.SetAccount(testAccount(""))

	err := c.Send(context.Background())
	assert.ErrorIs(t, err, composer.ErrNoAccountSelected)
}

func TestSend_SuccessPersistsHistoryAndClearsForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"resend-msg-1"}`))
	}))
	defer srv.Close()

	c, s, creds := newComposer(t, srv.URL)
	acct := testAccount("")
	creds.keys[acct.ID] = "re_key_111111"

	// The account row must exist for the history foreign key.
	ctx := context.Background()
	require.NoError(t, s.CreateAccount(ctx, *acct))

	c.SetAccount(acct)
	c.To = "to@example.com"
	c.Subject = "Hi"
	c.CC = "cc1@example.com, cc2@example.com"
	c.HTMLBody = "<p>Hello <b>world</b></p>"
	c.AddAttachment(resend.NewAttachment("notes.txt", []byte("some notes")))

	require.NoError(t, c.Send(ctx))

	// Form cleared, sender retained.
	assert.Empty(t, c.To)
	assert.Empty(t, c.Subject)
	assert.Empty(t, c.HTMLBody)
	assert.Empty(t, c.Attachments())
	assert.Equal(t, "hello@mysite.com", c.From)
	require.NotNil(t, c.Account())

	emails, err := s.GetSentEmails(ctx, store.EmailFilter{})
	require.NoError(t, err)
	require.Len(t, emails, 1)

	email := emails[0]
	assert.Equal(t, "resend-msg-1", email.ResendID)
	assert.Equal(t, []string{"to@example.com"}, email.To)
	assert.Equal(t, []string{"cc1@example.com", "cc2@example.com"}, email.CC)
	assert.Equal(t, "Hi", email.Subject)
	assert.Contains(t, email.TextBody, "Hello world")
	require.NotNil(t, email.AccountID)
	assert.Equal(t, acct.ID, *email.AccountID)
	require.Len(t, email.Attachments, 1)
	assert.Equal(t, "notes.txt", email.Attachments[0].Filename)
	assert.Equal(t, int64(len("some notes")), email.Attachments[0].FileSize)
}

func TestSend_FailureLeavesFormUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"statusCode":401,"message":"API key is invalid"}`))
	}))
	defer srv.Close()

	c, s, creds := newComposer(t, srv.URL)
	acct := testAccount("")
	creds.keys[acct.ID] = "re_key_111111"

	c.SetAccount(acct)
	c.To = "to@example.com"
	c.Subject = "Hi"
	c.HTMLBody = "<p>Hello</p>"

	err := c.Send(context.Background())
	var apiErr *resend.APIError
	require.ErrorAs(t, err, &apiErr)

	// Nothing cleared, nothing persisted.
	assert.Equal(t, "to@example.com", c.To)
	assert.Equal(t, "Hi", c.Subject)
	assert.Equal(t, "<p>Hello</p>", c.HTMLBody)

	emails, err := s.GetSentEmails(context.Background(), store.EmailFilter{})
	require.NoError(t, err)
	assert.Empty(t, emails)
}

func TestRemoveAttachment(t *testing.T) {
	c, _, _ := newComposer(t, "")

	c.AddAttachment(resend.NewAttachment("a.txt", []byte("a")))
	c.AddAttachment(resend.NewAttachment("b.txt", []byte("b")))

	c.RemoveAttachment(0)
	require.Len(t, c.Attachments(), 1)
	assert.Equal(t, "b.txt", c.Attachments()[0].Filename)

	c.RemoveAttachment(5)
	assert.Len(t, c.Attachments(), 1)
}
