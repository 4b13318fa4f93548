package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pshrestha/justsend/internal/model"
	"github.com/pshrestha/justsend/internal/store"
	"github.com/pshrestha/justsend/tests/testutil"
)

func seedAccount(t *testing.T, s *store.SQLiteStore, id string) {
	t.Helper()
	require.NoError(t, s.CreateAccount(context.Background(), model.SenderAccount{
		ID:           id,
		EmailAddress: "hello@mysite.com",
	}))
}

func testEmail(id, accountID string, sentAt time.Time) model.SentEmail {
	var acctRef *string
	if accountID != "" {
		acctRef = &accountID
	}
	return model.SentEmail{
		ID:        id,
		From:      "hello@mysite.com",
		To:        []string{"to@example.com"},
		Subject:   "Subject " + id,
		HTMLBody:  "<p>body</p>",
		TextBody:  "body",
		SentAt:    sentAt,
		ResendID:  "resend-" + id,
		AccountID: acctRef,
	}
}

func TestCreateSentEmail_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	seedAccount(t, s, "acct-1")

	email := testEmail("email-1", "acct-1", time.Now().UTC())
	email.CC = []string{"cc@example.com"}
	email.Attachments = []model.StoredAttachment{
		{
			ID:          "att-1",
			EmailID:     "email-1",
			Filename:    "report.pdf",
			ContentType: "application/pdf",
			FileSize:    1024,
			LocalPath:   "email-1/report.pdf",
		},
	}
	require.NoError(t, s.CreateSentEmail(ctx, email))

	got, err := s.GetSentEmailByID(ctx, "email-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"to@example.com"}, got.To)
	assert.Equal(t, []string{"cc@example.com"}, got.CC)
	assert.Nil(t, got.BCC)
	assert.Equal(t, "resend-email-1", got.ResendID)
	require.NotNil(t, got.AccountID)
	assert.Equal(t, "acct-1", *got.AccountID)
	require.Len(t, got.Attachments, 1)
	assert.Equal(t, "report.pdf", got.Attachments[0].Filename)
	assert.Equal(t, int64(1024), got.Attachments[0].FileSize)
	assert.Equal(t, "email-1/report.pdf", got.Attachments[0].LocalPath)
}

func TestGetSentEmails_NewestFirst(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	seedAccount(t, s, "acct-1")

	now := time.Now().UTC()
	require.NoError(t, s.CreateSentEmail(ctx, testEmail("email-old", "acct-1", now.Add(-time.Hour))))
	require.NoError(t, s.CreateSentEmail(ctx, testEmail("email-new", "acct-1", now)))

	emails, err := s.GetSentEmails(ctx, store.EmailFilter{})
	require.NoError(t, err)
	require.Len(t, emails, 2)
	assert.Equal(t, "email-new", emails[0].ID)
	assert.Equal(t, "email-old", emails[1].ID)
}

func TestGetSentEmails_Search(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	seedAccount(t, s, "acct-1")

	now := time.Now().UTC()
	invoice := testEmail("email-1", "acct-1", now)
	invoice.Subject = "Invoice for March"
	newsletter := testEmail("email-2", "acct-1", now.Add(-time.Minute))
	newsletter.Subject = "Newsletter"
	require.NoError(t, s.CreateSentEmail(ctx, invoice))
	require.NoError(t, s.CreateSentEmail(ctx, newsletter))

	q := "invoice"
	emails, err := s.GetSentEmails(ctx, store.EmailFilter{Query: &q})
	require.NoError(t, err)
	require.Len(t, emails, 1)
	assert.Equal(t, "email-1", emails[0].ID)

	// From-address matches too.
	q = "mysite"
	emails, err = s.GetSentEmails(ctx, store.EmailFilter{Query: &q})
	require.NoError(t, err)
	assert.Len(t, emails, 2)
}

func TestGetSentEmails_LimitOffset(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	seedAccount(t, s, "acct-1")

	now := time.Now().UTC()
	for i, id := range []string{"email-1", "email-2", "email-3"} {
		require.NoError(t, s.CreateSentEmail(ctx,
			testEmail(id, "acct-1", now.Add(-time.Duration(i)*time.Minute))))
	}

	emails, err := s.GetSentEmails(ctx, store.EmailFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, emails, 2)
	assert.Equal(t, "email-1", emails[0].ID)

	emails, err = s.GetSentEmails(ctx, store.EmailFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, emails, 1)
	assert.Equal(t, "email-3", emails[0].ID)
}

func TestDeleteSentEmail_CascadesAttachments(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	seedAccount(t, s, "acct-1")

	email := testEmail("email-1", "acct-1", time.Now().UTC())
	email.Attachments = []model.StoredAttachment{
		{ID: "att-1", EmailID: "email-1", Filename: "a.txt", LocalPath: "email-1/a.txt"},
		{ID: "att-2", EmailID: "email-1", Filename: "b.txt", LocalPath: "email-1/b.txt"},
	}
	require.NoError(t, s.CreateSentEmail(ctx, email))

	require.NoError(t, s.DeleteSentEmail(ctx, "email-1"))

	atts, err := s.GetAttachmentsForEmail(ctx, "email-1")
	require.NoError(t, err)
	assert.Empty(t, atts)

	assert.Error(t, s.DeleteSentEmail(ctx, "email-1"))
}

func TestDeleteAccount_NullifiesEmailReference(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	seedAccount(t, s, "acct-1")

	require.NoError(t, s.CreateSentEmail(ctx, testEmail("email-1", "acct-1", time.Now().UTC())))
	require.NoError(t, s.DeleteAccount(ctx, "acct-1"))

	got, err := s.GetSentEmailByID(ctx, "email-1")
	require.NoError(t, err)
	assert.Nil(t, got.AccountID)
}

func TestCreateSentEmail_WithoutAccount(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	require.NoError(t, s.CreateSentEmail(ctx, testEmail("email-1", "", time.Now().UTC())))

	got, err := s.GetSentEmailByID(ctx, "email-1")
	require.NoError(t, err)
	assert.Nil(t, got.AccountID)
}

func TestGetSentEmailByID_NotFound(t *testing.T) {
	s := testutil.NewTestStore(t)

	_, err := s.GetSentEmailByID(context.Background(), "missing")
	assert.Error(t, err)
}
