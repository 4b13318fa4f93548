package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS accounts (
	id            TEXT PRIMARY KEY,
	website_name  TEXT NOT NULL,
	email_address TEXT NOT NULL,
	signature     TEXT NOT NULL DEFAULT '',
	is_default    INTEGER NOT NULL DEFAULT 0 CHECK(is_default IN (0, 1)),
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sent_emails (
	id            TEXT PRIMARY KEY,
	from_address  TEXT NOT NULL,
	to_addresses  TEXT NOT NULL DEFAULT '[]',
	cc_addresses  TEXT NOT NULL DEFAULT '[]',
	bcc_addresses TEXT NOT NULL DEFAULT '[]',
	subject       TEXT NOT NULL,
	html_body     TEXT NOT NULL,
	text_body     TEXT NOT NULL DEFAULT '',
	sent_at       DATETIME NOT NULL,
	resend_id     TEXT NOT NULL DEFAULT '',
	account_id    TEXT REFERENCES accounts(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS attachments (
	id           TEXT PRIMARY KEY,
	email_id     TEXT NOT NULL REFERENCES sent_emails(id) ON DELETE CASCADE,
	filename     TEXT NOT NULL,
	content_type TEXT NOT NULL DEFAULT '',
	file_size    INTEGER NOT NULL DEFAULT 0,
	local_path   TEXT NOT NULL,
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_accounts_created_at ON accounts(created_at);
CREATE INDEX IF NOT EXISTS idx_sent_emails_sent_at ON sent_emails(sent_at);
CREATE INDEX IF NOT EXISTS idx_sent_emails_account_id ON sent_emails(account_id);
CREATE INDEX IF NOT EXISTS idx_attachments_email_id ON attachments(email_id);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
