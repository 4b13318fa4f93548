package resend_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pshrestha/justsend/internal/resend"
)

func TestNewAttachment_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "text content", data: []byte("hello world")},
		{name: "binary content", data: []byte{0x00, 0xFF, 0x7F, 0x01}},
		{name: "empty content", data: []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			att := resend.NewAttachment("file.bin", tt.data)

			decoded, err := att.Data()
			require.NoError(t, err)
			assert.Equal(t, tt.data, decoded)
			assert.Equal(t, int64(len(tt.data)), att.Size())
		})
	}
}

func TestAttachment_DataRejectsBadBase64(t *testing.T) {
	att := resend.Attachment{Filename: "x.txt", Content: "not base64!!!"}

	_, err := att.Data()
	var attErr *resend.AttachmentError
	assert.ErrorAs(t, err, &attErr)
}

func TestNewAttachment_ContentType(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"report.pdf", "application/pdf"},
		{"photo.PNG", "image/png"},
		{"notes.txt", "text/plain"},
		{"data.json", "application/json"},
		{"archive.zip", "application/zip"},
		{"unknown.xyz", "application/octet-stream"},
		{"noextension", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			att := resend.NewAttachment(tt.filename, []byte("x"))
			assert.Equal(t, tt.want, att.ContentType)
		})
	}
}

func TestAttachmentFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.txt")
	require.NoError(t, os.WriteFile(path, []byte("file contents"), 0o644))

	att, err := resend.AttachmentFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "hello.txt", att.Filename)
	assert.Equal(t, "text/plain", att.ContentType)

	data, err := att.Data()
	require.NoError(t, err)
	assert.Equal(t, []byte("file contents"), data)
}

func TestAttachmentFromFile_Missing(t *testing.T) {
	_, err := resend.AttachmentFromFile(filepath.Join(t.TempDir(), "missing.txt"))

	var attErr *resend.AttachmentError
	assert.ErrorAs(t, err, &attErr)
}
