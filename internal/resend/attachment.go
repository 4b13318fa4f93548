package resend

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Attachment is one file to send with an email. Content is the
// base64-encoded file body, matching the Resend wire format.
type Attachment struct {
	Filename    string
	Content     string
	ContentType string
}

// NewAttachment builds an attachment from raw bytes, encoding them to
// base64 and mapping the MIME type from the filename extension.
func NewAttachment(filename string, data []byte) Attachment {
	return Attachment{
		Filename:    filename,
		Content:     base64.StdEncoding.EncodeToString(data),
		ContentType: mimeTypeFor(filename),
	}
}

// AttachmentFromFile reads a file from disk and builds an attachment.
func AttachmentFromFile(path string) (Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Attachment{}, &AttachmentError{
			Message: fmt.Sprintf("reading %s: %v", path, err),
		}
	}
	return NewAttachment(filepath.Base(path), data), nil
}

// Data decodes the attachment content back into raw bytes.
func (a Attachment) Data() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(a.Content)
	if err != nil {
		return nil, &AttachmentError{
			Message: fmt.Sprintf("decoding %s: %v", a.Filename, err),
		}
	}
	return data, nil
}

// Size returns the decoded byte size of the attachment content.
func (a Attachment) Size() int64 {
	n := len(a.Content)
	if n == 0 {
		return 0
	}
	size := int64(n/4) * 3
	if strings.HasSuffix(a.Content, "==") {
		size -= 2
	} else if strings.HasSuffix(a.Content, "=") {
		size--
	}
	return size
}

// mimeTypes maps common file extensions to MIME types.
var mimeTypes = map[string]string{
	"pdf":  "application/pdf",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"txt":  "text/plain",
	"html": "text/html",
	"htm":  "text/html",
	"css":  "text/css",
	"js":   "application/javascript",
	"json": "application/json",
	"xml":  "application/xml",
	"zip":  "application/zip",
	"csv":  "text/csv",
	"mp3":  "audio/mpeg",
	"mp4":  "video/mp4",
}

// mimeTypeFor returns the MIME type for a filename based on its
// extension, defaulting to application/octet-stream.
func mimeTypeFor(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if mt, ok := mimeTypes[ext]; ok {
		return mt
	}
	return "application/octet-stream"
}
