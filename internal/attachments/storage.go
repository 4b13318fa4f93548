// Package attachments persists attachment file content on local disk,
// grouped into one folder per sent email. It is independent of the
// database: stored paths are relative to the base directory so the base
// can move without invalidating records, and file/record consistency is
// the caller's responsibility.
package attachments

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

var (
	// ErrInvalidPath is returned when a relative path cannot be
	// resolved or the file is absent.
	ErrInvalidPath = errors.New("invalid storage path")

	// ErrSaveFailed is returned when an attachment file cannot be
	// written.
	ErrSaveFailed = errors.New("failed to save file")
)

// Storage persists attachment files under a base directory, one
// subfolder per email ID.
type Storage struct {
	baseDir string
}

// NewStorage creates a Storage rooted at baseDir, creating the directory
// if needed.
func NewStorage(baseDir string) (*Storage, error) {
	if baseDir == "" {
		return nil, ErrInvalidPath
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating attachments directory %s: %w", baseDir, err)
	}
	return &Storage{baseDir: baseDir}, nil
}

// BaseDir returns the base attachments directory.
func (s *Storage) BaseDir() string {
	return s.baseDir
}

// SaveAttachment writes data into the folder for emailID and returns the
// stored path relative to the base directory. A filename that already
// exists in the folder is disambiguated by inserting _1, _2, ... before
// the extension.
func (s *Storage) SaveAttachment(data []byte, filename, emailID string) (string, error) {
	if filename == "" || emailID == "" {
		return "", ErrInvalidPath
	}

	// Only the final path element of the filename is used, so the file
	// always lands inside the per-email folder.
	filename = filepath.Base(filename)
	if filename == "." || filename == ".." || filename == string(filepath.Separator) {
		return "", ErrInvalidPath
	}

	folder := filepath.Join(s.baseDir, emailID)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("%w: creating folder for email %s: %v", ErrSaveFailed, emailID, err)
	}

	finalName := filename
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	ext := filepath.Ext(filename)
	for counter := 1; ; counter++ {
		if _, err := os.Stat(filepath.Join(folder, finalName)); os.IsNotExist(err) {
			break
		}
		finalName = fmt.Sprintf("%s_%d%s", base, counter, ext)
	}

	if err := os.WriteFile(filepath.Join(folder, finalName), data, 0o644); err != nil {
		return "", fmt.Errorf("%w: writing %s: %v", ErrSaveFailed, finalName, err)
	}

	return filepath.Join(emailID, finalName), nil
}

// LoadAttachment reads an attachment file by its stored relative path.
func (s *Storage) LoadAttachment(relativePath string) ([]byte, error) {
	full, err := s.resolve(relativePath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPath, relativePath)
	}
	return data, nil
}

// FullPath resolves a stored relative path against the base directory.
func (s *Storage) FullPath(relativePath string) (string, error) {
	return s.resolve(relativePath)
}

// FileExists reports whether the file for a stored relative path is
// still on disk.
func (s *Storage) FileExists(relativePath string) bool {
	full, err := s.resolve(relativePath)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

// DeleteEmailFolder removes the folder for emailID and everything in it.
// Best effort: a missing or undeletable folder is not an error.
func (s *Storage) DeleteEmailFolder(emailID string) {
	if emailID == "" {
		return
	}
	_ = os.RemoveAll(filepath.Join(s.baseDir, emailID))
}

// TotalStorageUsed returns the recursive sum of file sizes under the
// base directory. Display statistic only; unreadable entries are skipped.
func (s *Storage) TotalStorageUsed() int64 {
	var total int64
	_ = filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}

// FormattedStorageUsed returns the total storage as a human-readable
// string, e.g. "1.2 MB".
func (s *Storage) FormattedStorageUsed() string {
	return humanize.Bytes(uint64(s.TotalStorageUsed()))
}

// resolve joins a relative path with the base directory, rejecting
// paths that would escape it.
func (s *Storage) resolve(relativePath string) (string, error) {
	if relativePath == "" {
		return "", ErrInvalidPath
	}
	full := filepath.Join(s.baseDir, relativePath)
	rel, err := filepath.Rel(s.baseDir, full)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", ErrInvalidPath
	}
	return full, nil
}
