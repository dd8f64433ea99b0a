package storage

import (
	"strings"

	"shellnote/internal/errors"
)

// Upload acceptance limits.
const (
	MaxFileSize     = 5 * 1024 * 1024
	MaxFilesPerNote = 5
)

// allowedMimeTypes is the explicit allow-list; any text/* type is also
// accepted.
var allowedMimeTypes = mimeSet(
	"image/png",
	"image/jpeg",
	"image/webp",
	"image/gif",
	"application/pdf",
	"text/plain",
	"text/markdown",
	"text/html",
	"application/zip",
	"application/x-zip-compressed",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/msword",
)

func mimeSet(types ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return set
}

// Upload describes one incoming file before it is accepted.
type Upload struct {
	OriginalName string
	MimeType     string
	Size         int64
}

// CheckUploads validates a batch of uploads against the acceptance policy.
// It must run before anything is persisted: a rejected batch leaves no note
// row, no attachment row, and no blob behind.
func CheckUploads(uploads []Upload) error {
	if len(uploads) > MaxFilesPerNote {
		return errors.ErrTooManyFiles
	}
	for _, u := range uploads {
		if u.Size > MaxFileSize {
			return errors.ErrFileTooLarge
		}
		if !mimeAllowed(u.MimeType) {
			return errors.ErrFileTypeNotAllowed
		}
	}
	return nil
}

func mimeAllowed(mimeType string) bool {
	if _, ok := allowedMimeTypes[mimeType]; ok {
		return true
	}
	return strings.HasPrefix(mimeType, "text/")
}
