package content

import (
	"context"
	"errors"
	"io"

	"docassist-backend/internal/shared/util"
)

// TextSuffix is appended to a document's key to name its extracted text.
const TextSuffix = ".txt"

var (
	// ErrNotFound is returned when a user has no stored object under the key.
	ErrNotFound = errors.New("not found")
	// ErrInvalidName is returned when a username or filename sanitizes to nothing.
	ErrInvalidName = util.ErrInvalidName
)

// StoredDocument describes an original upload after it was written.
type StoredDocument struct {
	FileName  string
	SizeBytes int64
	MimeType  string
}

// Store persists original documents and their extracted text in two parallel
// per-user namespaces. Reads against a namespace that does not exist yet
// report ErrNotFound or an empty listing, never a storage failure.
type Store interface {
	SaveDocument(ctx context.Context, username, fileName string, r io.Reader) (StoredDocument, error)
	SaveText(ctx context.Context, username, fileName, text string) error
	LoadText(ctx context.Context, username, fileName string) (string, error)
	OpenDocument(ctx context.Context, username, fileName string) (io.ReadCloser, error)
	ListDocuments(ctx context.Context, username string) ([]string, error)
	ClearUser(ctx context.Context, username string) error
}

// Keys resolves the namespace and object name used for username/fileName.
func Keys(username, fileName string) (userKey string, name string, err error) {
	userKey, err = util.UserKey(username)
	if err != nil {
		return "", "", err
	}
	name, err = util.SanitizeFileName(fileName)
	if err != nil {
		return "", "", err
	}
	return userKey, name, nil
}
