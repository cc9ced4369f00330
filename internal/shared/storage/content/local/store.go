package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"docassist-backend/internal/shared/storage/content"
	"docassist-backend/internal/shared/util"
)

// Store implements content.Store on the local filesystem:
// <uploadDir>/<user>/<file> and <textDir>/<user>/<file>.txt.
type Store struct {
	uploadDir string
	textDir   string
}

// New creates a filesystem content store.
func New(uploadDir, textDir string) *Store {
	return &Store{uploadDir: uploadDir, textDir: textDir}
}

// SaveDocument writes the original bytes under the user's upload namespace.
func (s *Store) SaveDocument(ctx context.Context, username, fileName string, r io.Reader) (content.StoredDocument, error) {
	userKey, name, err := content.Keys(username, fileName)
	if err != nil {
		return content.StoredDocument{}, err
	}
	if err := ctx.Err(); err != nil {
		return content.StoredDocument{}, err
	}

	dirPath := filepath.Join(s.uploadDir, userKey)
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return content.StoredDocument{}, fmt.Errorf("mkdir: %w", err)
	}

	var sniff [512]byte
	n, readErr := io.ReadFull(r, sniff[:])
	if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
		return content.StoredDocument{}, fmt.Errorf("read sniff: %w", readErr)
	}
	mimeType := http.DetectContentType(sniff[:n])

	f, err := os.OpenFile(filepath.Join(dirPath, name), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return content.StoredDocument{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	size := int64(0)
	if n > 0 {
		if _, err := f.Write(sniff[:n]); err != nil {
			return content.StoredDocument{}, fmt.Errorf("write sniff: %w", err)
		}
		size += int64(n)
	}
	written, err := io.Copy(f, r)
	if err != nil {
		return content.StoredDocument{}, fmt.Errorf("write body: %w", err)
	}
	size += written

	return content.StoredDocument{FileName: name, SizeBytes: size, MimeType: mimeType}, nil
}

// SaveText writes extracted text next to the user's other texts.
func (s *Store) SaveText(ctx context.Context, username, fileName, text string) error {
	userKey, name, err := content.Keys(username, fileName)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dirPath := filepath.Join(s.textDir, userKey)
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dirPath, name+content.TextSuffix), []byte(text), 0o644); err != nil {
		return fmt.Errorf("write text: %w", err)
	}
	return nil
}

// LoadText returns the extracted text for a document.
func (s *Store) LoadText(ctx context.Context, username, fileName string) (string, error) {
	userKey, name, err := content.Keys(username, fileName)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(filepath.Join(s.textDir, userKey, name+content.TextSuffix))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", content.ErrNotFound
		}
		return "", fmt.Errorf("read text: %w", err)
	}
	return string(data), nil
}

// OpenDocument opens the original upload for reading.
func (s *Store) OpenDocument(ctx context.Context, username, fileName string) (io.ReadCloser, error) {
	userKey, name, err := content.Keys(username, fileName)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.uploadDir, userKey, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, content.ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// ListDocuments returns the user's uploaded filenames in directory order.
func (s *Store) ListDocuments(ctx context.Context, username string) ([]string, error) {
	userKey, err := util.UserKey(username)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(s.uploadDir, userKey))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ClearUser removes both namespaces. A failure on one does not stop the other.
func (s *Store) ClearUser(ctx context.Context, username string) error {
	userKey, err := util.UserKey(username)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var errs []error
	for _, root := range []string{s.uploadDir, s.textDir} {
		if err := os.RemoveAll(filepath.Join(root, userKey)); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", root, err))
		}
	}
	return errors.Join(errs...)
}

var _ content.Store = (*Store)(nil)
