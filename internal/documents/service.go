package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"docassist-backend/internal/analytics"
	"docassist-backend/internal/extract"
	"docassist-backend/internal/shared/storage/content"
	"docassist-backend/internal/shared/telemetry"
	"docassist-backend/internal/shared/util"
)

// Extractor turns a document on disk into text.
type Extractor interface {
	Extract(ctx context.Context, path string) extract.Result
}

// Service runs the ingestion pipeline and serves stored documents.
type Service struct {
	Store      content.Store
	Extractor  Extractor
	Analytics  *analytics.Service
	ScratchDir string
}

// Ingest stores the upload, extracts its text, stores the text and records
// the file in analytics, strictly in that order. An empty extraction is not
// an error.
func (s *Service) Ingest(ctx context.Context, username, fileName string, r io.Reader) (Ingested, error) {
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return Ingested{}, fmt.Errorf("%w: file name", ErrInvalidInput)
	}

	tmpPath, err := s.spool(name, r)
	if err != nil {
		return Ingested{}, err
	}
	defer os.Remove(tmpPath)

	f, err := os.Open(tmpPath)
	if err != nil {
		return Ingested{}, fmt.Errorf("open spooled upload: %w", err)
	}
	stored, err := s.Store.SaveDocument(ctx, username, name, f)
	f.Close()
	if err != nil {
		return Ingested{}, fmt.Errorf("save document: %w", err)
	}

	result := s.Extractor.Extract(ctx, tmpPath)
	if err := s.Store.SaveText(ctx, username, stored.FileName, result.Text); err != nil {
		return Ingested{}, fmt.Errorf("save text: %w", err)
	}

	words := result.WordCount()
	if err := s.Analytics.RecordIngestion(ctx, username, stored.FileName, words, result.Pages); err != nil {
		return Ingested{}, fmt.Errorf("record ingestion: %w", err)
	}

	if words == 0 {
		telemetry.Warn("documents.empty_extraction", map[string]any{
			"username": username,
			"filename": stored.FileName,
			"pages":    result.Pages,
		})
	}

	return Ingested{
		Username:  username,
		Filename:  stored.FileName,
		MimeType:  stored.MimeType,
		SizeBytes: stored.SizeBytes,
		Words:     words,
		Pages:     result.Pages,
		Method:    result.Method,
	}, nil
}

// spool copies the upload to a local file so extraction works on a path
// regardless of the content store backend.
func (s *Service) spool(name string, r io.Reader) (string, error) {
	dir := s.ScratchDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir scratch: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "upload-*"+filepath.Ext(name))
	if err != nil {
		return "", fmt.Errorf("create spool file: %w", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("spool upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close spool file: %w", err)
	}
	return tmp.Name(), nil
}

// List returns the user's uploaded filenames; an unknown user has none.
func (s *Service) List(ctx context.Context, username string) ([]string, error) {
	names, err := s.Store.ListDocuments(ctx, username)
	if errors.Is(err, content.ErrInvalidName) {
		return []string{}, nil
	}
	return names, err
}

// Preview returns the stored text for a document.
func (s *Service) Preview(ctx context.Context, username, fileName string) (string, error) {
	text, err := s.Store.LoadText(ctx, username, fileName)
	if errors.Is(err, content.ErrInvalidName) {
		return "", content.ErrNotFound
	}
	return text, err
}

// Open streams the original upload.
func (s *Service) Open(ctx context.Context, username, fileName string) (io.ReadCloser, error) {
	rc, err := s.Store.OpenDocument(ctx, username, fileName)
	if errors.Is(err, content.ErrInvalidName) {
		return nil, content.ErrNotFound
	}
	return rc, err
}

// Clear removes the user's documents, texts and analytics. Every part is
// attempted even when an earlier one fails.
func (s *Service) Clear(ctx context.Context, username string) error {
	var errs []error
	if err := s.Store.ClearUser(ctx, username); err != nil {
		errs = append(errs, err)
	}
	if err := s.Analytics.Clear(ctx, username); err != nil {
		errs = append(errs, fmt.Errorf("clear analytics: %w", err))
	}
	return errors.Join(errs...)
}
