package search

import (
	"context"
	"errors"
	"strings"

	"docassist-backend/internal/shared/storage/content"
)

// Service answers keyword searches and assembles multi-document context from
// the content store.
type Service struct {
	Store content.Store
}

// NewService constructs a Service.
func NewService(store content.Store) *Service {
	return &Service{Store: store}
}

// Lines returns the trimmed lines of text that contain keyword, ignoring case,
// in their original order.
func Lines(text, keyword string) []string {
	matches := []string{}
	if keyword == "" {
		return matches
	}
	needle := strings.ToLower(keyword)
	for _, line := range splitLines(text) {
		if strings.Contains(strings.ToLower(line), needle) {
			matches = append(matches, strings.TrimSpace(line))
		}
	}
	return matches
}

// Search looks for keyword in one stored document. A missing document and a
// document without matches both yield an empty slice.
func (s *Service) Search(ctx context.Context, username, filename, keyword string) ([]string, error) {
	if keyword == "" {
		return []string{}, nil
	}
	text, err := s.Store.LoadText(ctx, username, filename)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) || errors.Is(err, content.ErrInvalidName) {
			return []string{}, nil
		}
		return nil, err
	}
	return Lines(text, keyword), nil
}

// Assembly is the bounded concatenation of a user's texts.
type Assembly struct {
	Text      string
	Documents int
}

// Assemble concatenates every stored text for username in listing order, each
// followed by a line break, and cuts the result to maxChars characters.
// maxChars <= 0 disables the bound.
func (s *Service) Assemble(ctx context.Context, username string, maxChars int) (Assembly, error) {
	names, err := s.Store.ListDocuments(ctx, username)
	if err != nil {
		if errors.Is(err, content.ErrInvalidName) {
			return Assembly{}, nil
		}
		return Assembly{}, err
	}

	var sb strings.Builder
	docs := 0
	for _, name := range names {
		text, err := s.Store.LoadText(ctx, username, name)
		if err != nil {
			if errors.Is(err, content.ErrNotFound) {
				continue
			}
			return Assembly{}, err
		}
		sb.WriteString(text)
		sb.WriteString("\n")
		docs++
	}
	return Assembly{Text: Truncate(sb.String(), maxChars), Documents: docs}, nil
}

// Truncate keeps the first maxChars characters of s. maxChars <= 0 keeps all.
func Truncate(s string, maxChars int) string {
	if maxChars <= 0 || len(s) <= maxChars {
		return s
	}
	n := 0
	for i := range s {
		if n == maxChars {
			return s[:i]
		}
		n++
	}
	return s
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
