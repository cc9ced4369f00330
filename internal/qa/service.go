package qa

import (
	"context"
	"errors"
	"fmt"

	"docassist-backend/internal/analytics"
	"docassist-backend/internal/llm"
	"docassist-backend/internal/search"
	"docassist-backend/internal/shared/storage/content"
)

var (
	// ErrNoContent is returned when there is no stored text to ask about.
	ErrNoContent = errors.New("no content")
	// ErrUpstream wraps failures of the language model call.
	ErrUpstream = errors.New("llm request failed")
)

// Service answers questions over stored document text.
type Service struct {
	Store          content.Store
	Search         *search.Service
	LLM            llm.Client
	Analytics      *analytics.Service
	AskMaxChars    int
	AskAllMaxChars int
}

// Ask answers question from one document's text. The query is logged only
// after the model answered.
func (s *Service) Ask(ctx context.Context, username, filename, question string) (string, error) {
	text, err := s.Store.LoadText(ctx, username, filename)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) || errors.Is(err, content.ErrInvalidName) {
			return "", ErrNoContent
		}
		return "", err
	}

	prompt := llm.AskPrompt(question, search.Truncate(text, s.AskMaxChars))
	return s.answer(ctx, username, question, prompt)
}

// AskAll answers question from every document the user has stored.
func (s *Service) AskAll(ctx context.Context, username, question string) (string, error) {
	assembled, err := s.Search.Assemble(ctx, username, s.AskAllMaxChars)
	if err != nil {
		return "", err
	}
	if assembled.Documents == 0 {
		return "", ErrNoContent
	}

	prompt := llm.AskAllPrompt(question, assembled.Text)
	return s.answer(ctx, username, question, prompt)
}

func (s *Service) answer(ctx context.Context, username, question, prompt string) (string, error) {
	answer, err := s.LLM.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if err := s.Analytics.RecordQuery(ctx, username, question); err != nil {
		return "", fmt.Errorf("record query: %w", err)
	}
	return answer, nil
}
