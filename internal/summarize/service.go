package summarize

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"docassist-backend/internal/llm"
	"docassist-backend/internal/search"
)

// DefaultFetchTimeout bounds page and caption downloads.
const DefaultFetchTimeout = 10 * time.Second

// Service summarizes web pages and video transcripts with the model.
type Service struct {
	HTTP        *http.Client
	Transcripts TranscriptSource
	LLM         llm.Client
	MaxChars    int
}

// NewService builds a Service with a 10s HTTP client and YouTube captions.
func NewService(model llm.Client, maxChars int) *Service {
	client := &http.Client{Timeout: DefaultFetchTimeout}
	return &Service{
		HTTP:        client,
		Transcripts: YouTubeTranscripts{HTTP: client},
		LLM:         model,
		MaxChars:    maxChars,
	}
}

// WebClip summarizes the paragraph text of a page.
func (s *Service) WebClip(ctx context.Context, rawURL string) (string, error) {
	text, err := PageText(ctx, s.HTTP, rawURL)
	if err != nil {
		return "", err
	}
	return s.summarize(ctx, llm.WebClipPrompt(search.Truncate(text, s.MaxChars)))
}

// YouTube summarizes a video's caption track.
func (s *Service) YouTube(ctx context.Context, rawURL string) (string, error) {
	id, err := VideoID(rawURL)
	if err != nil {
		return "", err
	}
	lines, err := s.Transcripts.Fetch(ctx, id)
	if err != nil {
		return "", err
	}
	text := search.Truncate(strings.Join(lines, " "), s.MaxChars)
	return s.summarize(ctx, llm.YouTubePrompt(text))
}

func (s *Service) summarize(ctx context.Context, prompt string) (string, error) {
	out, err := s.LLM.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return out, nil
}
