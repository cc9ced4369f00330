package voice

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	speech "google.golang.org/api/speech/v1"
)

var (
	// ErrInvalidAudio is returned for missing or undecodable audio.
	ErrInvalidAudio = errors.New("invalid audio data")
	// ErrUpstream wraps speech API failures.
	ErrUpstream = errors.New("speech recognition failed")
)

// Recognition settings sent with every request.
const (
	Encoding        = "LINEAR16"
	SampleRateHertz = 16000
	LanguageCode    = "en-US"
)

// Transcriber turns raw audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// GoogleSpeech calls the Cloud Speech-to-Text v1 recognize method.
type GoogleSpeech struct {
	svc *speech.Service
}

// NewGoogleSpeech builds a client. With an empty apiKey the default
// application credentials are used.
func NewGoogleSpeech(ctx context.Context, apiKey string, opts ...option.ClientOption) (*GoogleSpeech, error) {
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	svc, err := speech.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create speech client: %w", err)
	}
	return &GoogleSpeech{svc: svc}, nil
}

// Transcribe concatenates the first alternative of every result.
func (g *GoogleSpeech) Transcribe(ctx context.Context, audio []byte) (string, error) {
	resp, err := g.svc.Speech.Recognize(&speech.RecognizeRequest{
		Audio: &speech.RecognitionAudio{Content: base64.StdEncoding.EncodeToString(audio)},
		Config: &speech.RecognitionConfig{
			Encoding:        Encoding,
			SampleRateHertz: SampleRateHertz,
			LanguageCode:    LanguageCode,
		},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	var sb strings.Builder
	for _, r := range resp.Results {
		if r == nil || len(r.Alternatives) == 0 || r.Alternatives[0] == nil {
			continue
		}
		sb.WriteString(r.Alternatives[0].Transcript)
	}
	return sb.String(), nil
}

// DecodeAudio decodes the base64 payload sent by browsers, with or without
// a data URL prefix.
func DecodeAudio(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if i := strings.Index(encoded, ";base64,"); strings.HasPrefix(encoded, "data:") && i >= 0 {
		encoded = encoded[i+len(";base64,"):]
	}
	if encoded == "" {
		return nil, ErrInvalidAudio
	}
	audio, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidAudio
	}
	return audio, nil
}
