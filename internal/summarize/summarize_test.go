package summarize

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type echoLLM struct {
	prompt string
}

func (e *echoLLM) Generate(_ context.Context, prompt string) (string, error) {
	e.prompt = prompt
	return "summary", nil
}

func TestVideoID(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{url: "https://www.youtube.com/watch?v=abc123&t=10", want: "abc123"},
		{url: "https://youtu.be/xyz789?si=share", want: "xyz789"},
		{url: "https://www.youtube.com/embed/emb42", want: "emb42"},
		{url: "https://www.youtube.com/channel/foo", wantErr: true},
		{url: "not a url at all", wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.url, func(t *testing.T) {
			got, err := VideoID(tt.url)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidURL) {
					t.Fatalf("expected ErrInvalidURL, got %q, %v", got, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("VideoID = %q, %v", got, err)
			}
		})
	}
}

func TestWebClipJoinsParagraphs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/article":
			fmt.Fprint(w, `<html><body><h1>Title</h1><p>First para.</p><div><p>Second para.</p></div></body></html>`)
		default:
			fmt.Fprint(w, `<html><body><h1>Nothing here</h1></body></html>`)
		}
	}))
	defer srv.Close()

	model := &echoLLM{}
	svc := &Service{HTTP: srv.Client(), LLM: model, MaxChars: 15}

	got, err := svc.WebClip(context.Background(), srv.URL+"/article")
	if err != nil || got != "summary" {
		t.Fatalf("WebClip = %q, %v", got, err)
	}
	if model.prompt != "Summarize the following webpage content:\nFirst para. Sec" {
		t.Fatalf("unexpected prompt %q", model.prompt)
	}

	if _, err := svc.WebClip(context.Background(), srv.URL+"/empty"); !errors.Is(err, ErrNoReadableText) {
		t.Fatalf("expected ErrNoReadableText, got %v", err)
	}
	if _, err := svc.WebClip(context.Background(), "ftp://example.com"); !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("expected ErrInvalidURL, got %v", err)
	}
}

func TestYouTubeTranscriptFromCaptionTrack(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watch":
			if r.URL.Query().Get("v") == "nocaps" {
				fmt.Fprint(w, `<html><script>var ytInitialPlayerResponse = {"videoDetails":{}};</script></html>`)
				return
			}
			fmt.Fprintf(w, `<script>var x = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[{"baseUrl":"%s/fr","languageCode":"fr"},{"baseUrl":"%s/en","languageCode":"en"}],"audioTracks":[]}}};</script>`, srv.URL, srv.URL)
		case "/en":
			fmt.Fprint(w, `<?xml version="1.0" encoding="utf-8" ?><transcript><text start="0" dur="1">hello</text><text start="1" dur="1">it&amp;#39;s me</text></transcript>`)
		case "/fr":
			fmt.Fprint(w, `<transcript><text start="0" dur="1">bonjour</text></transcript>`)
		}
	}))
	defer srv.Close()

	model := &echoLLM{}
	svc := &Service{
		HTTP:        srv.Client(),
		Transcripts: YouTubeTranscripts{HTTP: srv.Client(), WatchURL: srv.URL + "/watch"},
		LLM:         model,
		MaxChars:    10000,
	}

	if _, err := svc.YouTube(context.Background(), "https://www.youtube.com/watch?v=vid1"); err != nil {
		t.Fatalf("YouTube: %v", err)
	}
	if model.prompt != "Summarize this YouTube transcript:\nhello it's me" {
		t.Fatalf("unexpected prompt %q", model.prompt)
	}

	_, err := svc.YouTube(context.Background(), "https://www.youtube.com/watch?v=nocaps")
	if !errors.Is(err, ErrTranscriptUnavailable) {
		t.Fatalf("expected ErrTranscriptUnavailable, got %v", err)
	}
	if _, err := svc.YouTube(context.Background(), "https://example.com/video"); !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("expected ErrInvalidURL, got %v", err)
	}
}

func TestParseTimedTextSkipsBlankLines(t *testing.T) {
	lines, err := parseTimedText([]byte(`<transcript><text>  a </text><text> </text><text>b</text></transcript>`))
	if err != nil || strings.Join(lines, "|") != "a|b" {
		t.Fatalf("parseTimedText = %v, %v", lines, err)
	}
}
