package summarize

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	userAgent      = "Mozilla/5.0 (compatible; docassist/1.0)"
	youtubeWatch   = "https://www.youtube.com/watch"
	captionsMarker = `"captionTracks":`
)

// TranscriptSource returns the caption lines of a video.
type TranscriptSource interface {
	Fetch(ctx context.Context, videoID string) ([]string, error)
}

// VideoID extracts the id from watch?v=, youtu.be/ and /embed/ URLs.
func VideoID(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", ErrInvalidURL
	}
	if v := u.Query().Get("v"); v != "" {
		return v, nil
	}

	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	path := strings.Trim(u.Path, "/")
	switch {
	case host == "youtu.be" && path != "":
		return strings.Split(path, "/")[0], nil
	case strings.HasSuffix(host, "youtube.com") && strings.HasPrefix(path, "embed/"):
		if id := strings.TrimPrefix(path, "embed/"); id != "" {
			return strings.Split(id, "/")[0], nil
		}
	}
	return "", ErrInvalidURL
}

// YouTubeTranscripts reads captions from the watch page's caption tracks.
type YouTubeTranscripts struct {
	HTTP     *http.Client
	WatchURL string
	Language string
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
}

// Fetch downloads the preferred caption track for videoID.
func (y YouTubeTranscripts) Fetch(ctx context.Context, videoID string) ([]string, error) {
	watch := y.WatchURL
	if watch == "" {
		watch = youtubeWatch
	}
	page, err := y.get(ctx, watch+"?v="+url.QueryEscape(videoID))
	if err != nil {
		return nil, err
	}

	tracks, err := parseCaptionTracks(page)
	if err != nil {
		return nil, err
	}
	track := pickTrack(tracks, y.Language)

	raw, err := y.get(ctx, track.BaseURL)
	if err != nil {
		return nil, err
	}
	lines, err := parseTimedText(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: parse captions: %w", ErrUpstream, err)
	}
	if len(lines) == 0 {
		return nil, ErrTranscriptUnavailable
	}
	return lines, nil
}

func (y YouTubeTranscripts) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := y.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", ErrUpstream, req.URL.Host, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func parseCaptionTracks(page []byte) ([]captionTrack, error) {
	idx := strings.Index(string(page), captionsMarker)
	if idx < 0 {
		return nil, ErrTranscriptUnavailable
	}
	var tracks []captionTrack
	dec := json.NewDecoder(strings.NewReader(string(page[idx+len(captionsMarker):])))
	if err := dec.Decode(&tracks); err != nil {
		return nil, fmt.Errorf("%w: decode caption tracks: %w", ErrUpstream, err)
	}
	if len(tracks) == 0 {
		return nil, ErrTranscriptUnavailable
	}
	return tracks, nil
}

func pickTrack(tracks []captionTrack, lang string) captionTrack {
	if lang == "" {
		lang = "en"
	}
	for _, t := range tracks {
		if strings.HasPrefix(t.LanguageCode, lang) {
			return t
		}
	}
	return tracks[0]
}

type timedText struct {
	Texts []struct {
		Body string `xml:",chardata"`
	} `xml:"text"`
}

func parseTimedText(raw []byte) ([]string, error) {
	var tt timedText
	if err := xml.Unmarshal(raw, &tt); err != nil {
		return nil, err
	}
	lines := make([]string, 0, len(tt.Texts))
	for _, t := range tt.Texts {
		line := strings.TrimSpace(html.UnescapeString(t.Body))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}
