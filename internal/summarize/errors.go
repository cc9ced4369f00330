package summarize

import "errors"

var (
	// ErrInvalidURL is returned for a missing or unusable URL.
	ErrInvalidURL = errors.New("invalid url")
	// ErrNoReadableText is returned when a page has no paragraph text.
	ErrNoReadableText = errors.New("no readable text found on page")
	// ErrTranscriptUnavailable is returned when a video has no caption track.
	ErrTranscriptUnavailable = errors.New("transcript not available for this video")
	// ErrUpstream wraps failures fetching a page or calling the model.
	ErrUpstream = errors.New("upstream request failed")
)
