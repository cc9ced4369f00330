package voice

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docassist-backend/internal/shared/server/respond"
)

// Handler exposes /voice-to-text.
type Handler struct {
	Transcriber Transcriber
}

// NewHandler constructs a Handler.
func NewHandler(t Transcriber) *Handler {
	return &Handler{Transcriber: t}
}

// RegisterRoutes attaches voice routes to the router group.
func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.POST("/voice-to-text", h.transcribe)
}

type transcribeRequest struct {
	Audio string `json:"audio"`
}

func (h *Handler) transcribe(c *gin.Context) {
	var req transcribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}
	if req.Audio == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "No audio data provided", nil)
		return
	}
	audio, err := DecodeAudio(req.Audio)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "audio must be base64 encoded", nil)
		return
	}
	if h.Transcriber == nil {
		respond.Error(c, http.StatusServiceUnavailable, "not_configured", "voice transcription is not configured", nil)
		return
	}

	text, err := h.Transcriber.Transcribe(c.Request.Context(), audio)
	if err != nil {
		if errors.Is(err, ErrUpstream) {
			respond.Error(c, http.StatusBadGateway, "upstream_error", respond.SanitizeForClient(err), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Voice processing failed", nil)
		return
	}
	respond.OK(c, gin.H{"text": text})
}
