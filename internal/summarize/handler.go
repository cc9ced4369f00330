package summarize

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docassist-backend/internal/llm"
	"docassist-backend/internal/shared/server/respond"
)

// Handler exposes the summarization endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches summarization routes to the router group.
func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.POST("/youtube", h.youtube)
	rg.POST("/webclip", h.webclip)
}

type urlRequest struct {
	URL string `json:"url"`
}

func bindURL(c *gin.Context) (string, bool) {
	var req urlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return "", false
	}
	if strings.TrimSpace(req.URL) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "No URL provided", nil)
		return "", false
	}
	return req.URL, true
}

func (h *Handler) youtube(c *gin.Context) {
	rawURL, ok := bindURL(c)
	if !ok {
		return
	}
	summary, err := h.Svc.YouTube(c.Request.Context(), rawURL)
	if err != nil {
		fail(c, err)
		return
	}
	respond.OK(c, gin.H{"summary": summary})
}

func (h *Handler) webclip(c *gin.Context) {
	rawURL, ok := bindURL(c)
	if !ok {
		return
	}
	summary, err := h.Svc.WebClip(c.Request.Context(), rawURL)
	if err != nil {
		fail(c, err)
		return
	}
	respond.OK(c, gin.H{"summary": summary})
}

func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidURL):
		respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid URL", nil)
	case errors.Is(err, ErrNoReadableText):
		respond.Error(c, http.StatusBadRequest, "validation_error", "No readable text found on page", nil)
	case errors.Is(err, ErrTranscriptUnavailable):
		respond.Error(c, http.StatusNotFound, "not_found", "Transcript not available for this video", nil)
	case errors.Is(err, llm.ErrNotConfigured):
		respond.Error(c, http.StatusServiceUnavailable, "not_configured", "summarization is not configured", nil)
	default:
		respond.Error(c, http.StatusBadGateway, "upstream_error", respond.SanitizeForClient(err), nil)
	}
}
