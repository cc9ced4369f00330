package qa

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docassist-backend/internal/documents"
	"docassist-backend/internal/llm"
	"docassist-backend/internal/shared/server/respond"
)

// Handler exposes the question-answering endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches question routes to the router group.
func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.POST("/ask", h.ask)
	rg.POST("/ask_all", h.askAll)
}

type askRequest struct {
	Question string `json:"question"`
	Username string `json:"username"`
	Filename string `json:"filename"`
}

func (h *Handler) bind(c *gin.Context, needFile bool) (askRequest, bool) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return req, false
	}
	if strings.TrimSpace(req.Username) == "" {
		req.Username = documents.DefaultUsername
	}
	c.Set("username", req.Username)
	c.Set("filename", req.Filename)

	if strings.TrimSpace(req.Question) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "question is required", nil)
		return req, false
	}
	if needFile && strings.TrimSpace(req.Filename) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "filename is required", nil)
		return req, false
	}
	return req, true
}

func (h *Handler) ask(c *gin.Context) {
	req, ok := h.bind(c, true)
	if !ok {
		return
	}
	answer, err := h.Svc.Ask(c.Request.Context(), req.Username, req.Filename, req.Question)
	if err != nil {
		h.fail(c, err, "Text not found")
		return
	}
	respond.OK(c, gin.H{"answer": answer})
}

func (h *Handler) askAll(c *gin.Context) {
	req, ok := h.bind(c, false)
	if !ok {
		return
	}
	answer, err := h.Svc.AskAll(c.Request.Context(), req.Username, req.Question)
	if err != nil {
		h.fail(c, err, "No documents found for user")
		return
	}
	respond.OK(c, gin.H{"answer": answer})
}

func (h *Handler) fail(c *gin.Context, err error, notFound string) {
	switch {
	case errors.Is(err, ErrNoContent):
		respond.Error(c, http.StatusNotFound, "not_found", notFound, nil)
	case errors.Is(err, llm.ErrNotConfigured):
		respond.Error(c, http.StatusServiceUnavailable, "not_configured", "question answering is not configured", nil)
	case errors.Is(err, ErrUpstream):
		respond.Error(c, http.StatusBadGateway, "upstream_error", respond.SanitizeForClient(err), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "storage_error", err.Error(), nil)
	}
}
