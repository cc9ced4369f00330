package search

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docassist-backend/internal/shared/server/respond"
)

// Handler exposes the search endpoint.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches search routes to the router group.
func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.POST("/search", h.search)
}

type searchRequest struct {
	Keyword  string `json:"keyword"`
	Username string `json:"username"`
	Filename string `json:"filename"`
}

func (h *Handler) search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Filename) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "username and filename are required", nil)
		return
	}
	c.Set("username", req.Username)
	c.Set("filename", req.Filename)

	results, err := h.Svc.Search(c.Request.Context(), req.Username, req.Filename, req.Keyword)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "storage_error", err.Error(), nil)
		return
	}
	respond.OK(c, gin.H{"results": results})
}
