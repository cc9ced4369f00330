package documents

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"docassist-backend/internal/shared/server/respond"
	"docassist-backend/internal/shared/storage/content"
)

const defaultMaxUploadSize = 25 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc           *Service
	MaxUploadSize int64
}

// NewHandler constructs a Handler. maxUploadSize <= 0 selects 25MB.
func NewHandler(svc *Service, maxUploadSize int64) *Handler {
	if maxUploadSize <= 0 {
		maxUploadSize = defaultMaxUploadSize
	}
	return &Handler{Svc: svc, MaxUploadSize: maxUploadSize}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.POST("/upload", h.upload)
	rg.GET("/files/:username", h.list)
	rg.GET("/preview/:username/:filename", h.preview)
	rg.GET("/uploads/:username/:filename", h.serve)
	rg.GET("/clear/:username", h.clear)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "No file uploaded", nil)
		return
	}
	username := strings.TrimSpace(c.PostForm("username"))
	if username == "" {
		username = DefaultUsername
	}
	c.Set("username", username)
	c.Set("filename", fileHeader.Filename)

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	ingested, err := h.Svc.Ingest(c.Request.Context(), username, fileHeader.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput), errors.Is(err, content.ErrInvalidName):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "storage_error", err.Error(), nil)
		}
		return
	}

	respond.OK(c, toUploadResponse(ingested))
}

func (h *Handler) list(c *gin.Context) {
	username := c.Param("username")
	c.Set("username", username)

	names, err := h.Svc.List(c.Request.Context(), username)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "storage_error", err.Error(), nil)
		return
	}
	respond.OK(c, gin.H{"files": names})
}

func (h *Handler) preview(c *gin.Context) {
	username, filename := c.Param("username"), c.Param("filename")
	c.Set("username", username)
	c.Set("filename", filename)

	text, err := h.Svc.Preview(c.Request.Context(), username, filename)
	if err != nil {
		switch {
		case errors.Is(err, content.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "Not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "storage_error", err.Error(), nil)
		}
		return
	}
	respond.OK(c, gin.H{"text": text})
}

func (h *Handler) serve(c *gin.Context) {
	username, filename := c.Param("username"), c.Param("filename")
	c.Set("username", username)
	c.Set("filename", filename)

	rc, err := h.Svc.Open(c.Request.Context(), username, filename)
	if err != nil {
		switch {
		case errors.Is(err, content.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "Not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "storage_error", err.Error(), nil)
		}
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
}

func (h *Handler) clear(c *gin.Context) {
	username := c.Param("username")
	c.Set("username", username)

	if err := h.Svc.Clear(c.Request.Context(), username); err != nil {
		respond.Error(c, http.StatusInternalServerError, "storage_error", err.Error(), nil)
		return
	}
	respond.OK(c, gin.H{
		"success": true,
		"message": fmt.Sprintf("All data for '%s' cleared.", username),
	})
}
