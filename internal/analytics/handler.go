package analytics

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docassist-backend/internal/shared/server/respond"
	"docassist-backend/internal/shared/telemetry"
	"docassist-backend/internal/shared/util"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler exposes analytics endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analytics routes to the router group.
func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.GET("/analytics/:username", h.summary)
	rg.GET("/analytics/:username/export", h.export)
}

type summaryResponse struct {
	Summary
	Error string `json:"error,omitempty"`
}

// summary always answers 200; a read failure yields a zeroed record with an
// error field.
func (h *Handler) summary(c *gin.Context) {
	username := c.Param("username")
	c.Set("username", username)

	s, err := h.Svc.Summarize(c.Request.Context(), username)
	if err != nil {
		telemetry.Error("analytics.read_failed", map[string]any{
			"username": username,
			"error":    err,
		})
		respond.OK(c, summaryResponse{Summary: EmptySummary(), Error: err.Error()})
		return
	}
	respond.OK(c, summaryResponse{Summary: s})
}

func (h *Handler) export(c *gin.Context) {
	username := c.Param("username")
	c.Set("username", username)

	rec, err := h.Svc.Record(c.Request.Context(), username)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "storage_error", err.Error(), nil)
		return
	}
	data, err := ExportXLSX(rec)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to build workbook", nil)
		return
	}

	name := "analytics"
	if key, err := util.UserKey(username); err == nil {
		name = key + "-analytics"
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}
