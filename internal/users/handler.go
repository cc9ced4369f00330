package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docassist-backend/internal/shared/auth"
	"docassist-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.POST("/register", h.register)
	rg.POST("/login", h.login)
	rg.GET("/me", h.me)
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) register(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}
	if err := h.Svc.Register(c.Request.Context(), req.Username, req.Password); err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, gin.H{"success": true, "message": "Registration successful."})
}

func (h *Handler) login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}
	token, err := h.Svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	body := gin.H{"success": true, "message": "Login successful."}
	if token != "" {
		body["token"] = token
	}
	respond.OK(c, body)
}

func (h *Handler) me(c *gin.Context) {
	user, err := h.Svc.Me(c.Request.Context(), c.GetHeader("Authorization"))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingSecret):
			respond.Error(c, http.StatusServiceUnavailable, "not_configured", "sessions are not configured", nil)
		case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load user", nil)
		}
		return
	}
	respond.OK(c, gin.H{"username": user.Username, "createdAt": user.CreatedAt})
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", "Username and password required.", nil)
	case errors.Is(err, ErrUserExists):
		respond.Error(c, http.StatusConflict, "conflict", "Username already exists.", nil)
	case errors.Is(err, ErrInvalidCredentials):
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Invalid username or password.", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "account operation failed", nil)
	}
}
