package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"docassist-backend/internal/services/health"
	"docassist-backend/internal/shared/config"
	"docassist-backend/internal/shared/metrics"
	"docassist-backend/internal/shared/server/middleware"
	"docassist-backend/internal/shared/server/respond"
)

const (
	serviceName = "docassist-backend"

	// rate limit groups
	groupCollaborator = "COLLABORATOR"
	groupDefault      = "DEFAULT"
)

// Registrar is implemented by every feature handler.
type Registrar interface {
	RegisterRoutes(rg gin.IRoutes)
}

// RouterDeps carries everything NewRouter mounts.
type RouterDeps struct {
	Config   config.Config
	Health   *health.Service
	Handlers []Registrar
}

// collaboratorRoutes call paid upstream services and share a tighter limit.
var collaboratorRoutes = map[string]struct{}{
	"/ask":           {},
	"/ask_all":       {},
	"/youtube":       {},
	"/webclip":       {},
	"/voice-to-text": {},
	"/register":      {},
	"/login":         {},
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		otelgin.Middleware(serviceName),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			DefaultGroup: groupDefault,
			GroupFor:     rateLimitGroup,
			Rules: map[string]middleware.RateLimitRule{
				groupCollaborator: {Rate: deps.Config.RateLimitRPS, Burst: deps.Config.RateLimitBurst},
			},
		}),
	)

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService()
	}
	r.GET("/health", func(c *gin.Context) {
		payload, ok := healthSvc.Status(c.Request.Context())
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, payload)
	})
	r.GET("/metrics", metrics.Handler())

	for _, h := range deps.Handlers {
		if h != nil {
			h.RegisterRoutes(r)
		}
	}
	return r
}

func rateLimitGroup(c *gin.Context) string {
	if _, ok := collaboratorRoutes[c.FullPath()]; ok {
		return groupCollaborator
	}
	return groupDefault
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
