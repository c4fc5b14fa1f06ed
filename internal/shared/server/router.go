package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"onlyu-media/internal/content"
	"onlyu-media/internal/objects"
	"onlyu-media/internal/services/health"
	"onlyu-media/internal/shared/config"
	"onlyu-media/internal/shared/metrics"
	"onlyu-media/internal/shared/server/middleware"
	"onlyu-media/internal/shared/server/respond"
)

// RouterDeps carries the handlers and collaborators mounted by NewRouter.
type RouterDeps struct {
	Config   config.Config
	Verifier middleware.TokenVerifier
	Objects  *objects.Handler
	Content  *content.Handler
	Health   *health.Service
	Limiter  *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if !deps.Config.IsDevLike() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())
	r.GET("/api/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, deps.Health.Status(c.Request.Context()))
	})

	api := r.Group("/api",
		middleware.RequireAuth(deps.Verifier),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    middleware.DefaultRateLimitRules(),
			GroupFor: middleware.UploadGroup,
			Limiter:  deps.Limiter,
		}),
	)
	if deps.Objects != nil {
		deps.Objects.RegisterUploadRoutes(api)
	}
	if deps.Content != nil {
		deps.Content.RegisterRoutes(api)
	}

	if deps.Objects != nil {
		deps.Objects.RegisterReadRoutes(r.Group("", middleware.OptionalAuth(deps.Verifier)))
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
	})

	return r
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
