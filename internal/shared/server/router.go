package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cv-builder/internal/account"
	"cv-builder/internal/cvs"
	"cv-builder/internal/services/health"
	"cv-builder/internal/shared/config"
	"cv-builder/internal/shared/metrics"
	"cv-builder/internal/shared/server/middleware"
	"cv-builder/internal/shared/server/respond"
	"cv-builder/internal/tier"
	"cv-builder/internal/workingdoc"
)

const (
	healthPath  = "/api/v1/health"
	metricsPath = "/metrics"
)

// RouterDeps are the handlers mounted by NewRouter.
type RouterDeps struct {
	Config            config.Config
	Health            *health.Service
	CVHandler         *cvs.Handler
	WorkingDocHandler *workingdoc.Handler
	TierHandler       *tier.Handler
	AccountHandler    *account.Handler
	RateLimits        map[string]middleware.RateLimitRule
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(healthPath, metricsPath),
	)
	if len(deps.RateLimits) > 0 {
		r.Use(middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    deps.RateLimits,
			GroupFor: middleware.GroupByWrite,
		}))
	}

	r.GET(metricsPath, metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		var payload any = gin.H{"ok": true}
		if deps.Health != nil {
			st := deps.Health.Status(c.Request.Context())
			if !st.OK {
				status = http.StatusServiceUnavailable
			}
			payload = st
		}
		respond.JSON(c, status, payload)
	})
	registerMeRoutes(api)

	if deps.WorkingDocHandler != nil {
		deps.WorkingDocHandler.RegisterRoutes(api)
	}
	if deps.CVHandler != nil {
		deps.CVHandler.RegisterRoutes(api)
	}
	if deps.TierHandler != nil {
		deps.TierHandler.RegisterRoutes(api)
	}
	if deps.AccountHandler != nil {
		deps.AccountHandler.RegisterRoutes(api)
	}
	if deps.Config.Env == "dev" && deps.TierHandler != nil {
		dev := api.Group("/dev")
		deps.TierHandler.RegisterDevRoutes(dev)
	}

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
