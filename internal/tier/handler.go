package tier

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cv-builder/internal/shared/server/middleware"
	"cv-builder/internal/shared/server/respond"
)

// Counter reports how many saved CVs a user holds.
type Counter func(ctx context.Context, userID string) int

// Handler exposes tier endpoints.
type Handler struct {
	Svc   *Service
	Count Counter
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, count Counter) *Handler {
	return &Handler{Svc: svc, Count: count}
}

// RegisterRoutes attaches tier routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/tier", h.getTier)
}

// RegisterDevRoutes attaches dev-only subscription routes.
func (h *Handler) RegisterDevRoutes(rg *gin.RouterGroup) {
	rg.POST("/subscription", h.subscribe)
}

type subscribeRequest struct {
	Plan string `json:"plan"`
}

func (h *Handler) getTier(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.UserIDFromContext(c)
	t := h.Svc.TierFor(ctx, userID)
	used := 0
	if h.Count != nil {
		used = h.Count(ctx, userID)
	}
	respond.OK(c, gin.H{
		"tier": t,
		"max":  h.Svc.Limits().For(t),
		"used": used,
	})
}

func (h *Handler) subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}
	sub, err := h.Svc.Subscribe(c.Request.Context(), middleware.UserIDFromContext(c), req.Plan)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), []map[string]string{
				{"field": "plan", "issue": "invalid"},
			})
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update subscription", nil)
		}
		return
	}
	respond.OK(c, sub)
}
