package cvs

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"cv-builder/internal/cv"
	"cv-builder/internal/shared/server/middleware"
	"cv-builder/internal/shared/server/respond"
	"cv-builder/internal/tier"
)

// Handler wires saved CV and recycle bin endpoints to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches saved CV and recycle bin routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/cvs", h.list)
	rg.POST("/cvs", h.save)
	rg.GET("/cvs/:id", h.get)
	rg.PATCH("/cvs/:id", h.rename)
	rg.PUT("/cvs/:id", h.update)
	rg.DELETE("/cvs/:id", h.delete)
	rg.POST("/cvs/:id/duplicate", h.duplicate)
	rg.POST("/cvs/:id/load", h.load)

	rg.GET("/trash", h.trash)
	rg.DELETE("/trash", h.emptyTrash)
	rg.POST("/trash/:id/restore", h.restore)
	rg.DELETE("/trash/:id", h.permanentDelete)
}

type nameRequest struct {
	Name string `json:"name"`
}

func (h *Handler) manager(c *gin.Context) *cv.Manager {
	return h.Svc.Workspace(middleware.UserIDFromContext(c)).Manager
}

func (h *Handler) list(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.UserIDFromContext(c)
	m := h.Svc.Workspace(userID).Manager

	items := m.Search(ctx, c.Query("q"))
	dir := cv.Direction(strings.ToLower(c.DefaultQuery("dir", string(cv.Desc))))
	items = cv.Sort(items, cv.ParseSortField(c.Query("sort")), dir)

	resp := ListResponse{
		Items:      toSummaries(items),
		Count:      m.Count(ctx),
		TrashCount: m.TrashCount(ctx),
	}
	if h.Svc.Tier != nil {
		resp.Max = h.Svc.Tier.MaxSavedCVs(ctx, userID)
	}
	respond.OK(c, resp)
}

func (h *Handler) save(c *gin.Context) {
	var req nameRequest
	if err := decodeOptional(c, &req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}
	saved, err := h.Svc.Save(c.Request.Context(), middleware.UserIDFromContext(c), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, saved)
}

func (h *Handler) get(c *gin.Context) {
	saved, ok := h.manager(c).Get(c.Request.Context(), c.Param("id"))
	if !ok {
		respond.Error(c, http.StatusNotFound, "not_found", "cv not found", nil)
		return
	}
	respond.OK(c, saved)
}

func (h *Handler) rename(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "name is required", []map[string]string{
			{"field": "name", "issue": "required"},
		})
		return
	}
	ctx := c.Request.Context()
	m := h.manager(c)
	id := c.Param("id")
	m.Rename(ctx, id, req.Name)
	saved, ok := m.Get(ctx, id)
	if !ok {
		respond.Error(c, http.StatusNotFound, "not_found", "cv not found", nil)
		return
	}
	respond.OK(c, saved)
}

func (h *Handler) update(c *gin.Context) {
	saved, ok := h.manager(c).Update(c.Request.Context(), c.Param("id"))
	if !ok {
		respond.Error(c, http.StatusNotFound, "not_found", "cv not found", nil)
		return
	}
	respond.OK(c, saved)
}

func (h *Handler) delete(c *gin.Context) {
	h.manager(c).Delete(c.Request.Context(), c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (h *Handler) duplicate(c *gin.Context) {
	dup, err := h.Svc.Duplicate(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, dup)
}

func (h *Handler) load(c *gin.Context) {
	doc, ok := h.manager(c).Load(c.Request.Context(), c.Param("id"))
	if !ok {
		respond.Error(c, http.StatusNotFound, "not_found", "cv not found", nil)
		return
	}
	respond.OK(c, doc)
}

func (h *Handler) trash(c *gin.Context) {
	m := h.manager(c)
	items := m.GetTrash(c.Request.Context())
	respond.OK(c, TrashResponse{
		Items:         toTrashItems(items, m.Retention()),
		Count:         len(items),
		RetentionDays: int(m.Retention() / (24 * time.Hour)),
	})
}

func (h *Handler) restore(c *gin.Context) {
	restored, err := h.Svc.Restore(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, restored)
}

func (h *Handler) permanentDelete(c *gin.Context) {
	h.manager(c).PermanentDelete(c.Request.Context(), c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (h *Handler) emptyTrash(c *gin.Context) {
	h.manager(c).EmptyTrash(c.Request.Context())
	c.Status(http.StatusNoContent)
}

// decodeOptional binds a JSON body when one is present.
func decodeOptional(c *gin.Context, dst any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(dst)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "cv not found", nil)
	case errors.Is(err, tier.ErrLimitReached):
		respond.Error(c, http.StatusConflict, "limit_reached", "saved cv limit reached for your plan", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "request failed", nil)
	}
}
