package workingdoc

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cv-builder/internal/cv"
	"cv-builder/internal/shared/server/middleware"
	"cv-builder/internal/shared/server/respond"
)

// Resolver returns the working document store of a user.
type Resolver func(userID string) *Store

// Handler exposes working document endpoints.
type Handler struct {
	Resolve Resolver
}

// NewHandler constructs a Handler.
func NewHandler(resolve Resolver) *Handler {
	return &Handler{Resolve: resolve}
}

// RegisterRoutes attaches working document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/working", h.get)
	rg.PUT("/working", h.replace)
	rg.DELETE("/working", h.clear)
	rg.PUT("/working/personal", h.setPersonal)
	rg.PATCH("/working/template", h.setTemplate)
	rg.POST("/working/skills", h.addSkill)
	rg.DELETE("/working/skills/:skill", h.removeSkill)
	rg.POST("/working/experience", h.addExperience)
	rg.DELETE("/working/experience/:index", h.removeExperience)
	rg.POST("/working/education", h.addEducation)
	rg.DELETE("/working/education/:index", h.removeEducation)
	rg.POST("/working/references", h.addReference)
	rg.DELETE("/working/references/:index", h.removeReference)
}

type templateRequest struct {
	Template    string `json:"template"`
	AccentColor string `json:"accentColor"`
}

type skillRequest struct {
	Skill string `json:"skill"`
}

func (h *Handler) store(c *gin.Context) *Store {
	return h.Resolve(middleware.UserIDFromContext(c))
}

func (h *Handler) get(c *gin.Context) {
	respond.OK(c, h.store(c).Get(c.Request.Context()))
}

func (h *Handler) replace(c *gin.Context) {
	var doc cv.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}
	st := h.store(c)
	if err := st.Replace(c.Request.Context(), doc); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save working document", nil)
		return
	}
	respond.OK(c, st.Get(c.Request.Context()))
}

func (h *Handler) clear(c *gin.Context) {
	if err := h.store(c).Clear(c.Request.Context()); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to clear working document", nil)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) setPersonal(c *gin.Context) {
	var p cv.Personal
	if err := c.ShouldBindJSON(&p); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}
	doc, err := h.store(c).SetPersonal(c.Request.Context(), p)
	writeResult(c, doc, err)
}

func (h *Handler) setTemplate(c *gin.Context) {
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}
	doc, err := h.store(c).SetTemplate(c.Request.Context(), req.Template, req.AccentColor)
	writeResult(c, doc, err)
}

func (h *Handler) addSkill(c *gin.Context) {
	var req skillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}
	doc, err := h.store(c).AddSkill(c.Request.Context(), req.Skill)
	writeResult(c, doc, err)
}

func (h *Handler) removeSkill(c *gin.Context) {
	doc, err := h.store(c).RemoveSkill(c.Request.Context(), c.Param("skill"))
	writeResult(c, doc, err)
}

func (h *Handler) addExperience(c *gin.Context) {
	var e cv.Experience
	if err := c.ShouldBindJSON(&e); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}
	doc, err := h.store(c).AddExperience(c.Request.Context(), e)
	writeResult(c, doc, err)
}

func (h *Handler) removeExperience(c *gin.Context) {
	idx, ok := indexParam(c)
	if !ok {
		return
	}
	doc, err := h.store(c).RemoveExperience(c.Request.Context(), idx)
	writeResult(c, doc, err)
}

func (h *Handler) addEducation(c *gin.Context) {
	var e cv.Education
	if err := c.ShouldBindJSON(&e); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}
	doc, err := h.store(c).AddEducation(c.Request.Context(), e)
	writeResult(c, doc, err)
}

func (h *Handler) removeEducation(c *gin.Context) {
	idx, ok := indexParam(c)
	if !ok {
		return
	}
	doc, err := h.store(c).RemoveEducation(c.Request.Context(), idx)
	writeResult(c, doc, err)
}

func (h *Handler) addReference(c *gin.Context) {
	var r cv.Reference
	if err := c.ShouldBindJSON(&r); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}
	doc, err := h.store(c).AddReference(c.Request.Context(), r)
	writeResult(c, doc, err)
}

func (h *Handler) removeReference(c *gin.Context) {
	idx, ok := indexParam(c)
	if !ok {
		return
	}
	doc, err := h.store(c).RemoveReference(c.Request.Context(), idx)
	writeResult(c, doc, err)
}

func indexParam(c *gin.Context) (int, bool) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "index must be an integer", []map[string]string{
			{"field": "index", "issue": "invalid"},
		})
		return 0, false
	}
	return idx, true
}

func writeResult(c *gin.Context, doc cv.Document, err error) {
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save working document", nil)
		}
		return
	}
	respond.OK(c, doc)
}
