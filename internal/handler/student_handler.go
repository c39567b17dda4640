package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/courshub/courshub-api/internal/models"
	"github.com/courshub/courshub-api/internal/service"
	appErrors "github.com/courshub/courshub-api/pkg/errors"
	"github.com/courshub/courshub-api/pkg/response"
)

// StudentHandler exposes the student-facing course surface.
type StudentHandler struct {
	access  *service.AccessService
	metrics *service.MetricsService
}

// NewStudentHandler constructs a student handler.
func NewStudentHandler(access *service.AccessService, metrics *service.MetricsService) *StudentHandler {
	return &StudentHandler{access: access, metrics: metrics}
}

// MyCourses godoc
// @Summary List the courses visible to the student right now
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /student/courses [get]
func (h *StudentHandler) MyCourses(c *gin.Context) {
	courses, err := h.access.ListVisible(c.Request.Context(), principalFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// Download godoc
// @Summary Download a course file
// @Tags Students
// @Produce octet-stream
// @Param id path string true "Course ID"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /student/courses/{id}/download [get]
func (h *StudentHandler) Download(c *gin.Context) {
	download, err := h.access.ResolveDownload(c.Request.Context(), principalFromContext(c), c.Param("id"))
	if err != nil {
		h.recordDenial(err)
		response.Error(c, err)
		return
	}
	defer download.File.Close() //nolint:errcheck

	if h.metrics != nil {
		h.metrics.RecordDownload(string(download.Kind))
	}

	c.Header("Content-Disposition", `attachment; filename="`+download.Filename+`"`)
	c.DataFromReader(http.StatusOK, download.Size, download.ContentType, download.File, nil)
}

// Search godoc
// @Summary Search the visible catalogue
// @Tags Students
// @Produce json
// @Param q query string false "Search keyword"
// @Param kind query string false "Document kind filter"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /student/courses/search [get]
func (h *StudentHandler) Search(c *gin.Context) {
	filter := service.SearchFilter{Query: c.Query("q")}
	if kind := strings.ToUpper(strings.TrimSpace(c.Query("kind"))); kind != "" {
		k := models.DocumentKind(kind)
		if !models.ValidKind(k) {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown document kind"))
			return
		}
		filter.Kind = &k
	}

	courses, err := h.access.Search(c.Request.Context(), principalFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// Notifications godoc
// @Summary List recently available material
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /student/notifications [get]
func (h *StudentHandler) Notifications(c *gin.Context) {
	notifications, err := h.access.Notifications(c.Request.Context(), principalFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notifications, nil)
}

// Profile godoc
// @Summary Get the student's own profile
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /student/profile [get]
func (h *StudentHandler) Profile(c *gin.Context) {
	profile, err := h.access.Profile(c.Request.Context(), principalFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

func (h *StudentHandler) recordDenial(err error) {
	if h.metrics == nil {
		return
	}
	appErr := appErrors.FromError(err)
	switch appErr.Code {
	case appErrors.ErrProfileIncomplete.Code,
		appErrors.ErrNotPublished.Code,
		appErrors.ErrNotValidated.Code,
		appErrors.ErrNotDistributed.Code,
		appErrors.ErrWindowNotOpen.Code,
		appErrors.ErrWindowClosed.Code:
		h.metrics.RecordAccessDenial(appErr.Code)
	}
}
