package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/courshub/courshub-api/internal/models"
	"github.com/courshub/courshub-api/internal/service"
	appErrors "github.com/courshub/courshub-api/pkg/errors"
	"github.com/courshub/courshub-api/pkg/response"
)

// CourseHandler exposes teacher-facing course management endpoints.
type CourseHandler struct {
	service *service.CourseService
}

// NewCourseHandler constructs a course handler.
func NewCourseHandler(svc *service.CourseService) *CourseHandler {
	return &CourseHandler{service: svc}
}

// List godoc
// @Summary List all courses with their distribution
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /prof/courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// Get godoc
// @Summary Get a course with its distribution
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /prof/courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Create godoc
// @Summary Upload a course document
// @Tags Courses
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param kind formData string true "Document kind (LECTURE, TD, TP, VIDEO)"
// @Param group_ids formData string true "Comma separated group IDs"
// @Param file formData file true "Course file"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /prof/courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read uploaded file"))
		return
	}
	defer file.Close() //nolint:errcheck

	req := service.CreateCourseRequest{
		Title:       strings.TrimSpace(c.PostForm("title")),
		Kind:        models.DocumentKind(strings.ToUpper(strings.TrimSpace(c.PostForm("kind")))),
		GroupIDs:    splitIDs(c.PostForm("group_ids")),
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		File:        file,
	}
	if description := strings.TrimSpace(c.PostForm("description")); description != "" {
		req.Description = &description
	}

	course, err := h.service.Create(c.Request.Context(), principalFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// Update godoc
// @Summary Update course metadata
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body service.UpdateCourseRequest true "Course payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /prof/courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	var req service.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Delete godoc
// @Summary Delete a course and its stored file
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 204
// @Security BearerAuth
// @Router /prof/courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Distribute godoc
// @Summary Replace the groups a course is shared with
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body service.DistributionRequest true "Distribution payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /prof/courses/{id}/groups [put]
func (h *CourseHandler) Distribute(c *gin.Context) {
	var req service.DistributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.service.SetDistribution(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

type windowRequest struct {
	OpenAt  *time.Time `json:"open_at,omitempty"`
	CloseAt *time.Time `json:"close_at,omitempty"`
}

// SetWindow godoc
// @Summary Set the availability window for one group
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param groupId path string true "Group ID"
// @Param payload body handler.windowRequest true "Window payload"
// @Success 204
// @Security BearerAuth
// @Router /prof/courses/{id}/groups/{groupId}/window [put]
func (h *CourseHandler) SetWindow(c *gin.Context) {
	var req windowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	dist := models.Distribution{
		CourseID: c.Param("id"),
		GroupID:  c.Param("groupId"),
		OpenAt:   req.OpenAt,
		CloseAt:  req.CloseAt,
	}
	if err := h.service.SetWindow(c.Request.Context(), dist); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// MyModules godoc
// @Summary List the modules the teacher is assigned to
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /prof/modules [get]
func (h *CourseHandler) MyModules(c *gin.Context) {
	modules, err := h.service.MyModules(c.Request.Context(), principalFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, modules, nil)
}

func splitIDs(raw string) []string {
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}
