package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courshub/courshub-api/internal/service"
	"github.com/courshub/courshub-api/pkg/response"
)

// ModerationHandler exposes the admin moderation queue.
type ModerationHandler struct {
	service *service.ModerationService
}

// NewModerationHandler constructs a moderation handler.
func NewModerationHandler(svc *service.ModerationService) *ModerationHandler {
	return &ModerationHandler{service: svc}
}

// Pending godoc
// @Summary List courses awaiting validation
// @Tags Moderation
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/courses/pending [get]
func (h *ModerationHandler) Pending(c *gin.Context) {
	courses, err := h.service.Pending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// All godoc
// @Summary List the full course catalogue
// @Tags Moderation
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/courses [get]
func (h *ModerationHandler) All(c *gin.Context) {
	courses, err := h.service.All(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// Validate godoc
// @Summary Approve a course for student access
// @Tags Moderation
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/courses/{id}/validate [post]
func (h *ModerationHandler) Validate(c *gin.Context) {
	course, err := h.service.Validate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Reject godoc
// @Summary Reject and remove a course upload
// @Tags Moderation
// @Produce json
// @Param id path string true "Course ID"
// @Success 204
// @Security BearerAuth
// @Router /admin/courses/{id}/reject [delete]
func (h *ModerationHandler) Reject(c *gin.Context) {
	if err := h.service.Reject(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
