package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courshub/courshub-api/internal/service"
	appErrors "github.com/courshub/courshub-api/pkg/errors"
	"github.com/courshub/courshub-api/pkg/response"
)

// ModuleHandler exposes module CRUD and teaching assignment endpoints.
type ModuleHandler struct {
	modules    *service.ModuleService
	curriculum *service.CurriculumService
}

// NewModuleHandler constructs a module handler.
func NewModuleHandler(modules *service.ModuleService, curriculum *service.CurriculumService) *ModuleHandler {
	return &ModuleHandler{modules: modules, curriculum: curriculum}
}

// List godoc
// @Summary List modules
// @Tags Modules
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/modules [get]
func (h *ModuleHandler) List(c *gin.Context) {
	modules, err := h.modules.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, modules, nil)
}

// Get godoc
// @Summary Get a module
// @Tags Modules
// @Produce json
// @Param id path string true "Module ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/modules/{id} [get]
func (h *ModuleHandler) Get(c *gin.Context) {
	module, err := h.modules.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, module, nil)
}

// Create godoc
// @Summary Create a module
// @Tags Modules
// @Accept json
// @Produce json
// @Param payload body service.ModuleRequest true "Module payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/modules [post]
func (h *ModuleHandler) Create(c *gin.Context) {
	var req service.ModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	module, err := h.modules.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, module)
}

// Update godoc
// @Summary Update a module
// @Tags Modules
// @Accept json
// @Produce json
// @Param id path string true "Module ID"
// @Param payload body service.ModuleRequest true "Module payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/modules/{id} [put]
func (h *ModuleHandler) Update(c *gin.Context) {
	var req service.ModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	module, err := h.modules.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, module, nil)
}

// Delete godoc
// @Summary Delete a module
// @Tags Modules
// @Produce json
// @Param id path string true "Module ID"
// @Success 204
// @Security BearerAuth
// @Router /admin/modules/{id} [delete]
func (h *ModuleHandler) Delete(c *gin.Context) {
	if err := h.modules.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Assignments godoc
// @Summary List teaching assignments on a module
// @Tags Modules
// @Produce json
// @Param id path string true "Module ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/modules/{id}/teachers [get]
func (h *ModuleHandler) Assignments(c *gin.Context) {
	rows, err := h.curriculum.ListAssignments(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// AssignTeacher godoc
// @Summary Assign a teacher to a module
// @Tags Modules
// @Accept json
// @Produce json
// @Param id path string true "Module ID"
// @Param payload body service.AssignTeacherRequest true "Assignment payload"
// @Success 204
// @Security BearerAuth
// @Router /admin/modules/{id}/teachers [post]
func (h *ModuleHandler) AssignTeacher(c *gin.Context) {
	var req service.AssignTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.curriculum.AssignTeacher(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UnassignTeacher godoc
// @Summary Remove a teacher from a module
// @Tags Modules
// @Produce json
// @Param id path string true "Module ID"
// @Param userId path string true "Teacher user ID"
// @Success 204
// @Security BearerAuth
// @Router /admin/modules/{id}/teachers/{userId} [delete]
func (h *ModuleHandler) UnassignTeacher(c *gin.Context) {
	if err := h.curriculum.UnassignTeacher(c.Request.Context(), c.Param("id"), c.Param("userId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
