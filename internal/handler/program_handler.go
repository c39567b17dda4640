package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courshub/courshub-api/internal/service"
	appErrors "github.com/courshub/courshub-api/pkg/errors"
	"github.com/courshub/courshub-api/pkg/response"
)

// ProgramHandler exposes program CRUD and curriculum endpoints.
type ProgramHandler struct {
	programs   *service.ProgramService
	curriculum *service.CurriculumService
}

// NewProgramHandler constructs a program handler.
func NewProgramHandler(programs *service.ProgramService, curriculum *service.CurriculumService) *ProgramHandler {
	return &ProgramHandler{programs: programs, curriculum: curriculum}
}

// List godoc
// @Summary List programs
// @Tags Programs
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/programs [get]
func (h *ProgramHandler) List(c *gin.Context) {
	programs, err := h.programs.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, programs, nil)
}

// Get godoc
// @Summary Get a program
// @Tags Programs
// @Produce json
// @Param id path string true "Program ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/programs/{id} [get]
func (h *ProgramHandler) Get(c *gin.Context) {
	program, err := h.programs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, program, nil)
}

// Create godoc
// @Summary Create a program
// @Tags Programs
// @Accept json
// @Produce json
// @Param payload body service.ProgramRequest true "Program payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/programs [post]
func (h *ProgramHandler) Create(c *gin.Context) {
	var req service.ProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	program, err := h.programs.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, program)
}

// Update godoc
// @Summary Update a program
// @Tags Programs
// @Accept json
// @Produce json
// @Param id path string true "Program ID"
// @Param payload body service.ProgramRequest true "Program payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/programs/{id} [put]
func (h *ProgramHandler) Update(c *gin.Context) {
	var req service.ProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	program, err := h.programs.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, program, nil)
}

// Delete godoc
// @Summary Delete a program
// @Tags Programs
// @Produce json
// @Param id path string true "Program ID"
// @Success 204
// @Security BearerAuth
// @Router /admin/programs/{id} [delete]
func (h *ProgramHandler) Delete(c *gin.Context) {
	if err := h.programs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Curriculum godoc
// @Summary List the modules attached to a program
// @Tags Programs
// @Produce json
// @Param id path string true "Program ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/programs/{id}/modules [get]
func (h *ProgramHandler) Curriculum(c *gin.Context) {
	rows, err := h.curriculum.ListCurriculum(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// AttachModule godoc
// @Summary Attach a module to a program's curriculum
// @Tags Programs
// @Accept json
// @Produce json
// @Param id path string true "Program ID"
// @Param payload body service.AttachModuleRequest true "Curriculum payload"
// @Success 204
// @Security BearerAuth
// @Router /admin/programs/{id}/modules [post]
func (h *ProgramHandler) AttachModule(c *gin.Context) {
	var req service.AttachModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.curriculum.AttachModule(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DetachModule godoc
// @Summary Detach a module from a program's curriculum
// @Tags Programs
// @Produce json
// @Param id path string true "Program ID"
// @Param moduleId path string true "Module ID"
// @Success 204
// @Security BearerAuth
// @Router /admin/programs/{id}/modules/{moduleId} [delete]
func (h *ProgramHandler) DetachModule(c *gin.Context) {
	if err := h.curriculum.DetachModule(c.Request.Context(), c.Param("id"), c.Param("moduleId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
