package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/courshub/courshub-api/internal/middleware"
	"github.com/courshub/courshub-api/internal/models"
	"github.com/courshub/courshub-api/internal/service"
)

// Handlers bundles every HTTP handler for route registration.
type Handlers struct {
	Auth       *AuthHandler
	Users      *UserHandler
	Programs   *ProgramHandler
	Groups     *GroupHandler
	Modules    *ModuleHandler
	Courses    *CourseHandler
	Moderation *ModerationHandler
	Students   *StudentHandler
	Dashboard  *DashboardHandler
	Metrics    *MetricsHandler
}

// RegisterRoutes wires the API surface onto the router. Three role areas hang
// under the prefix: /admin for platform management, /prof for teacher course
// management and /student for the gated catalogue.
func RegisterRoutes(r *gin.Engine, prefix string, auth *service.AuthService, h Handlers) {
	api := r.Group(prefix)

	api.POST("/auth/login", h.Auth.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(auth))
	authed.GET("/auth/me", h.Auth.Me)

	admin := authed.Group("/admin")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/dashboard", h.Dashboard.Stats)

		admin.GET("/users", h.Users.List)
		admin.POST("/users", h.Users.Create)
		admin.GET("/users/:id", h.Users.Get)
		admin.PUT("/users/:id", h.Users.Update)
		admin.DELETE("/users/:id", h.Users.Delete)

		admin.GET("/programs", h.Programs.List)
		admin.POST("/programs", h.Programs.Create)
		admin.GET("/programs/:id", h.Programs.Get)
		admin.PUT("/programs/:id", h.Programs.Update)
		admin.DELETE("/programs/:id", h.Programs.Delete)
		admin.GET("/programs/:id/modules", h.Programs.Curriculum)
		admin.POST("/programs/:id/modules", h.Programs.AttachModule)
		admin.DELETE("/programs/:id/modules/:moduleId", h.Programs.DetachModule)

		admin.GET("/groups", h.Groups.List)
		admin.POST("/groups", h.Groups.Create)
		admin.GET("/groups/:id", h.Groups.Get)
		admin.PUT("/groups/:id", h.Groups.Update)
		admin.DELETE("/groups/:id", h.Groups.Delete)

		admin.GET("/modules", h.Modules.List)
		admin.POST("/modules", h.Modules.Create)
		admin.GET("/modules/:id", h.Modules.Get)
		admin.PUT("/modules/:id", h.Modules.Update)
		admin.DELETE("/modules/:id", h.Modules.Delete)
		admin.GET("/modules/:id/teachers", h.Modules.Assignments)
		admin.POST("/modules/:id/teachers", h.Modules.AssignTeacher)
		admin.DELETE("/modules/:id/teachers/:userId", h.Modules.UnassignTeacher)

		admin.GET("/courses", h.Moderation.All)
		admin.GET("/courses/pending", h.Moderation.Pending)
		admin.POST("/courses/:id/validate", h.Moderation.Validate)
		admin.DELETE("/courses/:id/reject", h.Moderation.Reject)
	}

	prof := authed.Group("/prof")
	prof.Use(middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin))
	{
		prof.GET("/modules", h.Courses.MyModules)
		prof.GET("/groups", h.Groups.List)

		prof.GET("/courses", h.Courses.List)
		prof.POST("/courses", h.Courses.Create)
		prof.GET("/courses/:id", h.Courses.Get)
		prof.PUT("/courses/:id", h.Courses.Update)
		prof.DELETE("/courses/:id", h.Courses.Delete)
		prof.PUT("/courses/:id/groups", h.Courses.Distribute)
		prof.PUT("/courses/:id/groups/:groupId/window", h.Courses.SetWindow)
	}

	student := authed.Group("/student")
	student.Use(middleware.RequireRoles(models.RoleStudent))
	{
		student.GET("/profile", h.Students.Profile)
		student.GET("/courses", h.Students.MyCourses)
		student.GET("/courses/search", h.Students.Search)
		student.GET("/courses/:id/download", h.Students.Download)
		student.GET("/notifications", h.Students.Notifications)
	}
}
