// Package router owns the route table: which screens exist and which
// guards gate them.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/alireja-khan/rbac-admin-portal/internal/handler"
	"github.com/alireja-khan/rbac-admin-portal/internal/middleware"
	"github.com/alireja-khan/rbac-admin-portal/internal/session"
)

// Deps carries everything the route table wires together.
type Deps struct {
	Sessions  *session.Store
	Auth      *handler.AuthHandler
	Dashboard *handler.DashboardHandler
	Users     *handler.UserHandler
	Projects  *handler.ProjectHandler
}

// Register wires all routes. Public screens first, then the
// authentication guard, then the admin guard nested inside it.
func Register(r *gin.Engine, deps *Deps) {
	// Public: login and invite registration carry no credential.
	r.GET("/", deps.Auth.ShowLogin)
	r.GET("/login", deps.Auth.ShowLogin)
	r.POST("/login", deps.Auth.Login)
	r.GET("/register/:token", deps.Auth.ShowRegister)
	r.POST("/register/:token", deps.Auth.Register)
	r.POST("/logout", deps.Auth.Logout)

	// Authenticated screens.
	protected := r.Group("", middleware.RequireSession(deps.Sessions))
	protected.GET("/dashboard", deps.Dashboard.Show)
	protected.GET("/projects", deps.Projects.List)
	protected.POST("/projects", deps.Projects.Create)
	protected.POST("/projects/:id/status", deps.Projects.UpdateStatus)
	protected.POST("/projects/:id/delete", deps.Projects.Delete)

	// Admin-only screens.
	admin := protected.Group("", middleware.RequireAdmin())
	admin.GET("/users", deps.Users.List)
	admin.POST("/users/:id/role", deps.Users.UpdateRole)
	admin.POST("/users/:id/status", deps.Users.UpdateStatus)
	admin.POST("/invites", deps.Users.CreateInvite)
}
