package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alireja-khan/rbac-admin-portal/internal/apiclient"
	"github.com/alireja-khan/rbac-admin-portal/internal/domain"
	"github.com/alireja-khan/rbac-admin-portal/internal/middleware"
	"github.com/alireja-khan/rbac-admin-portal/internal/session"
)

// ProjectHandler serves the project-management screen. Every
// authenticated user can view and create; edit and delete controls render
// for admins only. The API enforces the actual permission either way.
type ProjectHandler struct {
	queries  Queries
	sessions *session.Store
	log      *zap.Logger
}

// NewProjectHandler creates a ProjectHandler
func NewProjectHandler(queries Queries, sessions *session.Store, log *zap.Logger) *ProjectHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProjectHandler{queries: queries, sessions: sessions, log: log}
}

// List renders the active (non-deleted) projects.
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.queries.ActiveProjects(c.Request.Context())
	if err != nil {
		if redirectExpired(c, h.sessions, err) {
			return
		}
		h.log.Error("projects fetch failed", zap.Error(err))
		c.HTML(http.StatusBadGateway, "error.html", gin.H{
			"Message":  "Error loading projects: " + upstreamMessage(err, "the server did not respond"),
			"RetryURL": "/projects",
		})
		return
	}

	h.render(c, http.StatusOK, projects, gin.H{})
}

// Create validates the form locally (name required) and creates the
// project; the list rendered after the redirect is a fresh server read.
func (h *ProjectHandler) Create(c *gin.Context) {
	name := formValue(c, "name")
	description := formValue(c, "description")

	if name == "" {
		h.rerender(c, http.StatusUnprocessableEntity, gin.H{
			"Errors":          map[string]string{"name": "Project name is required"},
			"FormName":        name,
			"FormDescription": description,
		})
		return
	}

	if _, err := h.queries.CreateProject(c.Request.Context(), name, description); err != nil {
		if redirectExpired(c, h.sessions, err) {
			return
		}
		h.log.Error("project creation failed", zap.Error(err))
		h.rerender(c, http.StatusOK, gin.H{
			"Banner":          "Error: " + upstreamMessage(err, "the project was not created"),
			"FormName":        name,
			"FormDescription": description,
		})
		return
	}

	c.Redirect(http.StatusSeeOther, "/projects")
}

// UpdateStatus moves a project between ACTIVE, ARCHIVED and DELETED.
func (h *ProjectHandler) UpdateStatus(c *gin.Context) {
	status := domain.ProjectStatus(formValue(c, "status"))
	switch status {
	case domain.ProjectActive, domain.ProjectArchived, domain.ProjectDeleted:
	default:
		h.rerender(c, http.StatusUnprocessableEntity, gin.H{"Banner": "Unknown project status"})
		return
	}

	update := apiclient.ProjectUpdate{Status: &status}
	if _, err := h.queries.UpdateProject(c.Request.Context(), c.Param("id"), update); err != nil {
		if redirectExpired(c, h.sessions, err) {
			return
		}
		h.log.Error("project update failed", zap.String("project_id", c.Param("id")), zap.Error(err))
		h.rerender(c, http.StatusOK, gin.H{"Banner": "Error: " + upstreamMessage(err, "the change was not saved")})
		return
	}

	c.Redirect(http.StatusSeeOther, "/projects")
}

// Delete soft-deletes a project. The API keeps the row; the list filter
// hides it from the next read.
func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.queries.DeleteProject(c.Request.Context(), c.Param("id")); err != nil {
		if redirectExpired(c, h.sessions, err) {
			return
		}
		h.log.Error("project delete failed", zap.String("project_id", c.Param("id")), zap.Error(err))
		h.rerender(c, http.StatusOK, gin.H{"Banner": "Error: " + upstreamMessage(err, "the project was not deleted")})
		return
	}

	c.Redirect(http.StatusSeeOther, "/projects")
}

// rerender re-reads the list and shows it with the given extras (banner
// or field errors), keeping already-entered form input.
func (h *ProjectHandler) rerender(c *gin.Context, status int, extra gin.H) {
	projects, err := h.queries.ActiveProjects(c.Request.Context())
	if err != nil {
		if redirectExpired(c, h.sessions, err) {
			return
		}
		c.HTML(http.StatusBadGateway, "error.html", gin.H{
			"Message":  "Error loading projects: " + upstreamMessage(err, "the server did not respond"),
			"RetryURL": "/projects",
		})
		return
	}
	h.render(c, status, projects, extra)
}

func (h *ProjectHandler) render(c *gin.Context, status int, projects []domain.Project, extra gin.H) {
	isAdmin := false
	if sess := middleware.SessionFrom(c); sess != nil {
		isAdmin = sess.Identity.IsAdmin()
	}

	data := gin.H{
		"Projects": projects,
		"IsAdmin":  isAdmin,
		"Statuses": domain.ProjectStatuses(),
		"Errors":   map[string]string{},
	}
	for k, v := range extra {
		data[k] = v
	}
	c.HTML(status, "projects.html", data)
}
