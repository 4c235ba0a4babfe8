package handler

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alireja-khan/rbac-admin-portal/internal/apiclient"
	"github.com/alireja-khan/rbac-admin-portal/internal/domain"
	"github.com/alireja-khan/rbac-admin-portal/internal/session"
)

func projectRouter(queries *fakeQueries, sess *session.Session) (*gin.Engine, *session.Store) {
	sessions := newSessions()
	h := NewProjectHandler(queries, sessions, nil)

	r := newEngine()
	r.Use(asSession(sess))
	r.GET("/projects", h.List)
	r.POST("/projects", h.Create)
	r.POST("/projects/:id/status", h.UpdateStatus)
	r.POST("/projects/:id/delete", h.Delete)
	return r, sessions
}

func sampleProjects() []domain.Project {
	return []domain.Project{
		{
			ID:          "p1",
			Name:        "Warehouse Revamp",
			Description: "Rework the intake flow",
			Status:      domain.ProjectActive,
			CreatedBy:   domain.ProjectOwner{ID: "u1", Name: "Alice Admin"},
		},
		{
			ID:        "p2",
			Name:      "Billing Cleanup",
			Status:    domain.ProjectArchived,
			CreatedBy: domain.ProjectOwner{ID: "u2", Name: "Kim"},
		},
	}
}

func TestProjectListRendersForAdmin(t *testing.T) {
	queries := &fakeQueries{projects: sampleProjects()}
	r, _ := projectRouter(queries, adminSession())

	w := doGet(r, "/projects")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Warehouse Revamp")
	assert.Contains(t, w.Body.String(), "Billing Cleanup")
	// Admin sees the status select and the delete control.
	assert.Contains(t, w.Body.String(), `action="/projects/p1/status"`)
	assert.Contains(t, w.Body.String(), `action="/projects/p1/delete"`)
}

func TestProjectListHidesAdminControlsForStaff(t *testing.T) {
	queries := &fakeQueries{projects: sampleProjects()}
	r, _ := projectRouter(queries, staffSession())

	w := doGet(r, "/projects")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Warehouse Revamp")
	assert.NotContains(t, w.Body.String(), `action="/projects/p1/status"`)
	assert.NotContains(t, w.Body.String(), `action="/projects/p1/delete"`)
	// Creation stays open to every authenticated user.
	assert.Contains(t, w.Body.String(), `action="/projects"`)
}

func TestProjectListEmptyState(t *testing.T) {
	queries := &fakeQueries{}
	r, _ := projectRouter(queries, staffSession())

	w := doGet(r, "/projects")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No active projects yet.")
}

func TestProjectListUpstreamErrorRendersErrorPage(t *testing.T) {
	queries := &fakeQueries{
		projectsErr: &apiclient.APIError{StatusCode: http.StatusInternalServerError, Message: "upstream exploded"},
	}
	r, _ := projectRouter(queries, adminSession())

	w := doGet(r, "/projects")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "upstream exploded")
	assert.Contains(t, w.Body.String(), `href="/projects"`)
}

func TestProjectListExpiredSessionRedirectsToLogin(t *testing.T) {
	queries := &fakeQueries{
		projectsErr: &apiclient.APIError{StatusCode: http.StatusUnauthorized, Message: "token expired"},
	}
	r, _ := projectRouter(queries, adminSession())

	w := doGet(r, "/projects")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	ck := findCookie(w, testCookieName)
	require.NotNil(t, ck)
	assert.Negative(t, ck.MaxAge)
}

func TestCreateProjectRedirectsOnSuccess(t *testing.T) {
	queries := &fakeQueries{projects: sampleProjects()}
	r, _ := projectRouter(queries, staffSession())

	w := doPost(r, "/projects", url.Values{
		"name":        {"New Initiative"},
		"description": {"Q4 push"},
	})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/projects", w.Header().Get("Location"))
	assert.Equal(t, 1, queries.createProjectCalls)
	assert.Equal(t, "New Initiative", queries.lastCreateName)
	assert.Equal(t, "Q4 push", queries.lastCreateDesc)
}

func TestCreateProjectRequiresName(t *testing.T) {
	queries := &fakeQueries{projects: sampleProjects()}
	r, _ := projectRouter(queries, staffSession())

	w := doPost(r, "/projects", url.Values{
		"name":        {"   "},
		"description": {"still here"},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 0, queries.createProjectCalls)
	assert.Contains(t, w.Body.String(), "Project name is required")
	assert.Contains(t, w.Body.String(), "still here")
}

func TestCreateProjectFailureKeepsInput(t *testing.T) {
	queries := &fakeQueries{
		projects:         sampleProjects(),
		createProjectErr: &apiclient.APIError{StatusCode: http.StatusConflict, Message: "name already taken"},
	}
	r, _ := projectRouter(queries, staffSession())

	w := doPost(r, "/projects", url.Values{
		"name":        {"Warehouse Revamp"},
		"description": {"duplicate"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "name already taken")
	assert.Contains(t, w.Body.String(), `value="Warehouse Revamp"`)
}

func TestUpdateProjectStatus(t *testing.T) {
	queries := &fakeQueries{projects: sampleProjects()}
	r, _ := projectRouter(queries, adminSession())

	w := doPost(r, "/projects/p1/status", url.Values{
		"status": {string(domain.ProjectArchived)},
	})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/projects", w.Header().Get("Location"))
	assert.Equal(t, 1, queries.updateProjectCalls)
	require.NotNil(t, queries.lastProjectUpdate.Status)
	assert.Equal(t, domain.ProjectArchived, *queries.lastProjectUpdate.Status)
}

func TestUpdateProjectStatusRejectsUnknown(t *testing.T) {
	queries := &fakeQueries{projects: sampleProjects()}
	r, _ := projectRouter(queries, adminSession())

	w := doPost(r, "/projects/p1/status", url.Values{
		"status": {"ON_FIRE"},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 0, queries.updateProjectCalls)
	assert.Contains(t, w.Body.String(), "Unknown project status")
}

func TestDeleteProjectRedirects(t *testing.T) {
	queries := &fakeQueries{projects: sampleProjects()}
	r, _ := projectRouter(queries, adminSession())

	w := doPost(r, "/projects/p2/delete", url.Values{})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/projects", w.Header().Get("Location"))
	assert.Equal(t, 1, queries.deleteProjectCalls)
	assert.Equal(t, "p2", queries.lastDeletedID)
}

func TestDeleteProjectFailureShowsBanner(t *testing.T) {
	queries := &fakeQueries{
		projects:         sampleProjects(),
		deleteProjectErr: &apiclient.APIError{StatusCode: http.StatusForbidden, Message: "only admins can delete projects"},
	}
	r, _ := projectRouter(queries, adminSession())

	w := doPost(r, "/projects/p1/delete", url.Values{})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "only admins can delete projects")
}

func TestDashboardShowsIdentity(t *testing.T) {
	h := NewDashboardHandler()

	r := newEngine()
	r.Use(asSession(adminSession()))
	r.GET("/dashboard", h.Show)

	w := doGet(r, "/dashboard")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Alice Admin")
	assert.Contains(t, w.Body.String(), "alice@example.com")
	assert.Contains(t, w.Body.String(), "Manage users")
}
