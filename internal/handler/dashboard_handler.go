package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alireja-khan/rbac-admin-portal/internal/middleware"
)

// DashboardHandler renders the landing screen for authenticated users.
type DashboardHandler struct{}

// NewDashboardHandler creates a DashboardHandler
func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// Show renders the dashboard from session state alone; no API call.
func (h *DashboardHandler) Show(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Identity": sess.Identity,
		"IsAdmin":  sess.Identity.IsAdmin(),
	})
}
