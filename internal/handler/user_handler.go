package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alireja-khan/rbac-admin-portal/internal/apiclient"
	"github.com/alireja-khan/rbac-admin-portal/internal/domain"
	"github.com/alireja-khan/rbac-admin-portal/internal/query"
	"github.com/alireja-khan/rbac-admin-portal/internal/session"
)

// UserHandler serves the admin-only user-management table.
type UserHandler struct {
	queries  Queries
	sessions *session.Store
	log      *zap.Logger
}

// NewUserHandler creates a UserHandler
func NewUserHandler(queries Queries, sessions *session.Store, log *zap.Logger) *UserHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserHandler{queries: queries, sessions: sessions, log: log}
}

// pageParam reads the requested page, clamping to 1. Beyond-last-page
// values pass through: the API answers with an empty set and its
// total/limit still drive the page count.
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// List renders page p of the user table.
func (h *UserHandler) List(c *gin.Context) {
	page := pageParam(c)

	resp, err := h.queries.Users(c.Request.Context(), page)
	if err != nil {
		if redirectExpired(c, h.sessions, err) {
			return
		}
		h.log.Error("users fetch failed", zap.Int("page", page), zap.Error(err))
		c.HTML(http.StatusBadGateway, "error.html", gin.H{
			"Message":  "Error loading users: " + upstreamMessage(err, "the server did not respond"),
			"RetryURL": c.Request.URL.RequestURI(),
		})
		return
	}

	h.render(c, http.StatusOK, resp2page(page, resp), gin.H{})
}

// UpdateRole changes one user's role and lands back on the same page.
// The table is never patched locally; the redirect re-reads server state.
func (h *UserHandler) UpdateRole(c *gin.Context) {
	role := domain.Role(formValue(c, "role"))
	if !role.Valid() {
		h.rerenderWithBanner(c, "Unknown role")
		return
	}

	if _, err := h.queries.UpdateUserRole(c.Request.Context(), c.Param("id"), role); err != nil {
		if redirectExpired(c, h.sessions, err) {
			return
		}
		h.log.Error("role update failed", zap.String("user_id", c.Param("id")), zap.Error(err))
		h.rerenderWithBanner(c, "Error updating user: "+upstreamMessage(err, "the change was not saved"))
		return
	}

	c.Redirect(http.StatusSeeOther, "/users?page="+formValue(c, "page"))
}

// UpdateStatus activates or deactivates one user.
func (h *UserHandler) UpdateStatus(c *gin.Context) {
	status := domain.UserStatus(formValue(c, "status"))
	if status != domain.UserActive && status != domain.UserInactive {
		h.rerenderWithBanner(c, "Unknown status")
		return
	}

	if _, err := h.queries.UpdateUserStatus(c.Request.Context(), c.Param("id"), status); err != nil {
		if redirectExpired(c, h.sessions, err) {
			return
		}
		h.log.Error("status update failed", zap.String("user_id", c.Param("id")), zap.Error(err))
		h.rerenderWithBanner(c, "Error updating user: "+upstreamMessage(err, "the change was not saved"))
		return
	}

	c.Redirect(http.StatusSeeOther, "/users?page="+formValue(c, "page"))
}

// CreateInvite issues an invitation and renders the resulting link for
// the admin to copy. The portal never delivers the link itself.
func (h *UserHandler) CreateInvite(c *gin.Context) {
	email := formValue(c, "email")
	role := domain.Role(formValue(c, "role"))

	fieldErrors := map[string]string{}
	if !validEmail(email) {
		fieldErrors["invite_email"] = "Enter a valid email address"
	}
	if !role.Valid() {
		role = domain.RoleStaff
	}

	if len(fieldErrors) > 0 {
		h.renderPageOne(c, http.StatusUnprocessableEntity, gin.H{
			"Errors":      fieldErrors,
			"InviteEmail": email,
		})
		return
	}

	invite, err := h.queries.CreateInvite(c.Request.Context(), email, role)
	if err != nil {
		if redirectExpired(c, h.sessions, err) {
			return
		}
		h.log.Error("invite creation failed", zap.String("email", email), zap.Error(err))
		h.rerenderWithBanner(c, "Error creating invite: "+upstreamMessage(err, "the invite was not created"))
		return
	}

	link := invite.InviteLink
	if link == "" {
		link = "/register/" + invite.Token
	}
	h.renderPageOne(c, http.StatusOK, gin.H{"InviteLink": link})
}

// rerenderWithBanner re-reads the current page and shows it with an
// error banner, keeping entered input out of the table state.
func (h *UserHandler) rerenderWithBanner(c *gin.Context, banner string) {
	page := 1
	if p, err := strconv.Atoi(formValue(c, "page")); err == nil && p > 0 {
		page = p
	}

	resp, err := h.queries.Users(c.Request.Context(), page)
	if err != nil {
		if redirectExpired(c, h.sessions, err) {
			return
		}
		c.HTML(http.StatusBadGateway, "error.html", gin.H{
			"Message":  banner,
			"RetryURL": "/users",
		})
		return
	}
	h.render(c, http.StatusOK, resp2page(page, resp), gin.H{"Banner": banner})
}

func (h *UserHandler) renderPageOne(c *gin.Context, status int, extra gin.H) {
	resp, err := h.queries.Users(c.Request.Context(), 1)
	if err != nil {
		if redirectExpired(c, h.sessions, err) {
			return
		}
		c.HTML(http.StatusBadGateway, "error.html", gin.H{
			"Message":  "Error loading users: " + upstreamMessage(err, "the server did not respond"),
			"RetryURL": "/users",
		})
		return
	}
	h.render(c, status, resp2page(1, resp), extra)
}

// pageView is the assembled pagination state of the users screen.
type pageView struct {
	users      []domain.User
	page       int
	total      int
	totalPages int
}

func resp2page(requested int, resp *apiclient.UserPage) pageView {
	page := resp.Page
	if page < 1 {
		page = requested
	}
	return pageView{
		users:      resp.Users,
		page:       page,
		total:      resp.Total,
		totalPages: query.TotalPages(resp.Total, resp.Limit),
	}
}

func (h *UserHandler) render(c *gin.Context, status int, pv pageView, extra gin.H) {
	data := gin.H{
		"Users":      pv.users,
		"Page":       pv.page,
		"Total":      pv.total,
		"TotalPages": pv.totalPages,
		"HasPrev":    pv.page > 1,
		"HasNext":    pv.page < pv.totalPages,
		"PrevPage":   pv.page - 1,
		"NextPage":   pv.page + 1,
		"Roles":      domain.Roles(),
		"Errors":     map[string]string{},
		"IsAdmin":    true, // the admin guard gates this screen
	}
	for k, v := range extra {
		data[k] = v
	}
	c.HTML(status, "users.html", data)
}
