package handler

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/alireja-khan/rbac-admin-portal/internal/apiclient"
	"github.com/alireja-khan/rbac-admin-portal/internal/domain"
	"github.com/alireja-khan/rbac-admin-portal/internal/session"
)

// minPasswordLen mirrors the API's password policy; checking it here
// blocks the submission before any upstream call.
const minPasswordLen = 6

// AuthAPI is the public slice of the upstream client used by the auth
// screens. None of these calls carry a credential.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*apiclient.AuthResponse, error)
	ValidateInvite(ctx context.Context, token string) (*domain.Invite, error)
	RegisterViaInvite(ctx context.Context, token, name, password string) (*apiclient.AuthResponse, error)
}

// Queries drives the list screens and their mutations.
type Queries interface {
	Users(ctx context.Context, page int) (*apiclient.UserPage, error)
	ActiveProjects(ctx context.Context) ([]domain.Project, error)
	CreateProject(ctx context.Context, name, description string) (*domain.Project, error)
	UpdateProject(ctx context.Context, projectID string, update apiclient.ProjectUpdate) (*domain.Project, error)
	DeleteProject(ctx context.Context, projectID string) error
	UpdateUserRole(ctx context.Context, userID string, role domain.Role) (*domain.User, error)
	UpdateUserStatus(ctx context.Context, userID string, status domain.UserStatus) (*domain.User, error)
	CreateInvite(ctx context.Context, email string, role domain.Role) (*apiclient.InviteCreated, error)
}

// validEmail reports whether s parses as a bare address.
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// upstreamMessage extracts the server-supplied message from an API error,
// falling back to the given generic text.
func upstreamMessage(err error, fallback string) string {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// redirectExpired handles the one failure the request layer does not
// decide on: a privileged call rejected with 401. The session is treated
// as expired: clear the cookie and send the user to login.
func redirectExpired(c *gin.Context, sessions *session.Store, err error) bool {
	if !errors.Is(err, apiclient.ErrUnauthorized) {
		return false
	}
	sessions.Clear(c.Writer)
	c.Redirect(http.StatusFound, "/login")
	c.Abort()
	return true
}

// formValue returns a trimmed form field.
func formValue(c *gin.Context, name string) string {
	return strings.TrimSpace(c.PostForm(name))
}
