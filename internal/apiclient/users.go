package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/alireja-khan/rbac-admin-portal/internal/domain"
)

// UserPage is one page of the user-management table. Total and Limit come
// from the server and are the only inputs to page-count math.
type UserPage struct {
	Users []domain.User `json:"users"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// ListUsers fetches page p of users. Privileged.
func (c *Client) ListUsers(ctx context.Context, page, limit int) (*UserPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	out := &UserPage{}
	if err := c.do(ctx, http.MethodGet, "/users", q, nil, out, true); err != nil {
		return nil, err
	}
	return out, nil
}

type roleUpdate struct {
	Role domain.Role `json:"role"`
}

// UpdateUserRole changes a user's role. Privileged.
func (c *Client) UpdateUserRole(ctx context.Context, userID string, role domain.Role) (*domain.User, error) {
	out := &domain.User{}
	err := c.do(ctx, http.MethodPatch, "/users/"+url.PathEscape(userID)+"/role", nil, roleUpdate{Role: role}, out, true)
	if err != nil {
		return nil, err
	}
	return out, nil
}

type statusUpdate struct {
	Status domain.UserStatus `json:"status"`
}

// UpdateUserStatus activates or deactivates a user. Privileged.
func (c *Client) UpdateUserStatus(ctx context.Context, userID string, status domain.UserStatus) (*domain.User, error) {
	out := &domain.User{}
	err := c.do(ctx, http.MethodPatch, "/users/"+url.PathEscape(userID)+"/status", nil, statusUpdate{Status: status}, out, true)
	if err != nil {
		return nil, err
	}
	return out, nil
}
