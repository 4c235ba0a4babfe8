package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/alireja-khan/rbac-admin-portal/internal/domain"
)

// AuthResponse is what the API returns from login and invite registration:
// a bearer token plus the server-authoritative profile. The portal trusts
// this profile and never decodes the token.
type AuthResponse struct {
	Token string          `json:"token"`
	User  domain.Identity `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates against the API. Public call: no credential attached.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	out := &AuthResponse{}
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, loginRequest{Email: email, Password: password}, out, false)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ValidateInvite resolves an invite token to the invited email and role.
// Public call; an invalid or expired token surfaces as the API's error.
func (c *Client) ValidateInvite(ctx context.Context, token string) (*domain.Invite, error) {
	out := &domain.Invite{}
	err := c.do(ctx, http.MethodGet, "/auth/invite/"+url.PathEscape(token), nil, nil, out, false)
	if err != nil {
		return nil, err
	}
	return out, nil
}

type registerRequest struct {
	Token    string `json:"token"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// RegisterViaInvite consumes an invite token and creates the account.
// Public call: the invite token in the body is the authorization.
func (c *Client) RegisterViaInvite(ctx context.Context, token, name, password string) (*AuthResponse, error) {
	out := &AuthResponse{}
	err := c.do(ctx, http.MethodPost, "/auth/register-via-invite", nil,
		registerRequest{Token: token, Name: name, Password: password}, out, false)
	if err != nil {
		return nil, err
	}
	return out, nil
}

type createInviteRequest struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// InviteCreated is the response to invite creation. The link is rendered
// for the admin to share; the portal does not deliver it.
type InviteCreated struct {
	Token      string `json:"token"`
	InviteLink string `json:"inviteLink"`
}

// CreateInvite issues an invite for the given email and role. Privileged.
func (c *Client) CreateInvite(ctx context.Context, email string, role domain.Role) (*InviteCreated, error) {
	out := &InviteCreated{}
	err := c.do(ctx, http.MethodPost, "/auth/invite", nil, createInviteRequest{Email: email, Role: role}, out, true)
	if err != nil {
		return nil, err
	}
	return out, nil
}
