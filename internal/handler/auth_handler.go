package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alireja-khan/rbac-admin-portal/internal/session"
)

// AuthHandler serves the login and invite-registration screens.
type AuthHandler struct {
	api      AuthAPI
	sessions *session.Store
	log      *zap.Logger
}

// NewAuthHandler creates an AuthHandler
func NewAuthHandler(api AuthAPI, sessions *session.Store, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{api: api, sessions: sessions, log: log}
}

// ShowLogin renders the login form.
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"Email":  "",
		"Errors": map[string]string{},
	})
}

// Login validates the form locally first (a malformed email or short
// password blocks submission with no upstream call), then authenticates
// and establishes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	email := formValue(c, "email")
	password := c.PostForm("password")

	fieldErrors := map[string]string{}
	if !validEmail(email) {
		fieldErrors["email"] = "Enter a valid email address"
	}
	if len(password) < minPasswordLen {
		fieldErrors["password"] = "Password must be at least 6 characters"
	}
	if len(fieldErrors) > 0 {
		c.HTML(http.StatusUnprocessableEntity, "login.html", gin.H{
			"Email":  email,
			"Errors": fieldErrors,
		})
		return
	}

	resp, err := h.api.Login(c.Request.Context(), email, password)
	if err != nil {
		h.log.Warn("login failed", zap.String("email", email), zap.Error(err))
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{
			"Email":  email,
			"Errors": map[string]string{},
			"Banner": upstreamMessage(err, "Login failed"),
		})
		return
	}

	if _, err := h.sessions.Issue(c.Writer, resp.Token, resp.User); err != nil {
		h.log.Error("session issue failed", zap.Error(err))
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{
			"Email":  email,
			"Errors": map[string]string{},
			"Banner": "Login failed",
		})
		return
	}

	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// Logout clears the session and returns to the login screen. In-flight
// requests keep the token they captured; nothing is cancelled.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.Clear(c.Writer)
	c.Redirect(http.StatusSeeOther, "/login")
}

// ShowRegister validates the invite token with the API and renders either
// the registration form or the invalid-invitation state. The token itself
// stays opaque; the API alone decides validity.
func (h *AuthHandler) ShowRegister(c *gin.Context) {
	token := c.Param("token")

	invite, err := h.api.ValidateInvite(c.Request.Context(), token)
	if err != nil {
		h.log.Info("invite validation failed", zap.Error(err))
		c.HTML(http.StatusOK, "register_invalid.html", gin.H{})
		return
	}

	c.HTML(http.StatusOK, "register.html", gin.H{
		"Token":  token,
		"Invite": invite,
		"Name":   "",
		"Errors": map[string]string{},
	})
}

// Register completes an invite-based registration and logs the new user
// in.
func (h *AuthHandler) Register(c *gin.Context) {
	token := c.Param("token")

	// Re-validate so the re-rendered form still shows the invited email
	// and role; a token consumed or expired meanwhile gets the invalid
	// state, never the form.
	invite, err := h.api.ValidateInvite(c.Request.Context(), token)
	if err != nil {
		c.HTML(http.StatusOK, "register_invalid.html", gin.H{})
		return
	}

	name := formValue(c, "name")
	password := c.PostForm("password")

	fieldErrors := map[string]string{}
	if name == "" {
		fieldErrors["name"] = "Name is required"
	}
	if password == "" {
		fieldErrors["password"] = "Password is required"
	} else if len(password) < minPasswordLen {
		fieldErrors["password"] = "Password must be at least 6 characters"
	}
	if len(fieldErrors) > 0 {
		c.HTML(http.StatusUnprocessableEntity, "register.html", gin.H{
			"Token":  token,
			"Invite": invite,
			"Name":   name,
			"Errors": fieldErrors,
		})
		return
	}

	resp, err := h.api.RegisterViaInvite(c.Request.Context(), token, name, password)
	if err != nil {
		h.log.Warn("registration failed", zap.Error(err))
		c.HTML(http.StatusBadGateway, "register.html", gin.H{
			"Token":  token,
			"Invite": invite,
			"Name":   name,
			"Errors": map[string]string{},
			"Banner": upstreamMessage(err, "Registration failed"),
		})
		return
	}

	if _, err := h.sessions.Issue(c.Writer, resp.Token, resp.User); err != nil {
		h.log.Error("session issue failed", zap.Error(err))
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	c.Redirect(http.StatusSeeOther, "/dashboard")
}
