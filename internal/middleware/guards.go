package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alireja-khan/rbac-admin-portal/internal/apiclient"
	"github.com/alireja-khan/rbac-admin-portal/internal/session"
)

// ContextKeySession is the gin context key for the restored session
const ContextKeySession = "session"

// RequireSession is the authentication guard. It restores the session
// from the cookie, a pure local check with no remote validation, and
// bounces unauthenticated requests to the login screen. The attempted
// destination is discarded; there is no return-to redirect.
//
// On success the session rides the gin context for handlers and the
// bearer token rides the request context for the API client (pull model:
// the client reads it at call time).
func RequireSession(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := store.Restore(c.Request)
		if sess == nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		c.Set(ContextKeySession, sess)
		c.Request = c.Request.WithContext(apiclient.WithToken(c.Request.Context(), sess.Token))
		c.Next()
	}
}

// RequireAdmin is the authorization guard for admin-only screens. A
// non-admin is silently bounced to the dashboard, not shown an error
// page. It assumes RequireSession already ran.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := SessionFrom(c)
		if sess == nil || !sess.Identity.IsAdmin() {
			c.Redirect(http.StatusFound, "/dashboard")
			c.Abort()
			return
		}
		c.Next()
	}
}

// SessionFrom returns the session restored by RequireSession, or nil.
func SessionFrom(c *gin.Context) *session.Session {
	v, ok := c.Get(ContextKeySession)
	if !ok {
		return nil
	}
	sess, ok := v.(*session.Session)
	if !ok {
		return nil
	}
	return sess
}
