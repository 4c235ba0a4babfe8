// Package session is the local session boundary: it persists the
// authenticated identity across requests and exposes login/logout
// mutators. No network calls originate here.
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/alireja-khan/rbac-admin-portal/internal/domain"
)

// Session is the portal's record of who is logged in: the opaque bearer
// credential issued by the API plus the profile the API returned with it.
// Both travel together; a session with only one of them never exists.
type Session struct {
	Token    string
	Identity domain.Identity
}

// claims is the signed cookie payload. The whole session is one record,
// so a crash can never leave a partial session behind.
type claims struct {
	Token    string          `json:"tok"`
	Identity domain.Identity `json:"identity"`
	jwt.RegisteredClaims
}

// Config holds session cookie settings
type Config struct {
	Secret     string
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Store signs and verifies the session cookie. It holds no per-user
// state; the cookie itself is the persistence layer.
type Store struct {
	secret     []byte
	cookieName string
	ttl        time.Duration
	secure     bool
	now        func() time.Time
}

// NewStore creates a session store
func NewStore(cfg *Config) *Store {
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	name := cfg.CookieName
	if name == "" {
		name = "rbac_session"
	}
	return &Store{
		secret:     []byte(cfg.Secret),
		cookieName: name,
		ttl:        ttl,
		secure:     cfg.Secure,
		now:        time.Now,
	}
}

// Issue writes a new session cookie for the given credential and identity.
// The in-memory caller sees the session immediately through the returned
// value; the cookie makes it survive the next request.
func (s *Store) Issue(w http.ResponseWriter, token string, identity domain.Identity) (*Session, error) {
	if token == "" {
		return nil, errors.New("session: empty bearer token")
	}
	now := s.now()
	cl := claims{
		Token:    token,
		Identity: identity,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(s.ttl / time.Second),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return &Session{Token: token, Identity: identity}, nil
}

// Restore reconstructs the session from the request's cookie without any
// network call. Absent, unparseable, expired, or partially populated
// cookies all yield nil: there is no such thing as a partial session.
func (s *Store) Restore(r *http.Request) *Session {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	cl := &claims{}
	tok, err := jwt.ParseWithClaims(cookie.Value, cl, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !tok.Valid {
		return nil
	}

	if cl.Token == "" || cl.Identity.ID == "" || cl.Identity.Email == "" || !cl.Identity.Role.Valid() {
		return nil
	}

	return &Session{Token: cl.Token, Identity: cl.Identity}
}

// Clear expires the session cookie. In-flight API calls keep whatever
// token they already captured; nothing cancels them.
func (s *Store) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
