// Package auth implements the login gate: a fixed user directory with bcrypt
// hashed passwords and a signed session token carried in a cookie.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/diewo77/crm-documents/httpx"
	"github.com/golang-jwt/jwt/v5"
)

type ctxKey string

const (
	// CookieName is the session cookie.
	CookieName = "crm_session"
	userCtxKey = ctxKey("user")
)

var ErrInvalidToken = errors.New("invalid or expired session")

// User is the identity stored in a session.
type User struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Claims are the JWT claims of a session token. The subject is the username.
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Sessions issues and validates session cookies.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	// Now is the clock used for issuing and expiring tokens.
	Now    func() time.Time
	Secure bool
}

func NewSessions(secret string, ttl time.Duration) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl, Now: time.Now}
}

// Token signs a session token for u.
func (s *Sessions) Token(u User) (string, error) {
	now := s.Now()
	claims := &Claims{
		Name: u.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate parses a session token and returns its user.
func (s *Sessions) Validate(token string) (User, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{},
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithTimeFunc(s.Now),
	)
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return User{}, ErrInvalidToken
	}
	return User{Username: claims.Subject, Name: claims.Name}, nil
}

// CreateSession sets the session cookie for u.
func (s *Sessions) CreateSession(w http.ResponseWriter, u User) error {
	token, err := s.Token(u)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl.Seconds()),
		Expires:  s.Now().Add(s.ttl),
	})
	return nil
}

// ClearSession deletes the session cookie.
func (s *Sessions) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ParseSession validates the cookie and returns the user.
func (s *Sessions) ParseSession(r *http.Request) (User, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return User{}, false
	}
	u, err := s.Validate(c.Value)
	if err != nil {
		return User{}, false
	}
	return u, true
}

// WithUser stores u in ctx.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userCtxKey, u)
}

// UserFromContext extracts the session user.
func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userCtxKey).(User)
	return u, ok
}

// Middleware attaches the session user to the request context if present.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := s.ParseSession(r); ok {
			r = r.WithContext(WithUser(r.Context(), u))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth returns 401 JSON to API clients without a session and
// redirects browsers to /login.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			if httpx.WantsJSON(r) {
				httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			http.Redirect(w, r, "/login?redirect="+r.URL.Path, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
