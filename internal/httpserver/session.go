// apps/go-server/internal/httpserver/session.go
//
// Session tokens and the session middleware.
//   - A session token is an HS256 JWT carrying the session ID ("sid") and mode.
//   - Tokens travel as "Authorization: Bearer", the session cookie, or a
//     ?token= query parameter (browsers cannot set headers on websockets).
//   - withSession resolves the token to a live store.Session in the request context.

package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/robalobadob/ojisan/apps/go-server/internal/store"
)

var errBadToken = errors.New("invalid session token")

// sessionClaims is the JWT payload of a session token.
type sessionClaims struct {
	SessionID string `json:"sid"`
	Mode      string `json:"mode"`
	jwt.RegisteredClaims
}

// signSession creates a session token that expires after SESSION_TTL.
func (s *Server) signSession(id string, mode store.Mode) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.cfg.SessionTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		SessionID: id,
		Mode:      string(mode),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	ss, err := t.SignedString([]byte(s.cfg.SessionSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return ss, exp, nil
}

// parseSession verifies a token and returns its session ID.
func (s *Server) parseSession(tok string) (string, error) {
	var claims sessionClaims
	t, err := jwt.ParseWithClaims(tok, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.SessionSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !t.Valid {
		return "", errBadToken
	}
	if claims.SessionID == "" {
		return "", errBadToken
	}
	return claims.SessionID, nil
}

// sessionToken extracts a token from the Authorization header, the session
// cookie or the token query parameter, in that order.
func (s *Server) sessionToken(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.cfg.CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// setSessionCookie writes the session cookie with appropriate security attributes.
func (s *Server) setSessionCookie(w http.ResponseWriter, token string, exp time.Time) {
	secure := s.cfg.Production()
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode // required for third‑party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// ctxSessionKey is the context key type for the resolved session.
type ctxSessionKey struct{}

// withSession enforces a valid session token and injects the session.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := s.sessionToken(r)
		if tok == "" {
			writeError(w, http.StatusUnauthorized, "no_session")
			return
		}
		id, err := s.parseSession(tok)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_session")
			return
		}
		sess, err := s.store.Get(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session_expired")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "store_error")
			return
		}
		ctx := context.WithValue(r.Context(), ctxSessionKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionFrom returns the session placed by withSession.
func sessionFrom(ctx context.Context) *store.Session {
	sess, _ := ctx.Value(ctxSessionKey{}).(*store.Session)
	return sess
}
