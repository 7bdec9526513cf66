package httpserver

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"

	"github.com/robalobadob/wordle/apps/solo-server/internal/store"
)

const (
	sessionCookieName  = "wordle_session"
	sessionTokenHeader = "X-Session-Token"
)

// tokens signs and verifies session handles.
type tokens struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// newTokens derives the HS256 key from secret so the raw secret never signs anything.
func newTokens(secret string, ttl time.Duration) (*tokens, error) {
	if secret == "" {
		return nil, errors.New("httpserver: session secret is empty")
	}
	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("wordle-solo session v1"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("httpserver: derive session key: %w", err)
	}
	return &tokens{key: key, ttl: ttl, now: time.Now}, nil
}

// Sign issues a token for game ID gid.
func (t *tokens) Sign(gid string) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   gid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := tok.SignedString(t.key)
	return ss, exp, err
}

// Parse verifies tok and returns the game ID it names.
func (t *tokens) Parse(tok string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (interface{}, error) {
		return t.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return "", err
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", errors.New("httpserver: token names no game")
	}
	return claims.Subject, nil
}

// setSessionCookie writes the session token cookie.
func (s *Server) setSessionCookie(w http.ResponseWriter, token string, exp time.Time) {
	secure := secureOrigin(s.deps.ClientOrigin)
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// bearerOrCookie extracts a bearer token from Authorization header or session cookie.
func bearerOrCookie(r *http.Request) string {
	// Authorization: Bearer <token>
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(sessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// ctxSessionKey is the context key type for the resolved session.
type ctxSessionKey struct{}

// requireSession resolves the token to a live session and injects it into the context.
// Every authenticated request gets a fresh token, so the token lives as long
// as the session stays active.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := bearerOrCookie(r)
		if tok == "" {
			writeError(w, http.StatusUnauthorized, "missing_session")
			return
		}
		gid, err := s.tokens.Parse(tok)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_session")
			return
		}
		sess, err := s.store.Get(r.Context(), gid)
		if err != nil {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		if fresh, exp, err := s.tokens.Sign(gid); err == nil {
			s.setSessionCookie(w, fresh, exp)
			w.Header().Set(sessionTokenHeader, fresh)
		}
		ctx := context.WithValue(r.Context(), ctxSessionKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(r *http.Request) *store.Session {
	sess, _ := r.Context().Value(ctxSessionKey{}).(*store.Session)
	return sess
}
