package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"steward-cli/internal/model"
)

// devToken skips JWT validation entirely and resolves to the first seeded
// user, so the TUI works against a fresh database before anyone logs in.
const devToken = "mock-token-for-development"

const tokenTTL = 30 * time.Minute

// Fixed signing key. The server only ever backs local development, so
// tokens surviving a restart beats per-process randomness here.
var jwtSecret = []byte("steward-dev-secret-change-me")

const userKey = "currentUser"

func hashPassword(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func checkPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

func newAccessToken(username string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
}

// parseAccessToken returns the subject username, or "" when the token is
// invalid or expired.
func parseAccessToken(token string) string {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return jwtSecret, nil },
		jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return ""
	}
	return claims.Subject
}

func abortUnauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "could not validate credentials"})
}

// authRequired resolves the bearer token to a user and stashes it in the
// request context for the handler.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || raw == "" {
			abortUnauthorized(c)
			return
		}

		if raw == devToken {
			u, err := s.store.FirstUser(c.Request.Context())
			if err != nil {
				abortUnauthorized(c)
				return
			}
			c.Set(userKey, u)
			c.Next()
			return
		}

		username := parseAccessToken(raw)
		if username == "" {
			abortUnauthorized(c)
			return
		}
		u, _, err := s.store.UserByUsername(c.Request.Context(), username)
		if err != nil {
			abortUnauthorized(c)
			return
		}
		c.Set(userKey, u)
		c.Next()
	}
}

func currentUser(c *gin.Context) (model.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return model.User{}, false
	}
	u, ok := v.(model.User)
	return u, ok
}
