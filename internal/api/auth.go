package api

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/julianstephens/habitline/internal/clock"
)

const subjectContextKey = "subject"

var ErrMissingSecret = errors.New("jwt secret is not configured")

// Auth issues and verifies HS256 bearer tokens whose subject is the username
type Auth struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func NewAuth(secret string, ttl time.Duration, c clock.Clock) (*Auth, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if c == nil {
		c = clock.Real{}
	}
	return &Auth{secret: []byte(secret), ttl: ttl, clock: c}, nil
}

// Issue signs a token for subject valid for the configured TTL
func (a *Auth) Issue(subject string) (string, error) {
	now := a.clock.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Parse validates a token and returns its subject
func (a *Auth) Parse(tokenString string) (string, *APIError) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.clock.Now))
	if err != nil || !token.Valid {
		return "", unauthorized("invalid token")
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", unauthorized("invalid token subject")
	}
	return claims.Subject, nil
}

// Middleware rejects requests without a valid bearer token
func (a *Auth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			writeError(c, unauthorized("missing authorization header"))
			return
		}
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(c, unauthorized("invalid authorization format"))
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" {
			writeError(c, unauthorized("invalid authorization format"))
			return
		}
		subject, apiErr := a.Parse(token)
		if apiErr != nil {
			writeError(c, apiErr)
			return
		}
		c.Set(subjectContextKey, subject)
		c.Next()
	}
}

// Subject returns the authenticated username for the request
func Subject(c *gin.Context) string {
	return c.GetString(subjectContextKey)
}
