// Package middleware provides request-scoped logging, tracing, metrics and
// identity middleware for the HTTP transport.
package middleware

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var (
	errMissingBearer = errors.New("authorization header must use the Bearer scheme")
	errBadSubject    = errors.New("token subject is not a user id")
)

// Authenticator verifies HS256 bearer tokens issued by the identity provider.
// The subject claim carries the user id; a valid token stores it in the
// "userID" local as a uint.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator returns an Authenticator verifying tokens with secret.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// UserID parses an "Authorization" header value and returns the user id.
func (a *Authenticator) UserID(header string) (uint, error) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, errMissingBearer
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return 0, errors.New("invalid or expired token")
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return 0, errBadSubject
	}
	id, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || id == 0 {
		return 0, errBadSubject
	}
	return uint(id), nil
}

// Optional resolves the viewer when a token is present. Anonymous requests
// and bad tokens both continue as anonymous.
func (a *Authenticator) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if header := c.Get(fiber.HeaderAuthorization); header != "" {
			if id, err := a.UserID(header); err == nil {
				setViewer(c, id)
			}
		}
		return c.Next()
	}
}

// Required rejects requests without a valid token.
func (a *Authenticator) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization header required"))
		}
		id, err := a.UserID(header)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError(err.Error()))
		}
		setViewer(c, id)
		return c.Next()
	}
}

// setViewer stores the user id in locals and syncs it to the user context
// for downstream logging.
func setViewer(c *fiber.Ctx, id uint) {
	c.Locals("userID", id)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, id))
}

// ViewerID returns the authenticated user id, or 0 for anonymous requests.
func ViewerID(c *fiber.Ctx) uint {
	if id, ok := c.Locals("userID").(uint); ok {
		return id
	}
	return 0
}
