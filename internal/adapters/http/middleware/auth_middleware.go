package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/david-crosby/Ripple/internal/adapters/persistence/models"
	"github.com/david-crosby/Ripple/internal/core/domain"
	"github.com/david-crosby/Ripple/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TokenCookie is the cookie that may carry the access token
const TokenCookie = "access_token"

// UserResolver turns a bearer token into an active user
type UserResolver interface {
	CurrentUser(ctx context.Context, accessToken string) (*models.User, error)
}

// AuthMiddleware creates authentication middleware
func AuthMiddleware(resolver UserResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := extractToken(c)
		if accessToken == "" {
			return response.Unauthorized(c, "Not authenticated")
		}

		user, err := resolver.CurrentUser(c.UserContext(), accessToken)
		if err != nil {
			return authError(c, err)
		}

		setUser(c, user)
		return c.Next()
	}
}

// OptionalAuth sets user info when a valid token is present and never rejects
func OptionalAuth(resolver UserResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if accessToken := extractToken(c); accessToken != "" {
			if user, err := resolver.CurrentUser(c.UserContext(), accessToken); err == nil {
				setUser(c, user)
			}
		}
		return c.Next()
	}
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok {
			return response.Unauthorized(c, "Not authenticated")
		}

		// Check if user's role is in allowed roles
		for _, allowedRole := range allowedRoles {
			if role == string(allowedRole) {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// AdminOnly middleware allows only ADMIN role
func AdminOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleAdmin)
}

// CurrentUser returns the user set by AuthMiddleware, or nil
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}

func setUser(c *fiber.Ctx, user *models.User) {
	c.Locals("user", user)
	c.Locals("userID", user.ID)
	c.Locals("username", user.Username)
	c.Locals("role", user.Role)
}

// extractToken reads the Authorization header first, then the token cookie
func extractToken(c *fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return c.Cookies(TokenCookie)
}

func authError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidToken):
		c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
		return response.ErrorWithCode(c, fiber.StatusUnauthorized, "INVALID_TOKEN", "Could not validate credentials", nil)
	case errors.Is(err, domain.ErrAccountInactive):
		return response.ErrorWithCode(c, fiber.StatusForbidden, "ACCOUNT_INACTIVE", "Inactive user", nil)
	case errors.Is(err, domain.ErrStoreUnavailable):
		zap.L().Error("auth lookup failed", zap.Error(err))
		return response.ErrorWithCode(c, fiber.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Service temporarily unavailable", nil)
	default:
		zap.L().Error("auth lookup failed", zap.Error(err))
		return response.InternalServerError(c, "Internal server error")
	}
}
