package handlers

import (
	"errors"
	"strconv"

	"github.com/david-crosby/Ripple/internal/core/domain"
	"github.com/david-crosby/Ripple/internal/pkg/response"
	"github.com/david-crosby/Ripple/internal/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HandleError maps a service error to its HTTP status and stable error code
func HandleError(c *fiber.Ctx, err error) error {
	var (
		weak       *domain.WeakPasswordError
		invalid    *domain.ValidationError
		fieldErrs  validator.Errors
		transition *domain.TransitionError
	)

	switch {
	case errors.As(err, &weak):
		return response.ErrorWithCode(c, fiber.StatusUnprocessableEntity, "WEAK_PASSWORD", weak.Reason, nil)
	case errors.As(err, &fieldErrs):
		return response.UnprocessableEntity(c, "Validation failed", fieldErrs)
	case errors.As(err, &invalid):
		return response.UnprocessableEntity(c, invalid.Message, invalid.Details)
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
		return response.ErrorWithCode(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "Incorrect username or password", nil)
	case errors.Is(err, domain.ErrInvalidToken):
		c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
		return response.ErrorWithCode(c, fiber.StatusUnauthorized, "INVALID_TOKEN", "Could not validate credentials", nil)
	case errors.Is(err, domain.ErrAccountInactive):
		return response.ErrorWithCode(c, fiber.StatusForbidden, "ACCOUNT_INACTIVE", "Inactive user", nil)
	case errors.Is(err, domain.ErrDuplicateEmail):
		return response.ErrorWithCode(c, fiber.StatusBadRequest, "DUPLICATE_EMAIL", "Email already registered", nil)
	case errors.Is(err, domain.ErrDuplicateUsername):
		return response.ErrorWithCode(c, fiber.StatusBadRequest, "DUPLICATE_USERNAME", "Username already taken", nil)
	case errors.Is(err, domain.ErrRateLimited):
		return response.ErrorWithCode(c, fiber.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later.", nil)
	case errors.Is(err, domain.ErrCampaignNotActive):
		return response.ErrorWithCode(c, fiber.StatusBadRequest, "CAMPAIGN_NOT_ACTIVE", "Campaign is not accepting donations", nil)
	case errors.Is(err, domain.ErrInvalidAmount):
		return response.ErrorWithCode(c, fiber.StatusBadRequest, "INVALID_AMOUNT", "Donation amount must be greater than zero with at most two decimal places", nil)
	case errors.As(err, &transition):
		return response.ErrorWithCode(c, fiber.StatusConflict, "INVALID_TRANSITION", transition.Error(), nil)
	case errors.Is(err, domain.ErrInvalidTransition):
		return response.ErrorWithCode(c, fiber.StatusConflict, "INVALID_TRANSITION", "Invalid status transition", nil)
	case errors.Is(err, domain.ErrInvalidStatus):
		return response.ErrorWithCode(c, fiber.StatusBadRequest, "INVALID_STATUS", "Invalid status", nil)
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, capitalize(err.Error()))
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, "You don't have permission to access this resource")
	case errors.Is(err, domain.ErrStoreUnavailable):
		zap.L().Error("store unavailable", zap.String("path", c.Path()), zap.Error(err))
		return response.ErrorWithCode(c, fiber.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Service temporarily unavailable, please retry", nil)
	default:
		zap.L().Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		return response.InternalServerError(c, "Internal server error")
	}
}

// paramID parses a positive integer route parameter
func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, &domain.ValidationError{Message: "invalid " + name}
	}
	return uint(id), nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
