package handlers

import (
	"github.com/david-crosby/Ripple/internal/core/domain"
	"github.com/david-crosby/Ripple/internal/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

// bind parses the request body into dst and runs struct validation on it.
// Errors are ready to pass to HandleError.
func bind(c *fiber.Ctx, v *validator.Validator, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return &domain.ValidationError{Message: "Invalid request body"}
	}
	return v.Struct(dst)
}
