package handlers

import (
	"github.com/david-crosby/Ripple/internal/adapters/http/middleware"
	"github.com/david-crosby/Ripple/internal/core/services"
	"github.com/david-crosby/Ripple/internal/pkg/pagination"
	"github.com/david-crosby/Ripple/internal/pkg/response"
	"github.com/david-crosby/Ripple/internal/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles user endpoints
type UserHandler struct {
	userService *services.UserService
	validate    *validator.Validator
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, validate *validator.Validator) *UserHandler {
	return &UserHandler{
		userService: userService,
		validate:    validate,
	}
}

// SetActiveRequest represents an admin activation toggle
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// GetProfile returns the current user's profile
// @Summary Get my profile
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /users/me [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	user, err := h.userService.GetProfile(c.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		return HandleError(c, err)
	}

	return response.Success(c, "Profile retrieved successfully", user)
}

// UpdateProfile updates the current user's profile
// @Summary Update my profile
// @Description Changing the email clears the verified flag
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.UpdateProfileInput true "Profile fields"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /users/me [put]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var req services.UpdateProfileInput
	if err := bind(c, h.validate, &req); err != nil {
		return HandleError(c, err)
	}

	user, err := h.userService.UpdateProfile(c.Context(), middleware.CurrentUser(c).ID, &req)
	if err != nil {
		return HandleError(c, err)
	}

	return response.Success(c, "Profile updated successfully", user)
}

// ChangePassword changes the current user's password
// @Summary Change password
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ChangePasswordInput true "Old and new password"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /users/me/password [put]
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	var req services.ChangePasswordInput
	if err := bind(c, h.validate, &req); err != nil {
		return HandleError(c, err)
	}

	if err := h.userService.ChangePassword(c.Context(), middleware.CurrentUser(c).ID, &req); err != nil {
		return HandleError(c, err)
	}

	return response.Success(c, "Password changed successfully", nil)
}

// Stats returns giving and fundraising totals for the current user
// @Summary Get my stats
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /users/me/stats [get]
func (h *UserHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.userService.Stats(c.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		return HandleError(c, err)
	}

	return response.Success(c, "Stats retrieved successfully", stats)
}

// ListUsers lists all users (admin only)
// @Summary List users
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param page_size query int false "Items per page (alias: limit)"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	result, err := h.userService.ListUsers(c.Context(), pagination.GetParams(c))
	if err != nil {
		return HandleError(c, err)
	}

	return response.Success(c, "Users retrieved successfully", result)
}

// SetActive activates or deactivates a user (admin only)
// @Summary Set user active flag
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body SetActiveRequest true "Active flag"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id}/active [patch]
func (h *UserHandler) SetActive(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return HandleError(c, err)
	}

	var req SetActiveRequest
	if err := bind(c, h.validate, &req); err != nil {
		return HandleError(c, err)
	}

	user, err := h.userService.SetActive(c.Context(), middleware.CurrentUser(c).ID, id, *req.IsActive)
	if err != nil {
		return HandleError(c, err)
	}

	return response.Success(c, "User updated successfully", user)
}
