package handlers

import (
	"github.com/david-crosby/Ripple/internal/adapters/http/middleware"
	"github.com/david-crosby/Ripple/internal/core/services"
	"github.com/david-crosby/Ripple/internal/pkg/response"
	"github.com/david-crosby/Ripple/internal/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

// GiverHandler handles giver profile endpoints
type GiverHandler struct {
	giverService *services.GiverService
	validate     *validator.Validator
}

// NewGiverHandler creates a new giver handler
func NewGiverHandler(giverService *services.GiverService, validate *validator.Validator) *GiverHandler {
	return &GiverHandler{
		giverService: giverService,
		validate:     validate,
	}
}

// GetMine returns the current user's giver profile
// @Summary Get my giver profile
// @Tags Givers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /givers/me [get]
func (h *GiverHandler) GetMine(c *fiber.Ctx) error {
	profile, err := h.giverService.GetByUserID(c.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		return HandleError(c, err)
	}

	return response.Success(c, "Giver profile retrieved successfully", profile)
}

// UpdateMine edits the current user's giver profile
// @Summary Update my giver profile
// @Description Totals are maintained by the ledger and cannot be set here
// @Tags Givers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.UpdateGiverInput true "Profile fields"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /givers/me [put]
func (h *GiverHandler) UpdateMine(c *fiber.Ctx) error {
	var req services.UpdateGiverInput
	if err := bind(c, h.validate, &req); err != nil {
		return HandleError(c, err)
	}

	profile, err := h.giverService.UpdateMine(c.Context(), middleware.CurrentUser(c).ID, &req)
	if err != nil {
		return HandleError(c, err)
	}

	return response.Success(c, "Giver profile updated successfully", profile)
}

// Leaderboard ranks public givers by total donated
// @Summary Giver leaderboard
// @Tags Givers
// @Produce json
// @Param limit query int false "Number of entries (default 10, max 100)"
// @Param profile_type query string false "individual or company"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /givers/leaderboard [get]
func (h *GiverHandler) Leaderboard(c *fiber.Ctx) error {
	entries, err := h.giverService.Leaderboard(c.Context(), c.QueryInt("limit", 10), c.Query("profile_type"))
	if err != nil {
		return HandleError(c, err)
	}

	return response.Success(c, "Leaderboard retrieved successfully", entries)
}

// GetPublic returns another user's public giver profile
// @Summary Get public giver profile
// @Tags Givers
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /givers/{user_id} [get]
func (h *GiverHandler) GetPublic(c *fiber.Ctx) error {
	userID, err := paramID(c, "user_id")
	if err != nil {
		return HandleError(c, err)
	}

	profile, err := h.giverService.GetPublic(c.Context(), userID)
	if err != nil {
		return HandleError(c, err)
	}

	return response.Success(c, "Giver profile retrieved successfully", profile)
}
