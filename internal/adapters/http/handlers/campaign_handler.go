package handlers

import (
	"github.com/david-crosby/Ripple/internal/adapters/http/middleware"
	"github.com/david-crosby/Ripple/internal/adapters/persistence/repositories"
	"github.com/david-crosby/Ripple/internal/core/domain"
	"github.com/david-crosby/Ripple/internal/core/services"
	"github.com/david-crosby/Ripple/internal/pkg/pagination"
	"github.com/david-crosby/Ripple/internal/pkg/response"
	"github.com/david-crosby/Ripple/internal/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

// CampaignHandler handles campaign endpoints
type CampaignHandler struct {
	campaignService *services.CampaignService
	validate        *validator.Validator
}

// NewCampaignHandler creates a new campaign handler
func NewCampaignHandler(campaignService *services.CampaignService, validate *validator.Validator) *CampaignHandler {
	return &CampaignHandler{
		campaignService: campaignService,
		validate:        validate,
	}
}

// List lists campaigns
// @Summary List campaigns
// @Description Public listing. Defaults to active campaigns.
// @Tags Campaigns
// @Produce json
// @Param status query string false "draft, active, completed or cancelled"
// @Param type query string false "fundraising, event or adhoc_giving"
// @Param page query int false "Page number"
// @Param page_size query int false "Items per page (alias: limit)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /campaigns [get]
func (h *CampaignHandler) List(c *fiber.Ctx) error {
	status, err := domain.ParseCampaignStatus(c.Query("status", string(domain.CampaignActive)))
	if err != nil {
		return HandleError(c, err)
	}

	filter := repositories.CampaignFilter{
		Status:       status,
		CampaignType: c.Query("type"),
	}

	result, err := h.campaignService.List(c.Context(), filter, pagination.GetParams(c))
	if err != nil {
		return HandleError(c, err)
	}

	return response.Success(c, "Campaigns retrieved successfully", result)
}

// My lists campaigns created by the current user in any status
// @Summary List my campaigns
// @Tags Campaigns
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param page_size query int false "Items per page (alias: limit)"
// @Success 200 {object} response.Response
// @Router /campaigns/my [get]
func (h *CampaignHandler) My(c *fiber.Ctx) error {
	filter := repositories.CampaignFilter{CreatorID: middleware.CurrentUser(c).ID}

	result, err := h.campaignService.List(c.Context(), filter, pagination.GetParams(c))
	if err != nil {
		return HandleError(c, err)
	}

	return response.Success(c, "Campaigns retrieved successfully", result)
}

// Get returns one campaign
// @Summary Get campaign
// @Tags Campaigns
// @Produce json
// @Param id path int true "Campaign ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /campaigns/{id} [get]
func (h *CampaignHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return HandleError(c, err)
	}

	campaign, err := h.campaignService.Get(c.Context(), id)
	if err != nil {
		return HandleError(c, err)
	}

	return response.Success(c, "Campaign retrieved successfully", campaign)
}

// Create creates a draft campaign
// @Summary Create campaign
// @Tags Campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateCampaignInput true "Campaign data"
// @Success 201 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /campaigns [post]
func (h *CampaignHandler) Create(c *fiber.Ctx) error {
	var req services.CreateCampaignInput
	if err := bind(c, h.validate, &req); err != nil {
		return HandleError(c, err)
	}

	campaign, err := h.campaignService.Create(c.Context(), middleware.CurrentUser(c).ID, &req)
	if err != nil {
		return HandleError(c, err)
	}

	return response.Created(c, "Campaign created successfully", campaign)
}

// Update edits a campaign
// @Summary Update campaign
// @Tags Campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Campaign ID"
// @Param body body services.UpdateCampaignInput true "Campaign fields"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /campaigns/{id} [put]
func (h *CampaignHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return HandleError(c, err)
	}

	var req services.UpdateCampaignInput
	if err := bind(c, h.validate, &req); err != nil {
		return HandleError(c, err)
	}

	campaign, err := h.campaignService.Update(c.Context(), middleware.CurrentUser(c).ID, id, &req)
	if err != nil {
		return HandleError(c, err)
	}

	return response.Success(c, "Campaign updated successfully", campaign)
}

// ChangeStatus moves a campaign through its lifecycle
// @Summary Change campaign status
// @Tags Campaigns
// @Produce json
// @Security BearerAuth
// @Param id path int true "Campaign ID"
// @Param status query string true "active, completed or cancelled"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /campaigns/{id}/status [patch]
func (h *CampaignHandler) ChangeStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return HandleError(c, err)
	}

	status, err := domain.ParseCampaignStatus(c.Query("status"))
	if err != nil {
		return HandleError(c, err)
	}

	campaign, err := h.campaignService.ChangeStatus(c.Context(), middleware.CurrentUser(c).ID, id, status)
	if err != nil {
		return HandleError(c, err)
	}

	return response.Success(c, "Campaign status updated", campaign)
}

// Cancel cancels a campaign
// @Summary Cancel campaign
// @Tags Campaigns
// @Produce json
// @Security BearerAuth
// @Param id path int true "Campaign ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /campaigns/{id} [delete]
func (h *CampaignHandler) Cancel(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return HandleError(c, err)
	}

	campaign, err := h.campaignService.ChangeStatus(c.Context(), middleware.CurrentUser(c).ID, id, domain.CampaignCancelled)
	if err != nil {
		return HandleError(c, err)
	}

	return response.Success(c, "Campaign cancelled", campaign)
}
