package handlers

import (
	"github.com/david-crosby/Ripple/internal/adapters/http/middleware"
	"github.com/david-crosby/Ripple/internal/core/domain"
	"github.com/david-crosby/Ripple/internal/core/services"
	"github.com/david-crosby/Ripple/internal/pkg/pagination"
	"github.com/david-crosby/Ripple/internal/pkg/response"
	"github.com/david-crosby/Ripple/internal/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// DonationHandler handles donation endpoints
type DonationHandler struct {
	ledger       *services.LedgerService
	giverService *services.GiverService
	validate     *validator.Validator
}

// NewDonationHandler creates a new donation handler
func NewDonationHandler(ledger *services.LedgerService, giverService *services.GiverService, validate *validator.Validator) *DonationHandler {
	return &DonationHandler{
		ledger:       ledger,
		giverService: giverService,
		validate:     validate,
	}
}

// CreateDonationRequest represents create donation request body
type CreateDonationRequest struct {
	CampaignID  uint            `json:"campaign_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency" validate:"omitempty,len=3"`
	IsAnonymous bool            `json:"is_anonymous"`
	Message     string          `json:"message" validate:"omitempty,max=1000"`
}

// Create records a pending donation by the current user
// @Summary Create donation
// @Description Records a pending donation. Totals change once it completes.
// @Tags Donations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateDonationRequest true "Donation data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /donations [post]
func (h *DonationHandler) Create(c *fiber.Ctx) error {
	var req CreateDonationRequest
	if err := bind(c, h.validate, &req); err != nil {
		return HandleError(c, err)
	}

	giver, err := h.giverService.GetByUserID(c.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		return HandleError(c, err)
	}

	donation, err := h.ledger.CreateDonation(c.Context(), &services.CreateDonationInput{
		CampaignID:  req.CampaignID,
		GiverID:     giver.ID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		IsAnonymous: req.IsAnonymous,
		Message:     req.Message,
	})
	if err != nil {
		return HandleError(c, err)
	}

	return response.Created(c, "Donation created successfully", donation)
}

// Get returns one donation to its donor, the campaign creator or an admin
// @Summary Get donation
// @Tags Donations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Donation ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /donations/{id} [get]
func (h *DonationHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return HandleError(c, err)
	}

	donation, err := h.ledger.GetDonation(c.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		return HandleError(c, err)
	}

	return response.Success(c, "Donation retrieved successfully", donation)
}

// My lists the current user's donations with their totals
// @Summary List my donations
// @Tags Donations
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param page_size query int false "Items per page (alias: limit)"
// @Success 200 {object} response.Response
// @Router /donations/my [get]
func (h *DonationHandler) My(c *fiber.Ctx) error {
	result, err := h.ledger.MyDonations(c.Context(), middleware.CurrentUser(c).ID, pagination.GetParams(c))
	if err != nil {
		return HandleError(c, err)
	}

	return response.Success(c, "Donations retrieved successfully", result)
}

// ByCampaign lists completed donations of a campaign
// @Summary List campaign donations
// @Description Anonymous donations are left out unless include_anonymous=true, and are then listed without their giver.
// @Tags Donations
// @Produce json
// @Param id path int true "Campaign ID"
// @Param include_anonymous query bool false "Include anonymous donations (default false)"
// @Param page query int false "Page number"
// @Param page_size query int false "Items per page (alias: limit)"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /donations/campaign/{id} [get]
func (h *DonationHandler) ByCampaign(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return HandleError(c, err)
	}

	includeAnonymous := c.QueryBool("include_anonymous", false)

	result, err := h.ledger.CampaignDonations(c.Context(), id, includeAnonymous, pagination.GetParams(c))
	if err != nil {
		return HandleError(c, err)
	}

	return response.Success(c, "Donations retrieved successfully", result)
}

// UpdateStatus applies a payment status transition
// @Summary Update donation payment status
// @Description pending to completed or failed by the donor, completed to refunded by the campaign creator or an admin
// @Tags Donations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Donation ID"
// @Param payment_status query string true "completed, failed or refunded"
// @Param payment_intent_id query string false "Payment provider reference"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /donations/{id}/status [patch]
func (h *DonationHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return HandleError(c, err)
	}

	status, err := domain.ParseDonationStatus(c.Query("payment_status"))
	if err != nil {
		return HandleError(c, err)
	}

	donation, err := h.ledger.UpdateStatus(c.Context(), middleware.CurrentUser(c), id, status, c.Query("payment_intent_id"))
	if err != nil {
		return HandleError(c, err)
	}

	return response.Success(c, "Donation status updated", donation)
}
