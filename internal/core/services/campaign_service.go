package services

import (
	"context"
	"strings"
	"time"

	"github.com/david-crosby/Ripple/internal/adapters/persistence/models"
	"github.com/david-crosby/Ripple/internal/adapters/persistence/repositories"
	"github.com/david-crosby/Ripple/internal/core/domain"
	"github.com/david-crosby/Ripple/internal/pkg/pagination"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CampaignService handles campaign management
type CampaignService struct {
	store repositories.Store
}

// NewCampaignService creates a new campaign service
func NewCampaignService(store repositories.Store) *CampaignService {
	return &CampaignService{store: store}
}

// CreateCampaignInput represents create campaign input
type CreateCampaignInput struct {
	Title        string           `json:"title" validate:"required,min=3,max=255"`
	Description  string           `json:"description" validate:"omitempty,max=10000"`
	CampaignType string           `json:"campaign_type" validate:"omitempty,oneof=fundraising event adhoc_giving"`
	GoalAmount   *decimal.Decimal `json:"goal_amount"`
	Currency     string           `json:"currency" validate:"omitempty,len=3"`
	StartDate    *time.Time       `json:"start_date"`
	EndDate      *time.Time       `json:"end_date"`
	ImageURL     string           `json:"image_url" validate:"omitempty,url,max=500"`
}

// UpdateCampaignInput represents update campaign input
type UpdateCampaignInput struct {
	Title        *string          `json:"title" validate:"omitempty,min=3,max=255"`
	Description  *string          `json:"description" validate:"omitempty,max=10000"`
	CampaignType *string          `json:"campaign_type" validate:"omitempty,oneof=fundraising event adhoc_giving"`
	GoalAmount   *decimal.Decimal `json:"goal_amount"`
	StartDate    *time.Time       `json:"start_date"`
	EndDate      *time.Time       `json:"end_date"`
	ImageURL     *string          `json:"image_url" validate:"omitempty,url,max=500"`
}

// Create creates a draft campaign owned by creatorID
func (s *CampaignService) Create(ctx context.Context, creatorID uint, input *CreateCampaignInput) (*models.Campaign, error) {
	campaignType := input.CampaignType
	if campaignType == "" {
		campaignType = string(domain.CampaignFundraising)
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	campaign := &models.Campaign{
		Title:        strings.TrimSpace(input.Title),
		Description:  input.Description,
		CampaignType: campaignType,
		Currency:     currency,
		Status:       domain.CampaignDraft,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		ImageURL:     input.ImageURL,
		CreatorID:    creatorID,
	}

	if err := setGoal(campaign, input.GoalAmount); err != nil {
		return nil, err
	}
	if err := checkDates(campaign); err != nil {
		return nil, err
	}

	if err := s.store.Campaigns().Create(ctx, campaign); err != nil {
		return nil, storeError(err, nil)
	}

	zap.L().Info("campaign created", zap.Uint("campaign_id", campaign.ID), zap.Uint("creator_id", creatorID))

	return campaign, nil
}

// Get gets a campaign by ID
func (s *CampaignService) Get(ctx context.Context, id uint) (*models.Campaign, error) {
	campaign, err := s.store.Campaigns().GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, domain.ErrCampaignNotFound)
	}
	return campaign, nil
}

// List lists campaigns matching filter
func (s *CampaignService) List(ctx context.Context, filter repositories.CampaignFilter, page *pagination.Params) (*pagination.Response, error) {
	campaigns, total, err := s.store.Campaigns().List(ctx, filter, page.Offset, page.PageSize)
	if err != nil {
		return nil, storeError(err, nil)
	}
	return pagination.NewResponse(campaigns, page, total), nil
}

// Update edits campaign details. Only the creator may edit.
func (s *CampaignService) Update(ctx context.Context, actorID, id uint, input *UpdateCampaignInput) (*models.Campaign, error) {
	campaign, err := s.ownedCampaign(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	if campaign.Status == domain.CampaignCompleted || campaign.Status == domain.CampaignCancelled {
		return nil, &domain.TransitionError{From: string(campaign.Status), To: "edited"}
	}

	if input.Title != nil {
		campaign.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		campaign.Description = *input.Description
	}
	if input.CampaignType != nil {
		campaign.CampaignType = *input.CampaignType
	}
	if input.GoalAmount != nil {
		if err := setGoal(campaign, input.GoalAmount); err != nil {
			return nil, err
		}
	}
	if input.StartDate != nil {
		campaign.StartDate = input.StartDate
	}
	if input.EndDate != nil {
		campaign.EndDate = input.EndDate
	}
	if input.ImageURL != nil {
		campaign.ImageURL = *input.ImageURL
	}
	if err := checkDates(campaign); err != nil {
		return nil, err
	}

	if err := s.store.Campaigns().UpdateDetails(ctx, campaign); err != nil {
		return nil, storeError(err, nil)
	}
	return campaign, nil
}

// ChangeStatus moves a campaign through its lifecycle. Only the creator may do this.
func (s *CampaignService) ChangeStatus(ctx context.Context, actorID, id uint, to domain.CampaignStatus) (*models.Campaign, error) {
	campaign, err := s.ownedCampaign(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	if err := domain.CanTransitionCampaign(campaign.Status, to); err != nil {
		return nil, err
	}

	changed, err := s.store.Campaigns().UpdateStatus(ctx, id, campaign.Status, to)
	if err != nil {
		return nil, storeError(err, nil)
	}
	if !changed {
		return nil, &domain.TransitionError{From: string(campaign.Status), To: string(to)}
	}

	zap.L().Info("campaign status changed",
		zap.Uint("campaign_id", id),
		zap.String("from", string(campaign.Status)),
		zap.String("to", string(to)),
	)

	campaign.Status = to
	return campaign, nil
}

func (s *CampaignService) ownedCampaign(ctx context.Context, actorID, id uint) (*models.Campaign, error) {
	campaign, err := s.store.Campaigns().GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, domain.ErrCampaignNotFound)
	}
	if campaign.CreatorID != actorID {
		return nil, domain.ErrForbidden
	}
	return campaign, nil
}

func setGoal(campaign *models.Campaign, goal *decimal.Decimal) error {
	if goal == nil {
		campaign.GoalAmount = decimal.NullDecimal{}
		return nil
	}
	if !domain.PositiveAmount(*goal) {
		return &domain.ValidationError{Message: "goal_amount must be greater than zero"}
	}
	campaign.GoalAmount = decimal.NewNullDecimal(goal.Round(domain.MoneyScale))
	return nil
}

func checkDates(campaign *models.Campaign) error {
	if campaign.StartDate != nil && campaign.EndDate != nil && campaign.EndDate.Before(*campaign.StartDate) {
		return &domain.ValidationError{Message: "end_date must not be before start_date"}
	}
	return nil
}
