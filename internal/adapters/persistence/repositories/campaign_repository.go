package repositories

import (
	"context"
	"errors"

	"github.com/david-crosby/Ripple/internal/adapters/persistence/models"
	"github.com/david-crosby/Ripple/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// campaignRepository implements CampaignRepository interface
type campaignRepository struct {
	db *gorm.DB
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(db *gorm.DB) CampaignRepository {
	return &campaignRepository{db: db}
}

func (r *campaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	return r.db.WithContext(ctx).Create(campaign).Error
}

func (r *campaignRepository) GetByID(ctx context.Context, id uint) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&campaign).Error; err != nil {
		return nil, err
	}
	return &campaign, nil
}

// GetByIDForShare reads a campaign holding a shared row lock until the transaction ends.
// Dialects without row locks ignore the clause.
func (r *campaignRepository) GetByIDForShare(ctx context.Context, id uint) (*models.Campaign, error) {
	var campaign models.Campaign
	err := withLock(r.db.WithContext(ctx), "SHARE").
		Where("id = ?", id).
		First(&campaign).Error
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

// UpdateDetails saves descriptive fields. Status and current_amount are never written here.
func (r *campaignRepository) UpdateDetails(ctx context.Context, campaign *models.Campaign) error {
	return r.db.WithContext(ctx).Model(campaign).
		Select("title", "description", "campaign_type", "goal_amount", "start_date", "end_date", "image_url").
		Updates(campaign).Error
}

// UpdateStatus moves a campaign from -> to only if it is still in from
func (r *campaignRepository) UpdateStatus(ctx context.Context, id uint, from, to domain.CampaignStatus) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Campaign{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return result.RowsAffected == 1, result.Error
}

// AddToCurrentAmount adds delta to current_amount. The row is read under an
// exclusive lock and summed in decimal; SQLite stores decimal columns as REAL,
// so arithmetic in SQL would drift.
// Must run inside a transaction.
func (r *campaignRepository) AddToCurrentAmount(ctx context.Context, id uint, delta decimal.Decimal) (int64, error) {
	var campaign models.Campaign
	err := withLock(r.db.WithContext(ctx), "UPDATE").
		Select("id", "current_amount").
		Where("id = ?", id).
		Take(&campaign).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	result := r.db.WithContext(ctx).Model(&models.Campaign{}).
		Where("id = ?", id).
		Update("current_amount", money(campaign.CurrentAmount.Add(delta)))
	return result.RowsAffected, result.Error
}

func (r *campaignRepository) List(ctx context.Context, filter CampaignFilter, offset, limit int) ([]*models.Campaign, int64, error) {
	var campaigns []*models.Campaign
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Campaign{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CampaignType != "" {
		query = query.Where("campaign_type = ?", filter.CampaignType)
	}
	if filter.CreatorID != 0 {
		query = query.Where("creator_id = ?", filter.CreatorID)
	}

	query = query.Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&campaigns).Error; err != nil {
		return nil, 0, err
	}

	return campaigns, total, nil
}

func (r *campaignRepository) ListAll(ctx context.Context) ([]*models.Campaign, error) {
	var campaigns []*models.Campaign
	err := r.db.WithContext(ctx).Order("id ASC").Find(&campaigns).Error
	return campaigns, err
}

func (r *campaignRepository) StatsByCreator(ctx context.Context, creatorID uint) (*CreatorStats, error) {
	var stats CreatorStats
	err := r.db.WithContext(ctx).Model(&models.Campaign{}).
		Select("COUNT(*) AS campaign_count, COALESCE(SUM(current_amount), 0) AS total_raised").
		Where("creator_id = ?", creatorID).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	stats.TotalRaised = stats.TotalRaised.Round(2)
	return &stats, nil
}
