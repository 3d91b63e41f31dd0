package repositories

import (
	"context"

	"github.com/david-crosby/Ripple/internal/adapters/persistence/models"
	"github.com/david-crosby/Ripple/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// donationRepository implements DonationRepository interface
type donationRepository struct {
	db *gorm.DB
}

// NewDonationRepository creates a new donation repository
func NewDonationRepository(db *gorm.DB) DonationRepository {
	return &donationRepository{db: db}
}

func (r *donationRepository) Create(ctx context.Context, donation *models.Donation) error {
	return r.db.WithContext(ctx).Create(donation).Error
}

func (r *donationRepository) GetByID(ctx context.Context, id uint) (*models.Donation, error) {
	var donation models.Donation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&donation).Error; err != nil {
		return nil, err
	}
	return &donation, nil
}

// GetByIDForUpdate reads a donation holding its row lock until the transaction ends
func (r *donationRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Donation, error) {
	var donation models.Donation
	if err := withLock(r.db.WithContext(ctx), "UPDATE").Where("id = ?", id).First(&donation).Error; err != nil {
		return nil, err
	}
	return &donation, nil
}

// CompareAndSetStatus writes change.To only if the row is still in change.From.
// It reports false when another writer got there first.
func (r *donationRepository) CompareAndSetStatus(ctx context.Context, id uint, change StatusChange) (bool, error) {
	updates := map[string]interface{}{
		"payment_status": change.To,
	}
	if change.PaymentIntentID != "" {
		updates["payment_intent_id"] = change.PaymentIntentID
	}
	if change.To == domain.DonationCompleted {
		updates["completed_at"] = change.At
	}

	result := r.db.WithContext(ctx).Model(&models.Donation{}).
		Where("id = ? AND payment_status = ?", id, change.From).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *donationRepository) ListByCampaign(ctx context.Context, campaignID uint, status domain.DonationStatus, includeAnonymous bool, offset, limit int) ([]*models.Donation, int64, error) {
	var donations []*models.Donation
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Donation{}).
		Where("campaign_id = ? AND payment_status = ?", campaignID, status)
	if !includeAnonymous {
		query = query.Where("is_anonymous = ?", false)
	}

	query = query.Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&donations).Error; err != nil {
		return nil, 0, err
	}

	return donations, total, nil
}

func (r *donationRepository) SumByCampaign(ctx context.Context, campaignID uint, status domain.DonationStatus) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&models.Donation{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("campaign_id = ? AND payment_status = ?", campaignID, status).
		Row().Scan(&total)
	return total.Round(2), err
}

func (r *donationRepository) ListByGiver(ctx context.Context, giverID uint, offset, limit int) ([]*models.Donation, int64, error) {
	var donations []*models.Donation
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Donation{}).Where("giver_id = ?", giverID)

	query = query.Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&donations).Error; err != nil {
		return nil, 0, err
	}

	return donations, total, nil
}

func (r *donationRepository) CompletedTotalsByCampaign(ctx context.Context) ([]CampaignTotals, error) {
	var totals []CampaignTotals
	err := r.db.WithContext(ctx).Model(&models.Donation{}).
		Select("campaign_id, COALESCE(SUM(amount), 0) AS total").
		Where("payment_status = ?", domain.DonationCompleted).
		Group("campaign_id").
		Scan(&totals).Error
	for i := range totals {
		totals[i].Total = totals[i].Total.Round(2)
	}
	return totals, err
}

func (r *donationRepository) CompletedTotalsByGiver(ctx context.Context) ([]GiverTotals, error) {
	var totals []GiverTotals
	err := r.db.WithContext(ctx).Model(&models.Donation{}).
		Select("giver_id, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("payment_status = ?", domain.DonationCompleted).
		Group("giver_id").
		Scan(&totals).Error
	for i := range totals {
		totals[i].Total = totals[i].Total.Round(2)
	}
	return totals, err
}
