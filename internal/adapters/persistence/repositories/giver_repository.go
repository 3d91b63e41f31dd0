package repositories

import (
	"context"
	"errors"

	"github.com/david-crosby/Ripple/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// giverRepository implements GiverRepository interface
type giverRepository struct {
	db *gorm.DB
}

// NewGiverRepository creates a new giver profile repository
func NewGiverRepository(db *gorm.DB) GiverRepository {
	return &giverRepository{db: db}
}

func (r *giverRepository) Create(ctx context.Context, profile *models.GiverProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *giverRepository) GetByID(ctx context.Context, id uint) (*models.GiverProfile, error) {
	var profile models.GiverProfile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *giverRepository) GetByUserID(ctx context.Context, userID uint) (*models.GiverProfile, error) {
	var profile models.GiverProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateDetails saves the descriptive fields only. Totals are never written here.
func (r *giverRepository) UpdateDetails(ctx context.Context, profile *models.GiverProfile) error {
	return r.db.WithContext(ctx).Model(profile).
		Select("profile_type", "company_name", "bio", "website_url", "is_public").
		Updates(profile).Error
}

// AddDonation moves the giver totals by amount and count.
// Negative values reverse a previous donation. Must run inside a transaction.
func (r *giverRepository) AddDonation(ctx context.Context, id uint, amount decimal.Decimal, count int) (int64, error) {
	var profile models.GiverProfile
	err := withLock(r.db.WithContext(ctx), "UPDATE").
		Select("id", "total_donated").
		Where("id = ?", id).
		Take(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	result := r.db.WithContext(ctx).Model(&models.GiverProfile{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_donated":  money(profile.TotalDonated.Add(amount)),
			"donation_count": gorm.Expr("donation_count + ?", count),
		})
	return result.RowsAffected, result.Error
}

// Leaderboard lists public givers with donations, highest total first
func (r *giverRepository) Leaderboard(ctx context.Context, limit int, profileType string) ([]*models.GiverProfile, error) {
	var profiles []*models.GiverProfile

	query := r.db.WithContext(ctx).
		Preload("User").
		Where("is_public = ? AND total_donated > 0", true)
	if profileType != "" {
		query = query.Where("profile_type = ?", profileType)
	}

	err := query.Order("total_donated DESC").Order("id ASC").Limit(limit).Find(&profiles).Error
	return profiles, err
}

func (r *giverRepository) ListAll(ctx context.Context) ([]*models.GiverProfile, error) {
	var profiles []*models.GiverProfile
	err := r.db.WithContext(ctx).Order("id ASC").Find(&profiles).Error
	return profiles, err
}
