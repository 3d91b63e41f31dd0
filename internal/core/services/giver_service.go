package services

import (
	"context"
	"strings"

	"github.com/david-crosby/Ripple/internal/adapters/persistence/models"
	"github.com/david-crosby/Ripple/internal/adapters/persistence/repositories"
	"github.com/david-crosby/Ripple/internal/core/domain"

	"github.com/shopspring/decimal"
)

// MaxLeaderboardSize caps leaderboard queries
const MaxLeaderboardSize = 100

// GiverService handles giver profiles and the public leaderboard
type GiverService struct {
	store repositories.Store
}

// NewGiverService creates a new giver service
func NewGiverService(store repositories.Store) *GiverService {
	return &GiverService{store: store}
}

// UpdateGiverInput represents update giver profile input
type UpdateGiverInput struct {
	ProfileType *string `json:"profile_type" validate:"omitempty,oneof=individual company"`
	CompanyName *string `json:"company_name" validate:"omitempty,max=255"`
	Bio         *string `json:"bio" validate:"omitempty,max=5000"`
	WebsiteURL  *string `json:"website_url" validate:"omitempty,url,max=500"`
	IsPublic    *bool   `json:"is_public"`
}

// LeaderboardEntry is one ranked giver
type LeaderboardEntry struct {
	Rank          int             `json:"rank"`
	UserID        uint            `json:"user_id"`
	DisplayName   string          `json:"display_name"`
	ProfileType   string          `json:"profile_type"`
	TotalDonated  decimal.Decimal `json:"total_donated"`
	DonationCount int             `json:"donation_count"`
}

// GetByUserID returns the giver profile owned by userID
func (s *GiverService) GetByUserID(ctx context.Context, userID uint) (*models.GiverProfile, error) {
	profile, err := s.store.Givers().GetByUserID(ctx, userID)
	if err != nil {
		return nil, storeError(err, domain.ErrGiverNotFound)
	}
	return profile, nil
}

// GetPublic returns another user's profile if it is public
func (s *GiverService) GetPublic(ctx context.Context, userID uint) (*models.GiverProfile, error) {
	profile, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !profile.IsPublic {
		return nil, domain.ErrForbidden
	}
	return profile, nil
}

// UpdateMine edits the caller's own profile details
func (s *GiverService) UpdateMine(ctx context.Context, userID uint, input *UpdateGiverInput) (*models.GiverProfile, error) {
	profile, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.ProfileType != nil {
		profile.ProfileType = *input.ProfileType
	}
	if input.CompanyName != nil {
		profile.CompanyName = strings.TrimSpace(*input.CompanyName)
	}
	if input.Bio != nil {
		profile.Bio = *input.Bio
	}
	if input.WebsiteURL != nil {
		profile.WebsiteURL = *input.WebsiteURL
	}
	if input.IsPublic != nil {
		profile.IsPublic = *input.IsPublic
	}

	if domain.ProfileType(profile.ProfileType) == domain.ProfileCompany && profile.CompanyName == "" {
		return nil, &domain.ValidationError{Message: "company_name is required for company profiles"}
	}

	if err := s.store.Givers().UpdateDetails(ctx, profile); err != nil {
		return nil, storeError(err, nil)
	}
	return profile, nil
}

// Leaderboard ranks public givers by total donated
func (s *GiverService) Leaderboard(ctx context.Context, limit int, profileType string) ([]*LeaderboardEntry, error) {
	if limit < 1 {
		limit = 10
	}
	if limit > MaxLeaderboardSize {
		limit = MaxLeaderboardSize
	}
	if profileType != "" && !domain.ProfileType(profileType).Valid() {
		return nil, &domain.ValidationError{Message: "profile_type must be one of: individual company"}
	}

	profiles, err := s.store.Givers().Leaderboard(ctx, limit, profileType)
	if err != nil {
		return nil, storeError(err, nil)
	}

	entries := make([]*LeaderboardEntry, len(profiles))
	for i, p := range profiles {
		entries[i] = &LeaderboardEntry{
			Rank:          i + 1,
			UserID:        p.UserID,
			DisplayName:   displayName(p),
			ProfileType:   p.ProfileType,
			TotalDonated:  p.TotalDonated,
			DonationCount: p.DonationCount,
		}
	}
	return entries, nil
}

func displayName(p *models.GiverProfile) string {
	if domain.ProfileType(p.ProfileType) == domain.ProfileCompany && p.CompanyName != "" {
		return p.CompanyName
	}
	if p.User != nil {
		if p.User.FullName != "" {
			return p.User.FullName
		}
		return p.User.Username
	}
	return ""
}
