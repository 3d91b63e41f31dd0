package services

import (
	"context"
	"strings"

	"github.com/david-crosby/Ripple/internal/adapters/persistence/models"
	"github.com/david-crosby/Ripple/internal/adapters/persistence/repositories"
	"github.com/david-crosby/Ripple/internal/core/domain"
	"github.com/david-crosby/Ripple/internal/pkg/pagination"
	"github.com/david-crosby/Ripple/internal/pkg/password"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// UserService handles user management business logic
type UserService struct {
	store repositories.Store
	vault *password.Vault
}

// NewUserService creates a new user service
func NewUserService(store repositories.Store, vault *password.Vault) *UserService {
	return &UserService{
		store: store,
		vault: vault,
	}
}

// UpdateProfileInput represents update profile input (for self)
type UpdateProfileInput struct {
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	FullName *string `json:"full_name" validate:"omitempty,max=255"`
	Phone    *string `json:"phone" validate:"omitempty,max=20"`
}

// ChangePasswordInput represents change password input
type ChangePasswordInput struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

// UserStats summarises a user's activity as giver and as campaign creator
type UserStats struct {
	TotalDonated     decimal.Decimal `json:"total_donated"`
	DonationCount    int             `json:"donation_count"`
	CampaignsCreated int64           `json:"campaigns_created"`
	TotalRaised      decimal.Decimal `json:"total_raised"`
}

// GetProfile gets own profile
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.UserResponse, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, domain.ErrUserNotFound)
	}
	return user.ToResponse(), nil
}

// UpdateProfile updates own profile
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input *UpdateProfileInput) (*models.UserResponse, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, domain.ErrUserNotFound)
	}

	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if email != user.Email {
			exists, err := s.store.Users().ExistsByEmail(ctx, email)
			if err != nil {
				return nil, storeError(err, nil)
			}
			if exists {
				return nil, domain.ErrDuplicateEmail
			}
			user.Email = email
			user.IsVerified = false
		}
	}
	if input.FullName != nil {
		user.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Phone != nil {
		user.Phone = strings.TrimSpace(*input.Phone)
	}

	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, storeError(err, nil)
	}

	return user.ToResponse(), nil
}

// ChangePassword changes user's password
func (s *UserService) ChangePassword(ctx context.Context, userID uint, input *ChangePasswordInput) error {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return storeError(err, domain.ErrUserNotFound)
	}

	// Verify old password
	if !s.vault.Verify(input.OldPassword, user.Password) {
		return domain.ErrInvalidCredentials
	}

	if ok, reason := password.AssessStrength(input.NewPassword); !ok {
		return &domain.WeakPasswordError{Reason: reason}
	}

	hashedPassword, err := s.vault.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	user.Password = hashedPassword
	if err := s.store.Users().Update(ctx, user); err != nil {
		return storeError(err, nil)
	}

	zap.L().Info("password changed", zap.Uint("user_id", userID))
	return nil
}

// Stats returns giving and fundraising totals for userID
func (s *UserService) Stats(ctx context.Context, userID uint) (*UserStats, error) {
	stats := &UserStats{}

	giver, err := s.store.Givers().GetByUserID(ctx, userID)
	if err != nil {
		return nil, storeError(err, domain.ErrGiverNotFound)
	}
	stats.TotalDonated = giver.TotalDonated
	stats.DonationCount = giver.DonationCount

	created, err := s.store.Campaigns().StatsByCreator(ctx, userID)
	if err != nil {
		return nil, storeError(err, nil)
	}
	stats.CampaignsCreated = created.CampaignCount
	stats.TotalRaised = created.TotalRaised

	return stats, nil
}

// ListUsers lists all users with pagination
func (s *UserService) ListUsers(ctx context.Context, page *pagination.Params) (*pagination.Response, error) {
	users, total, err := s.store.Users().List(ctx, page.Offset, page.PageSize)
	if err != nil {
		return nil, storeError(err, nil)
	}

	responses := make([]*models.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}

	return pagination.NewResponse(responses, page, total), nil
}

// SetActive activates or deactivates a user. Admins cannot deactivate themselves.
func (s *UserService) SetActive(ctx context.Context, adminID, userID uint, active bool) (*models.UserResponse, error) {
	if adminID == userID && !active {
		return nil, &domain.ValidationError{Message: "cannot deactivate your own account"}
	}

	if err := s.store.Users().SetActive(ctx, userID, active); err != nil {
		return nil, storeError(err, domain.ErrUserNotFound)
	}

	zap.L().Info("user active flag changed",
		zap.Uint("user_id", userID),
		zap.Uint("admin_id", adminID),
		zap.Bool("active", active),
	)

	return s.GetProfile(ctx, userID)
}
