package config

import (
	"context"
	"errors"

	"github.com/david-crosby/Ripple/internal/adapters/persistence/models"
	"github.com/david-crosby/Ripple/internal/adapters/persistence/repositories"
	"github.com/david-crosby/Ripple/internal/core/domain"
	"github.com/david-crosby/Ripple/internal/pkg/password"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	store repositories.Store
	vault *password.Vault
	admin AdminSeed
}

// NewSeeder creates a new seeder instance
func NewSeeder(store repositories.Store, vault *password.Vault, admin AdminSeed) *Seeder {
	return &Seeder{store: store, vault: vault, admin: admin}
}

// Run executes all seeders
func (s *Seeder) Run(ctx context.Context) error {
	zap.L().Info("running database seeders")

	if err := s.seedAdminUser(ctx); err != nil {
		zap.L().Warn("admin seeder skipped", zap.Error(err))
	}

	return nil
}

// seedAdminUser creates the dev admin from ADMIN_EMAIL/ADMIN_PASSWORD.
// In production, create admins through a secure process.
func (s *Seeder) seedAdminUser(ctx context.Context) error {
	if s.admin.Email == "" || s.admin.Password == "" {
		return nil
	}

	_, err := s.store.Users().GetByEmail(ctx, s.admin.Email)
	if err == nil {
		return nil // Admin already exists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if ok, reason := password.AssessStrength(s.admin.Password); !ok {
		return &domain.WeakPasswordError{Reason: reason}
	}

	hashedPassword, err := s.vault.Hash(s.admin.Password)
	if err != nil {
		return err
	}

	admin := &models.User{
		Username:   "admin",
		Email:      s.admin.Email,
		Password:   hashedPassword,
		FullName:   "Administrator",
		Role:       string(domain.RoleAdmin),
		IsActive:   true,
		IsVerified: true,
	}

	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		if err := tx.Users().Create(ctx, admin); err != nil {
			return err
		}
		return tx.Givers().Create(ctx, &models.GiverProfile{
			UserID:      admin.ID,
			ProfileType: string(domain.ProfileIndividual),
			IsPublic:    true,
		})
	})
	if err != nil {
		return err
	}

	zap.L().Info("admin user created", zap.String("email", admin.Email))
	return nil
}
