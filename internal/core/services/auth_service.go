package services

import (
	"context"
	"errors"
	"strings"

	"github.com/david-crosby/Ripple/internal/adapters/persistence/models"
	"github.com/david-crosby/Ripple/internal/adapters/persistence/repositories"
	"github.com/david-crosby/Ripple/internal/core/domain"
	"github.com/david-crosby/Ripple/internal/pkg/jwt"
	"github.com/david-crosby/Ripple/internal/pkg/password"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthService authenticates identities and issues access tokens
type AuthService struct {
	store  repositories.Store
	vault  *password.Vault
	tokens *jwt.Service
}

// NewAuthService creates a new auth service
func NewAuthService(store repositories.Store, vault *password.Vault, tokens *jwt.Service) *AuthService {
	return &AuthService{
		store:  store,
		vault:  vault,
		tokens: tokens,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Username string `json:"username" validate:"required,min=3,max=50,username"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	FullName string `json:"full_name" validate:"omitempty,max=255"`
}

// Register creates an identity and its default giver profile in one transaction
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*models.User, error) {
	// 1. Password strength
	if ok, reason := password.AssessStrength(input.Password); !ok {
		return nil, &domain.WeakPasswordError{Reason: reason}
	}

	email := strings.TrimSpace(input.Email)
	username := strings.TrimSpace(input.Username)

	// 2. Uniqueness, email first
	if err := s.checkUnique(ctx, email, username); err != nil {
		return nil, err
	}

	// 3. Hash password
	hashedPassword, err := s.vault.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    email,
		Username: username,
		Password: hashedPassword,
		FullName: strings.TrimSpace(input.FullName),
		Role:     string(domain.RoleUser),
		IsActive: true,
	}

	// 4. User and giver profile together, or neither
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		return tx.Givers().Create(ctx, &models.GiverProfile{
			UserID:      user.ID,
			ProfileType: string(domain.ProfileIndividual),
			IsPublic:    true,
		})
	})
	if err != nil {
		// A concurrent registration may have won the unique index.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if dupErr := s.checkUnique(ctx, email, username); dupErr != nil {
				return nil, dupErr
			}
		}
		return nil, storeError(err, nil)
	}

	zap.L().Info("user registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))

	return user, nil
}

func (s *AuthService) checkUnique(ctx context.Context, email, username string) error {
	exists, err := s.store.Users().ExistsByEmail(ctx, email)
	if err != nil {
		return storeError(err, nil)
	}
	if exists {
		return domain.ErrDuplicateEmail
	}

	exists, err = s.store.Users().ExistsByUsername(ctx, username)
	if err != nil {
		return storeError(err, nil)
	}
	if exists {
		return domain.ErrDuplicateUsername
	}
	return nil
}

// Authenticate resolves identifier as a username, then as an email, and checks the password.
// Unknown identifiers and wrong passwords fail identically.
func (s *AuthService) Authenticate(ctx context.Context, identifier, pw string) (*models.User, error) {
	user, err := s.lookup(ctx, strings.TrimSpace(identifier))
	if err != nil {
		return nil, err
	}

	if user == nil {
		s.vault.DummyVerify(pw)
		return nil, domain.ErrInvalidCredentials
	}

	if !s.vault.Verify(pw, user.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, domain.ErrAccountInactive
	}

	return user, nil
}

// lookup returns nil without error when no identity matches
func (s *AuthService) lookup(ctx context.Context, identifier string) (*models.User, error) {
	if identifier == "" {
		return nil, nil
	}

	user, err := s.store.Users().GetByUsername(ctx, identifier)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storeError(err, nil)
	}

	user, err = s.store.Users().GetByEmail(ctx, identifier)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storeError(err, nil)
	}

	return nil, nil
}

// Login authenticates and issues an access token for the user
func (s *AuthService) Login(ctx context.Context, identifier, pw string) (*jwt.Token, error) {
	user, err := s.Authenticate(ctx, identifier, pw)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, err
	}

	zap.L().Info("user logged in", zap.Uint("user_id", user.ID))

	return token, nil
}

// CurrentUser resolves a bearer token to an active identity
func (s *AuthService) CurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	subject, err := s.tokens.Validate(accessToken)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.store.Users().GetByUsername(ctx, subject)
	if err != nil {
		return nil, storeError(err, domain.ErrInvalidToken)
	}

	if !user.IsActive {
		return nil, domain.ErrAccountInactive
	}

	return user, nil
}
