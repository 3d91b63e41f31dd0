package services

import (
	"context"
	"testing"
	"time"

	"github.com/david-crosby/Ripple/internal/adapters/persistence/models"
	"github.com/david-crosby/Ripple/internal/adapters/persistence/repositories"
	"github.com/david-crosby/Ripple/internal/core/domain"
	"github.com/david-crosby/Ripple/internal/pkg/jwt"
	"github.com/david-crosby/Ripple/internal/pkg/password"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-that-is-at-least-32-bytes-long"

// newTestDB opens a private in-memory database with the schema migrated.
// One connection means transactions run one at a time, like row locks would force.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db))
	return db
}

type testEnv struct {
	db     *gorm.DB
	store  repositories.Store
	vault  *password.Vault
	tokens *jwt.Service
	auth   *AuthService
	ledger *LedgerService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	store := repositories.NewStore(db)
	vault := password.NewVault(bcrypt.MinCost)
	tokens, err := jwt.NewService(jwt.Options{Secret: testSecret, TTL: time.Hour})
	require.NoError(t, err)

	return &testEnv{
		db:     db,
		store:  store,
		vault:  vault,
		tokens: tokens,
		auth:   NewAuthService(store, vault, tokens),
		ledger: NewLedgerService(store, 10*time.Second),
	}
}

// register creates a user and its giver profile through the auth service
func (e *testEnv) register(t *testing.T, username string) (*models.User, *models.GiverProfile) {
	t.Helper()

	ctx := context.Background()
	user, err := e.auth.Register(ctx, &RegisterInput{
		Email:    username + "@example.com",
		Username: username,
		Password: "Str0ngPass",
		FullName: "Test " + username,
	})
	require.NoError(t, err)

	giver, err := e.store.Givers().GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	return user, giver
}

// campaign creates a campaign directly in the given status
func (e *testEnv) campaign(t *testing.T, creatorID uint, status domain.CampaignStatus, goal string) *models.Campaign {
	t.Helper()

	c := &models.Campaign{
		Title:        "Community Garden",
		CampaignType: string(domain.CampaignFundraising),
		Currency:     domain.DefaultCurrency,
		Status:       status,
		CreatorID:    creatorID,
	}
	if goal != "" {
		c.GoalAmount = decimal.NewNullDecimal(decimal.RequireFromString(goal))
	}
	require.NoError(t, e.store.Campaigns().Create(context.Background(), c))
	return c
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
