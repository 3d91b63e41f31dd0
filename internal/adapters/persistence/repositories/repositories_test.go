package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/david-crosby/Ripple/internal/adapters/persistence/models"
	"github.com/david-crosby/Ripple/internal/core/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSQLite(t *testing.T) *gorm.DB {
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

// setupMySQLMock returns a gorm handle on the mysql dialect backed by sqlmock
func setupMySQLMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func seedDonation(t *testing.T, store Store) (*models.Campaign, *models.GiverProfile, *models.Donation) {
	t.Helper()
	ctx := context.Background()

	user := &models.User{Email: "g@example.com", Username: "giver", Password: "x", IsActive: true}
	require.NoError(t, store.Users().Create(ctx, user))
	giver := &models.GiverProfile{UserID: user.ID, ProfileType: "individual", IsPublic: true}
	require.NoError(t, store.Givers().Create(ctx, giver))
	campaign := &models.Campaign{Title: "Roof", Currency: "GBP", Status: domain.CampaignActive, CreatorID: user.ID}
	require.NoError(t, store.Campaigns().Create(ctx, campaign))
	donation := &models.Donation{Amount: decimal.RequireFromString("12.50"), Currency: "GBP", CampaignID: campaign.ID, GiverID: giver.ID, Status: domain.DonationPending}
	require.NoError(t, store.Donations().Create(ctx, donation))

	return campaign, giver, donation
}

func TestDonationRepository_CompareAndSetStatus(t *testing.T) {
	store := NewStore(setupSQLite(t))
	ctx := context.Background()
	_, _, donation := seedDonation(t, store)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ok, err := store.Donations().CompareAndSetStatus(ctx, donation.ID, StatusChange{
		From:            domain.DonationPending,
		To:              domain.DonationCompleted,
		PaymentIntentID: "pi_1",
		At:              at,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	// Second writer still believes the row is pending
	ok, err = store.Donations().CompareAndSetStatus(ctx, donation.ID, StatusChange{
		From: domain.DonationPending,
		To:   domain.DonationFailed,
	})
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := store.Donations().GetByIDForUpdate(ctx, donation.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DonationCompleted, got.Status)
	assert.Equal(t, "pi_1", got.PaymentIntentID)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, at.Equal(got.CompletedAt.UTC()))
}

func TestAggregates_AddAndReverse(t *testing.T) {
	store := NewStore(setupSQLite(t))
	ctx := context.Background()
	campaign, giver, _ := seedDonation(t, store)

	amount := decimal.RequireFromString("12.50")

	rows, err := store.Campaigns().AddToCurrentAmount(ctx, campaign.ID, amount)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
	rows, err = store.Givers().AddDonation(ctx, giver.ID, amount, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	c, err := store.Campaigns().GetByID(ctx, campaign.ID)
	require.NoError(t, err)
	assert.True(t, amount.Equal(c.CurrentAmount))

	_, err = store.Campaigns().AddToCurrentAmount(ctx, campaign.ID, amount.Neg())
	require.NoError(t, err)
	_, err = store.Givers().AddDonation(ctx, giver.ID, amount.Neg(), -1)
	require.NoError(t, err)

	c, err = store.Campaigns().GetByID(ctx, campaign.ID)
	require.NoError(t, err)
	assert.True(t, c.CurrentAmount.IsZero())

	g, err := store.Givers().GetByID(ctx, giver.ID)
	require.NoError(t, err)
	assert.True(t, g.TotalDonated.IsZero())
	assert.Zero(t, g.DonationCount)

	rows, err = store.Campaigns().AddToCurrentAmount(ctx, 9999, amount)
	require.NoError(t, err)
	assert.Zero(t, rows)
}

func TestAggregates_CentsStayExact(t *testing.T) {
	store := NewStore(setupSQLite(t))
	ctx := context.Background()
	campaign, giver, _ := seedDonation(t, store)

	amounts := []string{"0.10", "0.20", "0.07", "1234.57"}
	for _, a := range amounts {
		amount := decimal.RequireFromString(a)
		_, err := store.Campaigns().AddToCurrentAmount(ctx, campaign.ID, amount)
		require.NoError(t, err)
		_, err = store.Givers().AddDonation(ctx, giver.ID, amount, 1)
		require.NoError(t, err)
	}

	c, err := store.Campaigns().GetByID(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, "1234.94", c.CurrentAmount.StringFixed(2))
	assert.True(t, decimal.RequireFromString("1234.94").Equal(c.CurrentAmount), "got %s", c.CurrentAmount)

	for _, a := range amounts {
		amount := decimal.RequireFromString(a).Neg()
		_, err := store.Campaigns().AddToCurrentAmount(ctx, campaign.ID, amount)
		require.NoError(t, err)
		_, err = store.Givers().AddDonation(ctx, giver.ID, amount, -1)
		require.NoError(t, err)
	}

	c, err = store.Campaigns().GetByID(ctx, campaign.ID)
	require.NoError(t, err)
	assert.True(t, c.CurrentAmount.IsZero(), "got %s", c.CurrentAmount)

	g, err := store.Givers().GetByID(ctx, giver.ID)
	require.NoError(t, err)
	assert.True(t, g.TotalDonated.IsZero(), "got %s", g.TotalDonated)
	assert.Zero(t, g.DonationCount)
}

func TestStore_TransactionRollsBack(t *testing.T) {
	db := setupSQLite(t)
	store := NewStore(db)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.Transaction(ctx, func(tx Store) error {
		if err := tx.Users().Create(ctx, &models.User{Email: "a@example.com", Username: "a", Password: "x"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	exists, err := store.Users().ExistsByUsername(ctx, "a")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_DuplicateIsTranslated(t *testing.T) {
	store := NewStore(setupSQLite(t))
	ctx := context.Background()

	require.NoError(t, store.Users().Create(ctx, &models.User{Email: "a@example.com", Username: "a", Password: "x"}))
	err := store.Users().Create(ctx, &models.User{Email: "a@example.com", Username: "b", Password: "x"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestUserRepository_SetActiveMissing(t *testing.T) {
	store := NewStore(setupSQLite(t))
	err := store.Users().SetActive(context.Background(), 42, false)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDonationRepository_CompareAndSetStatusSQL(t *testing.T) {
	db, mock := setupMySQLMock(t)
	repo := NewDonationRepository(db)

	mock.ExpectExec("UPDATE `donations` SET .*`payment_status`=.* WHERE .*id = \\? AND payment_status = \\?").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.CompareAndSetStatus(context.Background(), 7, StatusChange{
		From: domain.DonationPending,
		To:   domain.DonationFailed,
	})
	require.NoError(t, err)
	assert.False(t, ok, "zero rows affected means another writer won")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDonationRepository_LocksRowOnMySQL(t *testing.T) {
	db, mock := setupMySQLMock(t)
	repo := NewDonationRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `donations` WHERE id = \\? .*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "amount", "payment_status"}).AddRow(7, "5.00", "pending"))

	got, err := repo.GetByIDForUpdate(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, domain.DonationPending, got.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepository_DriverErrorSurfaces(t *testing.T) {
	db, mock := setupMySQLMock(t)
	repo := NewCampaignRepository(db)

	mock.ExpectQuery("SELECT `id`,`current_amount` FROM `campaigns` WHERE id = \\? .*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "current_amount"}).AddRow(1, "10.05"))
	mock.ExpectExec("UPDATE `campaigns` SET `current_amount`=\\?").
		WillReturnError(errors.New("connection reset"))

	_, err := repo.AddToCurrentAmount(context.Background(), 1, decimal.NewFromInt(5))
	assert.EqualError(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}
