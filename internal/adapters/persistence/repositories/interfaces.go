package repositories

import (
	"context"
	"time"

	"github.com/david-crosby/Ripple/internal/adapters/persistence/models"
	"github.com/david-crosby/Ripple/internal/core/domain"

	"github.com/shopspring/decimal"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	SetActive(ctx context.Context, id uint, active bool) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// GiverRepository defines giver profile repository interface
type GiverRepository interface {
	Create(ctx context.Context, profile *models.GiverProfile) error
	GetByID(ctx context.Context, id uint) (*models.GiverProfile, error)
	GetByUserID(ctx context.Context, userID uint) (*models.GiverProfile, error)
	UpdateDetails(ctx context.Context, profile *models.GiverProfile) error
	AddDonation(ctx context.Context, id uint, amount decimal.Decimal, count int) (int64, error)
	Leaderboard(ctx context.Context, limit int, profileType string) ([]*models.GiverProfile, error)
	ListAll(ctx context.Context) ([]*models.GiverProfile, error)
}

// CampaignFilter narrows campaign listings. Zero values match everything.
type CampaignFilter struct {
	Status       domain.CampaignStatus
	CampaignType string
	CreatorID    uint
}

// CampaignRepository defines campaign repository interface
type CampaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	GetByID(ctx context.Context, id uint) (*models.Campaign, error)
	GetByIDForShare(ctx context.Context, id uint) (*models.Campaign, error)
	UpdateDetails(ctx context.Context, campaign *models.Campaign) error
	UpdateStatus(ctx context.Context, id uint, from, to domain.CampaignStatus) (bool, error)
	AddToCurrentAmount(ctx context.Context, id uint, delta decimal.Decimal) (int64, error)
	List(ctx context.Context, filter CampaignFilter, offset, limit int) ([]*models.Campaign, int64, error)
	ListAll(ctx context.Context) ([]*models.Campaign, error)
	StatsByCreator(ctx context.Context, creatorID uint) (*CreatorStats, error)
}

// CreatorStats summarises the campaigns one user has created
type CreatorStats struct {
	CampaignCount int64           `json:"campaign_count"`
	TotalRaised   decimal.Decimal `json:"total_raised"`
}

// StatusChange describes a compare-and-set on a donation's status
type StatusChange struct {
	From            domain.DonationStatus
	To              domain.DonationStatus
	PaymentIntentID string
	At              time.Time
}

// GiverTotals is the completed-donation sum and count for one giver
type GiverTotals struct {
	GiverID uint
	Total   decimal.Decimal
	Count   int64
}

// CampaignTotals is the completed-donation sum for one campaign
type CampaignTotals struct {
	CampaignID uint
	Total      decimal.Decimal
}

// DonationRepository defines donation repository interface
type DonationRepository interface {
	Create(ctx context.Context, donation *models.Donation) error
	GetByID(ctx context.Context, id uint) (*models.Donation, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Donation, error)
	CompareAndSetStatus(ctx context.Context, id uint, change StatusChange) (bool, error)
	ListByCampaign(ctx context.Context, campaignID uint, status domain.DonationStatus, includeAnonymous bool, offset, limit int) ([]*models.Donation, int64, error)
	SumByCampaign(ctx context.Context, campaignID uint, status domain.DonationStatus) (decimal.Decimal, error)
	ListByGiver(ctx context.Context, giverID uint, offset, limit int) ([]*models.Donation, int64, error)
	CompletedTotalsByCampaign(ctx context.Context) ([]CampaignTotals, error)
	CompletedTotalsByGiver(ctx context.Context) ([]GiverTotals, error)
}

// Store groups the repositories and runs them inside one transaction
type Store interface {
	Users() UserRepository
	Givers() GiverRepository
	Campaigns() CampaignRepository
	Donations() DonationRepository

	// Transaction runs fn against a Store bound to a single database transaction.
	// Returning an error from fn rolls back everything fn wrote.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
