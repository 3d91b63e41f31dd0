package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/david-crosby/Ripple/internal/adapters/persistence/models"
	"github.com/david-crosby/Ripple/internal/adapters/persistence/repositories"
	"github.com/david-crosby/Ripple/internal/core/domain"
	"github.com/david-crosby/Ripple/internal/pkg/pagination"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// errStaleStatus means the donation changed between read and compare-and-set
var errStaleStatus = errors.New("donation status changed concurrently")

// LedgerService governs donation status transitions and the campaign and
// giver totals that depend on them
type LedgerService struct {
	store     repositories.Store
	txTimeout time.Duration
	now       func() time.Time
}

// NewLedgerService creates a new ledger service.
// txTimeout caps every ledger transaction; zero leaves the caller's deadline alone.
func NewLedgerService(store repositories.Store, txTimeout time.Duration) *LedgerService {
	return &LedgerService{
		store:     store,
		txTimeout: txTimeout,
		now:       time.Now,
	}
}

// CreateDonationInput represents create donation input
type CreateDonationInput struct {
	CampaignID  uint
	GiverID     uint
	Amount      decimal.Decimal
	Currency    string
	IsAnonymous bool
	Message     string
}

// CreateDonation records a pending donation against an active campaign.
// Totals are untouched until the donation completes.
func (s *LedgerService) CreateDonation(ctx context.Context, input *CreateDonationInput) (*models.Donation, error) {
	if !domain.PositiveAmount(input.Amount) || !input.Amount.Equal(input.Amount.Round(domain.MoneyScale)) {
		return nil, domain.ErrInvalidAmount
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var donation *models.Donation
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		campaign, err := tx.Campaigns().GetByIDForShare(ctx, input.CampaignID)
		if err != nil {
			return storeError(err, domain.ErrCampaignNotFound)
		}
		if !campaign.Status.AcceptsDonations() {
			return domain.ErrCampaignNotActive
		}

		if _, err := tx.Givers().GetByID(ctx, input.GiverID); err != nil {
			return storeError(err, domain.ErrGiverNotFound)
		}

		currency := strings.ToUpper(strings.TrimSpace(input.Currency))
		if currency == "" {
			currency = campaign.Currency
		}

		donation = &models.Donation{
			Amount:      input.Amount,
			Currency:    currency,
			CampaignID:  campaign.ID,
			GiverID:     input.GiverID,
			Status:      domain.DonationPending,
			IsAnonymous: input.IsAnonymous,
			Message:     strings.TrimSpace(input.Message),
		}
		return tx.Donations().Create(ctx, donation)
	})
	if err != nil {
		return nil, storeError(err, nil)
	}

	zap.L().Info("donation created",
		zap.Uint("donation_id", donation.ID),
		zap.Uint("campaign_id", donation.CampaignID),
		zap.String("amount", donation.Amount.StringFixed(domain.MoneyScale)),
	)

	return donation, nil
}

// ApplyTransition moves a donation to next and applies the aggregate effect
// of that transition, all in one transaction.
func (s *LedgerService) ApplyTransition(ctx context.Context, donationID uint, next domain.DonationStatus) (*models.Donation, error) {
	return s.applyTransition(ctx, donationID, next, "")
}

func (s *LedgerService) applyTransition(ctx context.Context, donationID uint, next domain.DonationStatus, paymentIntentID string) (*models.Donation, error) {
	if !next.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	donation, err := s.transitionOnce(ctx, donationID, next, paymentIntentID)
	if errors.Is(err, errStaleStatus) {
		// Lost a race on the status row. The retry re-reads the winner's status
		// and is rejected by the transition table if it no longer applies.
		donation, err = s.transitionOnce(ctx, donationID, next, paymentIntentID)
		if errors.Is(err, errStaleStatus) {
			return nil, domain.ErrInvalidTransition
		}
	}
	if err != nil {
		return nil, err
	}

	zap.L().Info("donation transitioned",
		zap.Uint("donation_id", donation.ID),
		zap.String("status", string(donation.Status)),
	)

	return donation, nil
}

func (s *LedgerService) transitionOnce(ctx context.Context, donationID uint, next domain.DonationStatus, paymentIntentID string) (*models.Donation, error) {
	var out *models.Donation

	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		donation, err := tx.Donations().GetByIDForUpdate(ctx, donationID)
		if err != nil {
			return storeError(err, domain.ErrDonationNotFound)
		}

		effect, err := domain.NextDonationStatus(donation.Status, next)
		if err != nil {
			return err
		}

		swapped, err := tx.Donations().CompareAndSetStatus(ctx, donationID, repositories.StatusChange{
			From:            donation.Status,
			To:              next,
			PaymentIntentID: paymentIntentID,
			At:              s.now(),
		})
		if err != nil {
			return storeError(err, nil)
		}
		if !swapped {
			return errStaleStatus
		}

		if effect.Sign != 0 {
			if err := applyAggregates(ctx, tx, donation, effect); err != nil {
				return err
			}
		}

		out, err = tx.Donations().GetByID(ctx, donationID)
		return storeError(err, domain.ErrDonationNotFound)
	})
	if err != nil {
		return nil, storeError(err, nil)
	}

	return out, nil
}

// applyAggregates moves campaign and giver totals by the donation amount.
// Both rows are locked for the rest of the transaction, so concurrent
// transitions never lose updates.
func applyAggregates(ctx context.Context, tx repositories.Store, donation *models.Donation, effect domain.AggregateEffect) error {
	delta := donation.Amount
	if effect.Sign < 0 {
		delta = delta.Neg()
	}

	rows, err := tx.Campaigns().AddToCurrentAmount(ctx, donation.CampaignID, delta)
	if err != nil {
		return storeError(err, nil)
	}
	if rows == 0 {
		return domain.ErrCampaignNotFound
	}

	rows, err = tx.Givers().AddDonation(ctx, donation.GiverID, delta, effect.Sign)
	if err != nil {
		return storeError(err, nil)
	}
	if rows == 0 {
		return domain.ErrGiverNotFound
	}

	return nil
}

// UpdateStatus applies a transition on behalf of actor.
// The donor may complete or fail a donation. Refunds belong to the campaign
// creator or an admin.
func (s *LedgerService) UpdateStatus(ctx context.Context, actor *models.User, donationID uint, next domain.DonationStatus, paymentIntentID string) (*models.Donation, error) {
	if !next.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	donation, err := s.store.Donations().GetByID(ctx, donationID)
	if err != nil {
		return nil, storeError(err, domain.ErrDonationNotFound)
	}

	if next == domain.DonationRefunded {
		err = s.authorizeCampaignOwner(ctx, actor, donation)
	} else {
		err = s.authorizeDonor(ctx, actor, donation)
	}
	if err != nil {
		return nil, err
	}

	return s.applyTransition(ctx, donationID, next, strings.TrimSpace(paymentIntentID))
}

// GetDonation returns a donation visible to its donor, the campaign creator or an admin
func (s *LedgerService) GetDonation(ctx context.Context, actor *models.User, donationID uint) (*models.Donation, error) {
	donation, err := s.store.Donations().GetByID(ctx, donationID)
	if err != nil {
		return nil, storeError(err, domain.ErrDonationNotFound)
	}

	if err := s.authorizeDonor(ctx, actor, donation); err == nil {
		return donation, nil
	} else if !errors.Is(err, domain.ErrForbidden) {
		return nil, err
	}

	if err := s.authorizeCampaignOwner(ctx, actor, donation); err != nil {
		return nil, err
	}
	return donation, nil
}

func (s *LedgerService) authorizeDonor(ctx context.Context, actor *models.User, donation *models.Donation) error {
	giver, err := s.store.Givers().GetByID(ctx, donation.GiverID)
	if err != nil {
		return storeError(err, domain.ErrGiverNotFound)
	}
	if giver.UserID != actor.ID {
		return domain.ErrForbidden
	}
	return nil
}

func (s *LedgerService) authorizeCampaignOwner(ctx context.Context, actor *models.User, donation *models.Donation) error {
	if actor.IsAdmin() {
		return nil
	}
	campaign, err := s.store.Campaigns().GetByID(ctx, donation.CampaignID)
	if err != nil {
		return storeError(err, domain.ErrCampaignNotFound)
	}
	if campaign.CreatorID != actor.ID {
		return domain.ErrForbidden
	}
	return nil
}

// CampaignDonations is a consistent snapshot of a campaign's completed donations
type CampaignDonations struct {
	CampaignID    uint                     `json:"campaign_id"`
	CurrentAmount decimal.Decimal          `json:"current_amount"`
	TotalAmount   decimal.Decimal          `json:"total_amount"`
	Donations     []*models.PublicDonation `json:"donations"`
	Meta          *pagination.Meta         `json:"meta"`
}

// CampaignDonations lists completed donations of a campaign together with its
// totals, read in one transaction so they agree with each other.
func (s *LedgerService) CampaignDonations(ctx context.Context, campaignID uint, includeAnonymous bool, page *pagination.Params) (*CampaignDonations, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var out CampaignDonations
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		campaign, err := tx.Campaigns().GetByID(ctx, campaignID)
		if err != nil {
			return storeError(err, domain.ErrCampaignNotFound)
		}

		donations, total, err := tx.Donations().ListByCampaign(ctx, campaignID, domain.DonationCompleted, includeAnonymous, page.Offset, page.PageSize)
		if err != nil {
			return storeError(err, nil)
		}

		sum, err := tx.Donations().SumByCampaign(ctx, campaignID, domain.DonationCompleted)
		if err != nil {
			return storeError(err, nil)
		}

		out.CampaignID = campaign.ID
		out.CurrentAmount = campaign.CurrentAmount
		out.TotalAmount = sum
		out.Donations = make([]*models.PublicDonation, len(donations))
		for i, d := range donations {
			out.Donations[i] = d.ToPublic()
		}
		out.Meta = pagination.GetMeta(page, total)
		return nil
	})
	if err != nil {
		return nil, storeError(err, nil)
	}
	return &out, nil
}

// GiverDonations is a consistent snapshot of one giver's donations and totals
type GiverDonations struct {
	GiverID       uint               `json:"giver_id"`
	TotalDonated  decimal.Decimal    `json:"total_donated"`
	DonationCount int                `json:"donation_count"`
	Donations     []*models.Donation `json:"donations"`
	Meta          *pagination.Meta   `json:"meta"`
}

// MyDonations lists every donation made by userID along with the profile totals
func (s *LedgerService) MyDonations(ctx context.Context, userID uint, page *pagination.Params) (*GiverDonations, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var out GiverDonations
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		giver, err := tx.Givers().GetByUserID(ctx, userID)
		if err != nil {
			return storeError(err, domain.ErrGiverNotFound)
		}

		donations, total, err := tx.Donations().ListByGiver(ctx, giver.ID, page.Offset, page.PageSize)
		if err != nil {
			return storeError(err, nil)
		}

		out.GiverID = giver.ID
		out.TotalDonated = giver.TotalDonated
		out.DonationCount = giver.DonationCount
		out.Donations = donations
		out.Meta = pagination.GetMeta(page, total)
		return nil
	})
	if err != nil {
		return nil, storeError(err, nil)
	}
	return &out, nil
}

func (s *LedgerService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.txTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.txTimeout)
}
