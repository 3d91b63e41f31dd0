package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/david-crosby/Ripple/internal/adapters/persistence/models"
	"github.com/david-crosby/Ripple/internal/core/domain"
	"github.com/david-crosby/Ripple/internal/pkg/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	creator, _ := env.register(t, "creator")
	_, giver := env.register(t, "donor")
	campaign := env.campaign(t, creator.ID, domain.CampaignActive, "1000.00")

	donation, err := env.ledger.CreateDonation(ctx, &CreateDonationInput{
		CampaignID: campaign.ID,
		GiverID:    giver.ID,
		Amount:     dec("50.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DonationPending, donation.Status)
	assert.Equal(t, domain.DefaultCurrency, donation.Currency)
	assertTotals(t, env, campaign.ID, giver.ID, "0", 0)

	donation, err = env.ledger.ApplyTransition(ctx, donation.ID, domain.DonationCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.DonationCompleted, donation.Status)
	require.NotNil(t, donation.CompletedAt)
	assertTotals(t, env, campaign.ID, giver.ID, "50.00", 1)

	_, err = env.ledger.ApplyTransition(ctx, donation.ID, domain.DonationCompleted)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assertTotals(t, env, campaign.ID, giver.ID, "50.00", 1)

	donation, err = env.ledger.ApplyTransition(ctx, donation.ID, domain.DonationRefunded)
	require.NoError(t, err)
	assert.Equal(t, domain.DonationRefunded, donation.Status)
	assertTotals(t, env, campaign.ID, giver.ID, "0", 0)

	_, err = env.ledger.ApplyTransition(ctx, donation.ID, domain.DonationCompleted)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestLedgerService_RefundReturnsToExactZero(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	creator, _ := env.register(t, "creator")
	_, giver := env.register(t, "donor")
	campaign := env.campaign(t, creator.ID, domain.CampaignActive, "")

	var donations []*models.Donation
	for _, amount := range []string{"0.10", "0.20", "0.07"} {
		donation, err := env.ledger.CreateDonation(ctx, &CreateDonationInput{
			CampaignID: campaign.ID,
			GiverID:    giver.ID,
			Amount:     dec(amount),
		})
		require.NoError(t, err)
		_, err = env.ledger.ApplyTransition(ctx, donation.ID, domain.DonationCompleted)
		require.NoError(t, err)
		donations = append(donations, donation)
	}
	assertTotals(t, env, campaign.ID, giver.ID, "0.37", 3)

	drifts, err := NewLedgerAuditor(env.store).Audit(ctx)
	require.NoError(t, err)
	assert.Empty(t, drifts)

	for _, donation := range donations {
		_, err := env.ledger.ApplyTransition(ctx, donation.ID, domain.DonationRefunded)
		require.NoError(t, err)
	}
	assertTotals(t, env, campaign.ID, giver.ID, "0.00", 0)

	c, err := env.store.Campaigns().GetByID(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, "0.00", c.CurrentAmount.StringFixed(2))
	assert.True(t, c.CurrentAmount.IsZero(), "current_amount = %s", c.CurrentAmount)

	drifts, err = NewLedgerAuditor(env.store).Audit(ctx)
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestLedgerService_FailedDonationLeavesTotals(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	creator, _ := env.register(t, "creator")
	_, giver := env.register(t, "donor")
	campaign := env.campaign(t, creator.ID, domain.CampaignActive, "")

	donation, err := env.ledger.CreateDonation(ctx, &CreateDonationInput{
		CampaignID: campaign.ID,
		GiverID:    giver.ID,
		Amount:     dec("12.34"),
	})
	require.NoError(t, err)

	donation, err = env.ledger.ApplyTransition(ctx, donation.ID, domain.DonationFailed)
	require.NoError(t, err)
	assert.Nil(t, donation.CompletedAt)
	assertTotals(t, env, campaign.ID, giver.ID, "0", 0)

	_, err = env.ledger.ApplyTransition(ctx, donation.ID, domain.DonationRefunded)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestLedgerService_CreateDonationRejects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	creator, _ := env.register(t, "creator")
	_, giver := env.register(t, "donor")
	active := env.campaign(t, creator.ID, domain.CampaignActive, "")
	draft := env.campaign(t, creator.ID, domain.CampaignDraft, "")

	tests := []struct {
		name    string
		input   CreateDonationInput
		wantErr error
	}{
		{"zero amount", CreateDonationInput{CampaignID: active.ID, GiverID: giver.ID, Amount: dec("0")}, domain.ErrInvalidAmount},
		{"negative amount", CreateDonationInput{CampaignID: active.ID, GiverID: giver.ID, Amount: dec("-5")}, domain.ErrInvalidAmount},
		{"sub-penny amount", CreateDonationInput{CampaignID: active.ID, GiverID: giver.ID, Amount: dec("1.005")}, domain.ErrInvalidAmount},
		{"draft campaign", CreateDonationInput{CampaignID: draft.ID, GiverID: giver.ID, Amount: dec("5")}, domain.ErrCampaignNotActive},
		{"missing campaign", CreateDonationInput{CampaignID: 9999, GiverID: giver.ID, Amount: dec("5")}, domain.ErrNotFound},
		{"missing giver", CreateDonationInput{CampaignID: active.ID, GiverID: 9999, Amount: dec("5")}, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.input
			_, err := env.ledger.CreateDonation(ctx, &input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	var count int64
	require.NoError(t, env.db.Model(&models.Donation{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestLedgerService_ConcurrentCompletion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	creator, _ := env.register(t, "creator")
	_, giver := env.register(t, "donor")
	campaign := env.campaign(t, creator.ID, domain.CampaignActive, "")

	donation, err := env.ledger.CreateDonation(ctx, &CreateDonationInput{
		CampaignID: campaign.ID,
		GiverID:    giver.ID,
		Amount:     dec("25.00"),
	})
	require.NoError(t, err)

	const workers = 100
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
		other     []error
	)

	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := env.ledger.ApplyTransition(ctx, donation.ID, domain.DonationCompleted)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrInvalidTransition):
				rejected++
			default:
				other = append(other, err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Empty(t, other)
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, rejected)
	assertTotals(t, env, campaign.ID, giver.ID, "25.00", 1)
}

func TestLedgerService_UpdateStatusAuthorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	creator, _ := env.register(t, "creator")
	donor, giver := env.register(t, "donor")
	stranger, _ := env.register(t, "stranger")
	admin := &models.User{ID: 424242, Role: string(domain.RoleAdmin)}
	campaign := env.campaign(t, creator.ID, domain.CampaignActive, "")

	newDonation := func() *models.Donation {
		d, err := env.ledger.CreateDonation(ctx, &CreateDonationInput{
			CampaignID: campaign.ID,
			GiverID:    giver.ID,
			Amount:     dec("10"),
		})
		require.NoError(t, err)
		return d
	}

	d := newDonation()
	_, err := env.ledger.UpdateStatus(ctx, stranger, d.ID, domain.DonationCompleted, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = env.ledger.UpdateStatus(ctx, creator, d.ID, domain.DonationCompleted, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	d, err = env.ledger.UpdateStatus(ctx, donor, d.ID, domain.DonationCompleted, "pi_123")
	require.NoError(t, err)
	assert.Equal(t, "pi_123", d.PaymentIntentID)

	_, err = env.ledger.UpdateStatus(ctx, donor, d.ID, domain.DonationRefunded, "")
	assert.ErrorIs(t, err, domain.ErrForbidden, "donors cannot refund themselves")

	_, err = env.ledger.UpdateStatus(ctx, creator, d.ID, domain.DonationRefunded, "")
	require.NoError(t, err)

	d2 := newDonation()
	_, err = env.ledger.UpdateStatus(ctx, donor, d2.ID, domain.DonationCompleted, "")
	require.NoError(t, err)
	_, err = env.ledger.UpdateStatus(ctx, admin, d2.ID, domain.DonationRefunded, "")
	require.NoError(t, err)

	_, err = env.ledger.UpdateStatus(ctx, donor, d2.ID, domain.DonationStatus("PAID"), "")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = env.ledger.UpdateStatus(ctx, donor, 9999, domain.DonationCompleted, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assertTotals(t, env, campaign.ID, giver.ID, "0", 0)
}

func TestLedgerService_GetDonationVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	creator, _ := env.register(t, "creator")
	donor, giver := env.register(t, "donor")
	stranger, _ := env.register(t, "stranger")
	campaign := env.campaign(t, creator.ID, domain.CampaignActive, "")

	d, err := env.ledger.CreateDonation(ctx, &CreateDonationInput{CampaignID: campaign.ID, GiverID: giver.ID, Amount: dec("3")})
	require.NoError(t, err)

	for _, actor := range []*models.User{donor, creator, {ID: 777, Role: string(domain.RoleAdmin)}} {
		got, err := env.ledger.GetDonation(ctx, actor, d.ID)
		require.NoError(t, err)
		assert.Equal(t, d.ID, got.ID)
	}

	_, err = env.ledger.GetDonation(ctx, stranger, d.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestLedgerService_CampaignDonationsSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	creator, _ := env.register(t, "creator")
	_, giver := env.register(t, "donor")
	campaign := env.campaign(t, creator.ID, domain.CampaignActive, "")

	for _, c := range []struct {
		amount    string
		anonymous bool
		complete  bool
	}{
		{"10.00", false, true},
		{"15.50", true, true},
		{"99.99", false, false},
	} {
		d, err := env.ledger.CreateDonation(ctx, &CreateDonationInput{
			CampaignID:  campaign.ID,
			GiverID:     giver.ID,
			Amount:      dec(c.amount),
			IsAnonymous: c.anonymous,
		})
		require.NoError(t, err)
		if c.complete {
			_, err = env.ledger.ApplyTransition(ctx, d.ID, domain.DonationCompleted)
			require.NoError(t, err)
		}
	}

	snap, err := env.ledger.CampaignDonations(ctx, campaign.ID, true, pagination.New(1, 20))
	require.NoError(t, err)
	assert.True(t, dec("25.50").Equal(snap.CurrentAmount), snap.CurrentAmount.String())
	assert.True(t, snap.CurrentAmount.Equal(snap.TotalAmount))
	require.Len(t, snap.Donations, 2)
	assert.Equal(t, int64(2), snap.Meta.Total)

	for _, d := range snap.Donations {
		if d.IsAnonymous {
			assert.Nil(t, d.GiverID)
		}
	}

	public, err := env.ledger.CampaignDonations(ctx, campaign.ID, false, pagination.New(1, 20))
	require.NoError(t, err)
	assert.Len(t, public.Donations, 1)

	_, err = env.ledger.CampaignDonations(ctx, 9999, true, pagination.New(1, 20))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	mine, err := env.ledger.MyDonations(ctx, giver.UserID, pagination.New(1, 20))
	require.NoError(t, err)
	assert.Len(t, mine.Donations, 3)
	assert.Equal(t, 2, mine.DonationCount)
	assert.True(t, dec("25.50").Equal(mine.TotalDonated))
}

func TestLedgerService_ExpiredDeadlineIsStoreUnavailable(t *testing.T) {
	env := newTestEnv(t)

	creator, _ := env.register(t, "creator")
	_, giver := env.register(t, "donor")
	campaign := env.campaign(t, creator.ID, domain.CampaignActive, "")

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := env.ledger.CreateDonation(ctx, &CreateDonationInput{
		CampaignID: campaign.ID,
		GiverID:    giver.ID,
		Amount:     dec("5"),
	})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func assertTotals(t *testing.T, env *testEnv, campaignID, giverID uint, amount string, count int) {
	t.Helper()
	ctx := context.Background()

	campaign, err := env.store.Campaigns().GetByID(ctx, campaignID)
	require.NoError(t, err)
	assert.True(t, dec(amount).Equal(campaign.CurrentAmount), "campaign current_amount = %s, want %s", campaign.CurrentAmount, amount)

	giver, err := env.store.Givers().GetByID(ctx, giverID)
	require.NoError(t, err)
	assert.True(t, dec(amount).Equal(giver.TotalDonated), "giver total_donated = %s, want %s", giver.TotalDonated, amount)
	assert.Equal(t, count, giver.DonationCount)
}
