package services

import (
	"context"
	"testing"

	"github.com/david-crosby/Ripple/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGiverService_UpdateAndVisibility(t *testing.T) {
	env := newTestEnv(t)
	svc := NewGiverService(env.store)
	ctx := context.Background()
	ada, _ := env.register(t, "ada")

	company := string(domain.ProfileCompany)
	_, err := svc.UpdateMine(ctx, ada.ID, &UpdateGiverInput{ProfileType: &company})
	assert.ErrorIs(t, err, domain.ErrValidation, "company profiles need a name")

	name := "Analytical Engines Ltd"
	hidden := false
	profile, err := svc.UpdateMine(ctx, ada.ID, &UpdateGiverInput{ProfileType: &company, CompanyName: &name, IsPublic: &hidden})
	require.NoError(t, err)
	assert.Equal(t, company, profile.ProfileType)
	assert.False(t, profile.IsPublic)

	_, err = svc.GetPublic(ctx, ada.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	mine, err := svc.GetByUserID(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, name, mine.CompanyName)

	_, err = svc.GetPublic(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGiverService_Leaderboard(t *testing.T) {
	env := newTestEnv(t)
	svc := NewGiverService(env.store)
	ctx := context.Background()

	creator, _ := env.register(t, "creator")
	campaign := env.campaign(t, creator.ID, domain.CampaignActive, "")

	give := func(username, amount string) uint {
		user, giver := env.register(t, username)
		d, err := env.ledger.CreateDonation(ctx, &CreateDonationInput{CampaignID: campaign.ID, GiverID: giver.ID, Amount: dec(amount)})
		require.NoError(t, err)
		_, err = env.ledger.ApplyTransition(ctx, d.ID, domain.DonationCompleted)
		require.NoError(t, err)
		return user.ID
	}

	small := give("small", "5")
	big := give("big", "500")
	shy := give("shy", "1000")

	hidden := false
	_, err := svc.UpdateMine(ctx, shy, &UpdateGiverInput{IsPublic: &hidden})
	require.NoError(t, err)

	entries, err := svc.Leaderboard(ctx, 10, "")
	require.NoError(t, err)
	require.Len(t, entries, 2, "private givers and givers without donations are excluded")
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, big, entries[0].UserID)
	assert.Equal(t, "Test big", entries[0].DisplayName)
	assert.Equal(t, small, entries[1].UserID)

	entries, err = svc.Leaderboard(ctx, 10, string(domain.ProfileCompany))
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = svc.Leaderboard(ctx, 10, "charity")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
