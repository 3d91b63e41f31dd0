package services

import (
	"context"
	"testing"

	"github.com/david-crosby/Ripple/internal/core/domain"
	"github.com/david-crosby/Ripple/internal/pkg/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_UpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.store, env.vault)
	ctx := context.Background()

	ada, _ := env.register(t, "ada")
	env.register(t, "bob")

	taken := "bob@example.com"
	_, err := svc.UpdateProfile(ctx, ada.ID, &UpdateProfileInput{Email: &taken})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

	email := "countess@example.com"
	name := "Augusta Ada King"
	res, err := svc.UpdateProfile(ctx, ada.ID, &UpdateProfileInput{Email: &email, FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, email, res.Email)
	assert.Equal(t, name, res.FullName)

	_, err = env.auth.Authenticate(ctx, email, "Str0ngPass")
	assert.NoError(t, err)
}

func TestUserService_ChangePassword(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.store, env.vault)
	ctx := context.Background()
	ada, _ := env.register(t, "ada")

	err := svc.ChangePassword(ctx, ada.ID, &ChangePasswordInput{OldPassword: "nope", NewPassword: "N3wPassword"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	err = svc.ChangePassword(ctx, ada.ID, &ChangePasswordInput{OldPassword: "Str0ngPass", NewPassword: "alllowercase1"})
	assert.ErrorIs(t, err, domain.ErrWeakPassword)

	require.NoError(t, svc.ChangePassword(ctx, ada.ID, &ChangePasswordInput{OldPassword: "Str0ngPass", NewPassword: "N3wPassword"}))

	_, err = env.auth.Authenticate(ctx, "ada", "Str0ngPass")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = env.auth.Authenticate(ctx, "ada", "N3wPassword")
	assert.NoError(t, err)
}

func TestUserService_Stats(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.store, env.vault)
	ctx := context.Background()

	creator, _ := env.register(t, "creator")
	donor, giver := env.register(t, "donor")
	campaign := env.campaign(t, creator.ID, domain.CampaignActive, "")
	env.campaign(t, creator.ID, domain.CampaignDraft, "")

	d, err := env.ledger.CreateDonation(ctx, &CreateDonationInput{CampaignID: campaign.ID, GiverID: giver.ID, Amount: dec("40")})
	require.NoError(t, err)
	_, err = env.ledger.ApplyTransition(ctx, d.ID, domain.DonationCompleted)
	require.NoError(t, err)

	donorStats, err := svc.Stats(ctx, donor.ID)
	require.NoError(t, err)
	assert.True(t, dec("40").Equal(donorStats.TotalDonated))
	assert.Equal(t, 1, donorStats.DonationCount)
	assert.Zero(t, donorStats.CampaignsCreated)

	creatorStats, err := svc.Stats(ctx, creator.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), creatorStats.CampaignsCreated)
	assert.True(t, dec("40").Equal(creatorStats.TotalRaised))
}

func TestUserService_AdminSetActive(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.store, env.vault)
	ctx := context.Background()

	admin, _ := env.register(t, "admin")
	target, _ := env.register(t, "target")

	_, err := svc.SetActive(ctx, admin.ID, admin.ID, false)
	assert.ErrorIs(t, err, domain.ErrValidation)

	res, err := svc.SetActive(ctx, admin.ID, target.ID, false)
	require.NoError(t, err)
	assert.False(t, res.IsActive)

	_, err = env.auth.Authenticate(ctx, "target", "Str0ngPass")
	assert.ErrorIs(t, err, domain.ErrAccountInactive)

	_, err = svc.SetActive(ctx, admin.ID, 9999, true)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := svc.ListUsers(ctx, pagination.New(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Meta.Total)
}
