package services

import (
	"context"

	"github.com/david-crosby/Ripple/internal/adapters/persistence/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Drift is a stored aggregate that disagrees with the sum of completed donations
type Drift struct {
	Kind     string          `json:"kind"` // "campaign" or "giver"
	ID       uint            `json:"id"`
	Stored   decimal.Decimal `json:"stored"`
	Expected decimal.Decimal `json:"expected"`

	// Counts are only set for givers
	StoredCount   int   `json:"stored_count,omitempty"`
	ExpectedCount int64 `json:"expected_count,omitempty"`
}

// LedgerAuditor recomputes campaign and giver totals from the donation rows
// and reports any disagreement. It never writes.
type LedgerAuditor struct {
	store repositories.Store
}

// NewLedgerAuditor creates a new ledger auditor
func NewLedgerAuditor(store repositories.Store) *LedgerAuditor {
	return &LedgerAuditor{store: store}
}

// Audit compares every stored aggregate with its recomputed value
func (a *LedgerAuditor) Audit(ctx context.Context) ([]Drift, error) {
	var drifts []Drift

	err := a.store.Transaction(ctx, func(tx repositories.Store) error {
		campaignDrifts, err := auditCampaigns(ctx, tx)
		if err != nil {
			return err
		}
		giverDrifts, err := auditGivers(ctx, tx)
		if err != nil {
			return err
		}
		drifts = append(campaignDrifts, giverDrifts...)
		return nil
	})
	if err != nil {
		return nil, storeError(err, nil)
	}

	for _, d := range drifts {
		zap.L().Warn("ledger drift detected",
			zap.String("kind", d.Kind),
			zap.Uint("id", d.ID),
			zap.String("stored", d.Stored.StringFixed(2)),
			zap.String("expected", d.Expected.StringFixed(2)),
		)
	}

	return drifts, nil
}

func auditCampaigns(ctx context.Context, tx repositories.Store) ([]Drift, error) {
	totals, err := tx.Donations().CompletedTotalsByCampaign(ctx)
	if err != nil {
		return nil, err
	}
	expected := make(map[uint]decimal.Decimal, len(totals))
	for _, t := range totals {
		expected[t.CampaignID] = t.Total
	}

	campaigns, err := tx.Campaigns().ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var drifts []Drift
	for _, c := range campaigns {
		want := expected[c.ID]
		if !c.CurrentAmount.Equal(want) {
			drifts = append(drifts, Drift{
				Kind:     "campaign",
				ID:       c.ID,
				Stored:   c.CurrentAmount,
				Expected: want,
			})
		}
	}
	return drifts, nil
}

func auditGivers(ctx context.Context, tx repositories.Store) ([]Drift, error) {
	totals, err := tx.Donations().CompletedTotalsByGiver(ctx)
	if err != nil {
		return nil, err
	}
	expected := make(map[uint]repositories.GiverTotals, len(totals))
	for _, t := range totals {
		expected[t.GiverID] = t
	}

	givers, err := tx.Givers().ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var drifts []Drift
	for _, g := range givers {
		want := expected[g.ID]
		if !g.TotalDonated.Equal(want.Total) || int64(g.DonationCount) != want.Count {
			drifts = append(drifts, Drift{
				Kind:          "giver",
				ID:            g.ID,
				Stored:        g.TotalDonated,
				Expected:      want.Total,
				StoredCount:   g.DonationCount,
				ExpectedCount: want.Count,
			})
		}
	}
	return drifts, nil
}
