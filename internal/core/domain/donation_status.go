package domain

// DonationStatus is the payment lifecycle state of a donation
type DonationStatus string

const (
	DonationPending   DonationStatus = "pending"
	DonationCompleted DonationStatus = "completed"
	DonationFailed    DonationStatus = "failed"
	DonationRefunded  DonationStatus = "refunded"
)

// AggregateEffect is how a transition moves campaign and giver totals.
// Sign is +1 to add the donation, -1 to reverse it, 0 for no effect.
type AggregateEffect struct {
	Sign int
}

// donationTransitions is the complete donation state graph.
// Any pair not listed is rejected.
var donationTransitions = map[DonationStatus]map[DonationStatus]AggregateEffect{
	DonationPending: {
		DonationCompleted: {Sign: +1},
		DonationFailed:    {Sign: 0},
	},
	DonationCompleted: {
		DonationRefunded: {Sign: -1},
	},
}

// ParseDonationStatus converts external input into a DonationStatus
func ParseDonationStatus(s string) (DonationStatus, error) {
	status := DonationStatus(s)
	if !status.Valid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// Valid reports whether s is a known status
func (s DonationStatus) Valid() bool {
	switch s {
	case DonationPending, DonationCompleted, DonationFailed, DonationRefunded:
		return true
	}
	return false
}

// NextDonationStatus looks up the transition from -> to.
// Illegal transitions return a *TransitionError.
func NextDonationStatus(from, to DonationStatus) (AggregateEffect, error) {
	effect, ok := donationTransitions[from][to]
	if !ok {
		return AggregateEffect{}, &TransitionError{From: string(from), To: string(to)}
	}
	return effect, nil
}

// CampaignStatus is the lifecycle state of a campaign
type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignActive    CampaignStatus = "active"
	CampaignCompleted CampaignStatus = "completed"
	CampaignCancelled CampaignStatus = "cancelled"
)

var campaignTransitions = map[CampaignStatus][]CampaignStatus{
	CampaignDraft:  {CampaignActive, CampaignCancelled},
	CampaignActive: {CampaignCompleted, CampaignCancelled},
}

// ParseCampaignStatus converts external input into a CampaignStatus
func ParseCampaignStatus(s string) (CampaignStatus, error) {
	status := CampaignStatus(s)
	switch status {
	case CampaignDraft, CampaignActive, CampaignCompleted, CampaignCancelled:
		return status, nil
	}
	return "", ErrInvalidStatus
}

// AcceptsDonations reports whether donations may be created against the campaign
func (s CampaignStatus) AcceptsDonations() bool {
	return s == CampaignActive
}

// CanTransitionCampaign reports whether a campaign may move from -> to
func CanTransitionCampaign(from, to CampaignStatus) error {
	for _, next := range campaignTransitions[from] {
		if next == to {
			return nil
		}
	}
	return &TransitionError{From: string(from), To: string(to)}
}
