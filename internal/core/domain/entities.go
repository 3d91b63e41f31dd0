package domain

import "github.com/shopspring/decimal"

// Role represents user role in the system
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// DefaultCurrency is used when a campaign or donation does not name one
const DefaultCurrency = "GBP"

// MoneyScale is the number of decimal places stored for amounts
const MoneyScale = 2

// ProfileType distinguishes individual and company givers
type ProfileType string

const (
	ProfileIndividual ProfileType = "individual"
	ProfileCompany    ProfileType = "company"
)

// Valid reports whether t is a known profile type
func (t ProfileType) Valid() bool {
	return t == ProfileIndividual || t == ProfileCompany
}

// CampaignType classifies campaigns
type CampaignType string

const (
	CampaignFundraising CampaignType = "fundraising"
	CampaignEvent       CampaignType = "event"
	CampaignAdhocGiving CampaignType = "adhoc_giving"
)

// Valid reports whether t is a known campaign type
func (t CampaignType) Valid() bool {
	switch t {
	case CampaignFundraising, CampaignEvent, CampaignAdhocGiving:
		return true
	}
	return false
}

// PositiveAmount reports whether amount is strictly greater than zero
func PositiveAmount(amount decimal.Decimal) bool {
	return amount.Sign() > 0
}
