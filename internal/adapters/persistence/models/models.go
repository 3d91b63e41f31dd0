package models

import (
	"time"

	"github.com/david-crosby/Ripple/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ============================================================
// Identity
// ============================================================

// User represents users table
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Email      string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Username   string    `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Password   string    `gorm:"column:hashed_password;size:255;not null" json:"-"`
	FullName   string    `gorm:"size:255" json:"full_name"`
	Phone      string    `gorm:"size:30" json:"phone"`
	Role       string    `gorm:"size:20;default:'USER'" json:"role"`
	IsActive   bool      `gorm:"default:true" json:"is_active"`
	IsVerified bool      `gorm:"default:false" json:"is_verified"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the ADMIN role
func (u *User) IsAdmin() bool {
	return u.Role == string(domain.RoleAdmin)
}

// UserResponse DTO
type UserResponse struct {
	ID         uint      `json:"id"`
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	FullName   string    `json:"full_name,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Role       string    `json:"role"`
	IsActive   bool      `json:"is_active"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Username:   u.Username,
		FullName:   u.FullName,
		Phone:      u.Phone,
		Role:       u.Role,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}

// ============================================================
// Giving
// ============================================================

// GiverProfile represents giver_profiles table.
// TotalDonated and DonationCount only move through ledger transitions.
type GiverProfile struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	ProfileType   string          `gorm:"size:20;not null;default:'individual'" json:"profile_type"`
	CompanyName   string          `gorm:"size:255" json:"company_name,omitempty"`
	Bio           string          `gorm:"type:text" json:"bio,omitempty"`
	WebsiteURL    string          `gorm:"size:500" json:"website_url,omitempty"`
	TotalDonated  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_donated"`
	DonationCount int             `gorm:"not null;default:0" json:"donation_count"`
	IsPublic      bool            `gorm:"default:true" json:"is_public"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	User          *User           `gorm:"foreignKey:UserID" json:"-"`
}

func (GiverProfile) TableName() string {
	return "giver_profiles"
}

// Campaign represents campaigns table.
// CurrentAmount equals the sum of the campaign's completed donations.
type Campaign struct {
	ID            uint                  `gorm:"primaryKey" json:"id"`
	Title         string                `gorm:"size:255;not null" json:"title"`
	Description   string                `gorm:"type:text" json:"description"`
	CampaignType  string                `gorm:"size:30;not null;default:'fundraising'" json:"campaign_type"`
	GoalAmount    decimal.NullDecimal   `gorm:"type:decimal(12,2)" json:"goal_amount"`
	CurrentAmount decimal.Decimal       `gorm:"type:decimal(12,2);not null;default:0" json:"current_amount"`
	Currency      string                `gorm:"size:3;not null;default:'GBP'" json:"currency"`
	Status        domain.CampaignStatus `gorm:"size:20;not null;default:'draft';index" json:"status"`
	StartDate     *time.Time            `json:"start_date"`
	EndDate       *time.Time            `json:"end_date"`
	ImageURL      string                `gorm:"size:500" json:"image_url,omitempty"`
	CreatorID     uint                  `gorm:"index;not null" json:"creator_id"`
	CreatedAt     time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
	Creator       *User                 `gorm:"foreignKey:CreatorID" json:"-"`
}

func (Campaign) TableName() string {
	return "campaigns"
}

// Donation represents donations table
type Donation struct {
	ID              uint                  `gorm:"primaryKey" json:"id"`
	Amount          decimal.Decimal       `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency        string                `gorm:"size:3;not null;default:'GBP'" json:"currency"`
	CampaignID      uint                  `gorm:"index;not null" json:"campaign_id"`
	GiverID         uint                  `gorm:"index;not null" json:"giver_id"`
	Status          domain.DonationStatus `gorm:"column:payment_status;size:20;not null;default:'pending';index" json:"payment_status"`
	PaymentIntentID string                `gorm:"size:255" json:"payment_intent_id,omitempty"`
	IsAnonymous     bool                  `gorm:"default:false" json:"is_anonymous"`
	Message         string                `gorm:"type:text" json:"message,omitempty"`
	CompletedAt     *time.Time            `json:"completed_at,omitempty"`
	CreatedAt       time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
	Campaign        *Campaign             `gorm:"foreignKey:CampaignID" json:"-"`
	Giver           *GiverProfile         `gorm:"foreignKey:GiverID" json:"-"`
}

func (Donation) TableName() string {
	return "donations"
}

// PublicDonation is the view of a donation shown on campaign pages
type PublicDonation struct {
	ID          uint            `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	GiverID     *uint           `json:"giver_id,omitempty"`
	IsAnonymous bool            `json:"is_anonymous"`
	Message     string          `json:"message,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ToPublic hides the giver of anonymous donations
func (d *Donation) ToPublic() *PublicDonation {
	out := &PublicDonation{
		ID:          d.ID,
		Amount:      d.Amount,
		Currency:    d.Currency,
		IsAnonymous: d.IsAnonymous,
		Message:     d.Message,
		CreatedAt:   d.CreatedAt,
	}
	if !d.IsAnonymous {
		giverID := d.GiverID
		out.GiverID = &giverID
	}
	return out
}

// AutoMigrate runs auto migration for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&GiverProfile{},
		&Campaign{},
		&Donation{},
	)
}
