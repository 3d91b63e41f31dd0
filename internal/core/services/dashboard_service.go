package services

import (
	"context"
	"time"

	"github.com/david-crosby/Ripple/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardService builds read-only summaries for administrators
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// AdminDashboardData represents admin dashboard data
type AdminDashboardData struct {
	// User Statistics
	TotalUsers    int64 `json:"total_users"`
	ActiveUsers   int64 `json:"active_users"`
	TotalAdmins   int64 `json:"total_admins"`
	CompanyGivers int64 `json:"company_givers"`

	// Campaign Statistics
	CampaignsByStatus map[string]int64 `json:"campaigns_by_status"`

	// Donation Statistics
	DonationsByStatus map[string]int64 `json:"donations_by_status"`
	TotalRaised       decimal.Decimal  `json:"total_raised"`
	RaisedThisMonth   decimal.Decimal  `json:"raised_this_month"`

	RecentDonations []DonationSummary `json:"recent_donations"`
	TopCampaigns    []CampaignSummary `json:"top_campaigns"`
}

// DonationSummary represents one recent donation
type DonationSummary struct {
	ID            uint            `json:"id"`
	CampaignID    uint            `json:"campaign_id"`
	CampaignTitle string          `json:"campaign_title"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        string          `json:"payment_status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// CampaignSummary represents a campaign ranked by amount raised
type CampaignSummary struct {
	ID            uint                `json:"id"`
	Title         string              `json:"title"`
	Status        string              `json:"status"`
	GoalAmount    decimal.NullDecimal `json:"goal_amount"`
	CurrentAmount decimal.Decimal     `json:"current_amount"`
}

type statusCount struct {
	Status string
	Count  int64
}

type amountTotal struct {
	Total decimal.Decimal
}

// GetAdminDashboard returns admin dashboard data
func (s *DashboardService) GetAdminDashboard(ctx context.Context) (*AdminDashboardData, error) {
	data := &AdminDashboardData{
		CampaignsByStatus: map[string]int64{},
		DonationsByStatus: map[string]int64{},
	}
	db := s.db.WithContext(ctx)

	// User counts
	if err := db.Table("users").Count(&data.TotalUsers).Error; err != nil {
		return nil, storeError(err, nil)
	}
	db.Table("users").Where("is_active = ?", true).Count(&data.ActiveUsers)
	db.Table("users").Where("role = ?", string(domain.RoleAdmin)).Count(&data.TotalAdmins)
	db.Table("giver_profiles").Where("profile_type = ?", string(domain.ProfileCompany)).Count(&data.CompanyGivers)

	// Status breakdowns
	var counts []statusCount
	if err := db.Table("campaigns").Select("status, COUNT(*) AS count").Group("status").Scan(&counts).Error; err != nil {
		return nil, storeError(err, nil)
	}
	for _, c := range counts {
		data.CampaignsByStatus[c.Status] = c.Count
	}

	counts = nil
	if err := db.Table("donations").Select("payment_status AS status, COUNT(*) AS count").Group("payment_status").Scan(&counts).Error; err != nil {
		return nil, storeError(err, nil)
	}
	for _, c := range counts {
		data.DonationsByStatus[c.Status] = c.Count
	}

	// Amounts raised by completed donations
	var raised amountTotal
	db.Table("donations").Select("COALESCE(SUM(amount), 0) AS total").
		Where("payment_status = ?", domain.DonationCompleted).Scan(&raised)
	data.TotalRaised = raised.Total.Round(2)

	now := time.Now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	raised.Total = decimal.Zero
	db.Table("donations").Select("COALESCE(SUM(amount), 0) AS total").
		Where("payment_status = ? AND completed_at >= ?", domain.DonationCompleted, firstOfMonth).Scan(&raised)
	data.RaisedThisMonth = raised.Total.Round(2)

	// Recent activity
	db.Table("donations d").
		Select("d.id, d.campaign_id, c.title AS campaign_title, d.amount, d.currency, d.payment_status AS status, d.created_at").
		Joins("JOIN campaigns c ON c.id = d.campaign_id").
		Order("d.created_at DESC, d.id DESC").
		Limit(10).
		Scan(&data.RecentDonations)

	db.Table("campaigns").
		Select("id, title, status, goal_amount, current_amount").
		Where("current_amount > 0").
		Order("current_amount DESC, id ASC").
		Limit(5).
		Scan(&data.TopCampaigns)

	return data, nil
}
