package repositories

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormStore implements Store on top of a gorm handle, which may be a transaction
type gormStore struct {
	db *gorm.DB
}

// NewStore creates a Store backed by db
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository {
	return NewUserRepository(s.db)
}

func (s *gormStore) Givers() GiverRepository {
	return NewGiverRepository(s.db)
}

func (s *gormStore) Campaigns() CampaignRepository {
	return NewCampaignRepository(s.db)
}

func (s *gormStore) Donations() DonationRepository {
	return NewDonationRepository(s.db)
}

// Transaction runs fn in a database transaction; nested calls use savepoints
func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

// withLock adds a row-locking clause on dialects that support it.
// SQLite serializes writers on the database file instead.
func withLock(db *gorm.DB, strength string) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: strength})
}

// money formats an amount with two decimal places for storage
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
