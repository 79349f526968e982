package database

import (
	"equify-backend/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a GORM DB from DSN (Postgres pooler URL).
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") when using connection poolers
// (e.g. PgBouncer, Supabase, Render).
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
}

// AutoMigrate runs migrations for all ledger models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Company{},
		&domain.Employee{},
		&domain.Grant{},
		&domain.VestingEvent{},
		&domain.ExerciseOrder{},
		&domain.Portfolio{},
		&domain.CashTransfer{},
		&domain.ShareTransfer{},
		&domain.LedgerEvent{},
	)
}
