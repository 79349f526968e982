package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Portfolio is a scoped balance of shares or cash belonging to a company or
// an employee within a company. Share fields apply to share kinds, cash
// fields to cash kinds. Version is bumped on every balance mutation; updates
// are conditional on it (optimistic locking).
type Portfolio struct {
	PortfolioID     uuid.UUID       `gorm:"column:portfolio_id;type:uuid;primaryKey" json:"portfolio_id"`
	CompanyID       uuid.UUID       `gorm:"column:company_id;type:uuid;not null;index" json:"company_id"`
	EmployeeID      *uuid.UUID      `gorm:"column:employee_id;type:uuid;index" json:"employee_id"`
	Kind            string          `gorm:"column:kind;type:varchar(30);not null" json:"kind"`
	Name            string          `gorm:"column:name;not null" json:"name"`
	TotalShares     int64           `gorm:"column:total_shares;not null;default:0" json:"total_shares"`
	AvailableShares int64           `gorm:"column:available_shares;not null;default:0" json:"available_shares"`
	LockedShares    int64           `gorm:"column:locked_shares;not null;default:0" json:"locked_shares"`
	CashBalance     decimal.Decimal `gorm:"column:cash_balance;type:decimal(18,2);not null;default:0" json:"cash_balance"`
	Currency        string          `gorm:"column:currency;type:varchar(3);not null;default:USD" json:"currency"`
	Version         int64           `gorm:"column:version;not null;default:0" json:"version"`
	CreatedAt       time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Portfolio) TableName() string {
	return "portfolios"
}

func (p *Portfolio) BeforeCreate(tx *gorm.DB) error {
	if p.PortfolioID == uuid.Nil {
		p.PortfolioID = uuid.New()
	}
	return nil
}

// IsCash reports whether the portfolio holds cash rather than shares.
func (p *Portfolio) IsCash() bool {
	return p.Kind == PortfolioCompanyCash || p.Kind == PortfolioEmployeeCash
}
