package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CashTransfer records a cash movement between two portfolios, or into one
// for deposits. Deposits start pending and await operator approval;
// exercise_settlement transfers are created already processed as a side
// effect of settlement and always reference the exercise order they settle.
type CashTransfer struct {
	TransferID      uuid.UUID       `gorm:"column:transfer_id;type:uuid;primaryKey" json:"transfer_id"`
	TransferNumber  string          `gorm:"column:transfer_number;uniqueIndex;not null" json:"transfer_number"`
	TransferType    string          `gorm:"column:transfer_type;type:varchar(30);not null" json:"transfer_type"`
	CompanyID       uuid.UUID       `gorm:"column:company_id;type:uuid;not null;index" json:"company_id"`
	EmployeeID      *uuid.UUID      `gorm:"column:employee_id;type:uuid;index" json:"employee_id"`
	FromPortfolioID *uuid.UUID      `gorm:"column:from_portfolio_id;type:uuid" json:"from_portfolio_id"`
	ToPortfolioID   *uuid.UUID      `gorm:"column:to_portfolio_id;type:uuid" json:"to_portfolio_id"`
	ExerciseOrderID *uuid.UUID      `gorm:"column:exercise_order_id;type:uuid" json:"exercise_order_id"`
	Amount          decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	Currency        string          `gorm:"column:currency;type:varchar(3);not null;default:USD" json:"currency"`
	Status          string          `gorm:"column:status;type:varchar(20);not null;default:pending;index" json:"status"`
	RejectionReason *string         `gorm:"column:rejection_reason" json:"rejection_reason"`
	ApprovedBy      *uuid.UUID      `gorm:"column:approved_by;type:uuid" json:"approved_by"`
	ApprovedAt      *time.Time      `gorm:"column:approved_at" json:"approved_at"`
	CreatedAt       time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (CashTransfer) TableName() string {
	return "cash_transfers"
}

func (t *CashTransfer) BeforeCreate(tx *gorm.DB) error {
	if t.TransferID == uuid.Nil {
		t.TransferID = uuid.New()
	}
	return nil
}
