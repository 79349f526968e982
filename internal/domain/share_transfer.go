package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShareTransfer records a share movement between two share portfolios.
// Never mutated or deleted after creation.
type ShareTransfer struct {
	TransferID        uuid.UUID  `gorm:"column:transfer_id;type:uuid;primaryKey" json:"transfer_id"`
	TransferNumber    string     `gorm:"column:transfer_number;uniqueIndex;not null" json:"transfer_number"`
	TransferType      string     `gorm:"column:transfer_type;type:varchar(20);not null" json:"transfer_type"`
	CompanyID         uuid.UUID  `gorm:"column:company_id;type:uuid;not null;index" json:"company_id"`
	GrantID           uuid.UUID  `gorm:"column:grant_id;type:uuid;not null" json:"grant_id"`
	EmployeeID        uuid.UUID  `gorm:"column:employee_id;type:uuid;not null;index" json:"employee_id"`
	FromPortfolioID   uuid.UUID  `gorm:"column:from_portfolio_id;type:uuid;not null" json:"from_portfolio_id"`
	ToPortfolioID     uuid.UUID  `gorm:"column:to_portfolio_id;type:uuid;not null" json:"to_portfolio_id"`
	SharesTransferred int64      `gorm:"column:shares_transferred;not null" json:"shares_transferred"`
	TransferDate      time.Time  `gorm:"column:transfer_date;not null" json:"transfer_date"`
	Status            string     `gorm:"column:status;type:varchar(20);not null;default:processed" json:"status"`
	ExerciseOrderID   *uuid.UUID `gorm:"column:exercise_order_id;type:uuid" json:"exercise_order_id"`
	CreatedAt         time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (ShareTransfer) TableName() string {
	return "share_transfers"
}

func (t *ShareTransfer) BeforeCreate(tx *gorm.DB) error {
	if t.TransferID == uuid.Nil {
		t.TransferID = uuid.New()
	}
	return nil
}
