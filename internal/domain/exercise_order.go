package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ExerciseOrder is an employee's request to convert a vested ESOP vesting
// event into owned shares by paying the exercise cost. Once processed it is
// immutable and serves as a permanent audit record.
type ExerciseOrder struct {
	OrderID               uuid.UUID       `gorm:"column:order_id;type:uuid;primaryKey" json:"order_id"`
	OrderNumber           string          `gorm:"column:order_number;uniqueIndex;not null" json:"order_number"`
	CompanyID             uuid.UUID       `gorm:"column:company_id;type:uuid;not null;index" json:"company_id"`
	EmployeeID            uuid.UUID       `gorm:"column:employee_id;type:uuid;not null;index" json:"employee_id"`
	GrantID               uuid.UUID       `gorm:"column:grant_id;type:uuid;not null" json:"grant_id"`
	VestingEventID        uuid.UUID       `gorm:"column:vesting_event_id;type:uuid;not null;index" json:"vesting_event_id"`
	SharesToExercise      int64           `gorm:"column:shares_to_exercise;not null" json:"shares_to_exercise"`
	ExercisePricePerShare decimal.Decimal `gorm:"column:exercise_price_per_share;type:decimal(18,2);not null" json:"exercise_price_per_share"`
	TotalExerciseCost     decimal.Decimal `gorm:"column:total_exercise_cost;type:decimal(18,2);not null" json:"total_exercise_cost"`
	CashPortfolioID       uuid.UUID       `gorm:"column:cash_portfolio_id;type:uuid;not null" json:"cash_portfolio_id"`
	CashBalanceAtOrder    decimal.Decimal `gorm:"column:cash_balance_at_order;type:decimal(18,2);not null" json:"cash_balance_at_order"`
	SufficientFunds       bool            `gorm:"column:sufficient_funds;not null" json:"sufficient_funds"`
	Status                string          `gorm:"column:status;type:varchar(20);not null;default:pending;index" json:"status"`
	RejectionReason       *string         `gorm:"column:rejection_reason" json:"rejection_reason"`
	ProcessedAt           *time.Time      `gorm:"column:processed_at" json:"processed_at"`
	ProcessedBy           *uuid.UUID      `gorm:"column:processed_by;type:uuid" json:"processed_by"`
	CreatedAt             time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt             time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (ExerciseOrder) TableName() string {
	return "exercise_orders"
}

func (o *ExerciseOrder) BeforeCreate(tx *gorm.DB) error {
	if o.OrderID == uuid.Nil {
		o.OrderID = uuid.New()
	}
	return nil
}
