package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Grant is an award of equity to an employee under a plan type. ESOP grants
// carry an exercise price; RSU/RSA grants vest into owned shares directly.
type Grant struct {
	GrantID       uuid.UUID        `gorm:"column:grant_id;type:uuid;primaryKey" json:"grant_id"`
	CompanyID     uuid.UUID        `gorm:"column:company_id;type:uuid;not null;index" json:"company_id"`
	EmployeeID    uuid.UUID        `gorm:"column:employee_id;type:uuid;not null;index" json:"employee_id"`
	PlanType      string           `gorm:"column:plan_type;type:varchar(10);not null" json:"plan_type"`
	TotalShares   int64            `gorm:"column:total_shares;not null" json:"total_shares"`
	ExercisePrice *decimal.Decimal `gorm:"column:exercise_price;type:decimal(18,2)" json:"exercise_price"`
	Currency      string           `gorm:"column:currency;type:varchar(3);not null;default:USD" json:"currency"`
	GrantDate     time.Time        `gorm:"column:grant_date;not null" json:"grant_date"`
	Status        string           `gorm:"column:status;type:varchar(20);not null;default:active" json:"status"`
	CreatedAt     time.Time        `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"column:updated_at" json:"updated_at"`
}

func (Grant) TableName() string {
	return "grants"
}

func (g *Grant) BeforeCreate(tx *gorm.DB) error {
	if g.GrantID == uuid.Nil {
		g.GrantID = uuid.New()
	}
	return nil
}

// RequiresExercise reports whether shares under this grant need a paid
// exercise step before ownership transfers.
func (g *Grant) RequiresExercise() bool {
	return g.PlanType == PlanESOP
}
