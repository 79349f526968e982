package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VestingEvent is a scheduled release of a fixed share quantity from a grant
// on a specific date. Status transitions are monotonic along the lifecycle
// (pending → due → vested/pending_exercise → transferred/exercised) except
// for the explicit rejection path that returns an exercised-in-progress
// event to pending_exercise.
type VestingEvent struct {
	EventID          uuid.UUID        `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	GrantID          uuid.UUID        `gorm:"column:grant_id;type:uuid;not null;index" json:"grant_id"`
	CompanyID        uuid.UUID        `gorm:"column:company_id;type:uuid;not null;index" json:"company_id"`
	EmployeeID       uuid.UUID        `gorm:"column:employee_id;type:uuid;not null;index" json:"employee_id"`
	VestingDate      time.Time        `gorm:"column:vesting_date;not null;index" json:"vesting_date"`
	SharesToVest     int64            `gorm:"column:shares_to_vest;not null" json:"shares_to_vest"`
	Status           string           `gorm:"column:status;type:varchar(20);not null;default:pending;index" json:"status"`
	ExercisePrice    *decimal.Decimal `gorm:"column:exercise_price;type:decimal(18,2)" json:"exercise_price"`
	RequiresExercise bool             `gorm:"column:requires_exercise;not null;default:false" json:"requires_exercise"`
	CreatedAt        time.Time        `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"column:updated_at" json:"updated_at"`
}

func (VestingEvent) TableName() string {
	return "vesting_events"
}

func (v *VestingEvent) BeforeCreate(tx *gorm.DB) error {
	if v.EventID == uuid.Nil {
		v.EventID = uuid.New()
	}
	return nil
}
