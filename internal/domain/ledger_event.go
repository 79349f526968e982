package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LedgerEvent is an append-only audit entry written alongside business
// transitions (order created/approved/rejected/processed, transfer approved,
// vesting advanced). EventData holds a JSON snapshot of the transition.
type LedgerEvent struct {
	EventID     uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	EntityType  string         `gorm:"column:entity_type;type:varchar(30);not null;index" json:"entity_type"`
	EntityID    uuid.UUID      `gorm:"column:entity_id;type:uuid;not null;index" json:"entity_id"`
	EventType   string         `gorm:"column:event_type;type:varchar(30);not null" json:"event_type"`
	ActorUserID *uuid.UUID     `gorm:"column:actor_user_id;type:uuid" json:"actor_user_id"`
	EventData   datatypes.JSON `gorm:"column:event_data" json:"event_data"`
	CreatedAt   time.Time      `gorm:"column:created_at" json:"created_at"`
}

func (LedgerEvent) TableName() string {
	return "ledger_events"
}

func (e *LedgerEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}
