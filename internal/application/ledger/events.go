package ledger

import (
	"encoding/json"

	"equify-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RecordEvent appends an audit entry for a business transition. Payload is
// marshalled into the JSON event_data column.
func RecordEvent(tx *gorm.DB, entityType string, entityID uuid.UUID, eventType string, actorUserID uuid.UUID, payload map[string]interface{}) error {
	b, _ := json.Marshal(payload)
	ev := &domain.LedgerEvent{
		EntityType:  entityType,
		EntityID:    entityID,
		EventType:   eventType,
		ActorUserID: &actorUserID,
		EventData:   datatypes.JSON(b),
	}
	return tx.Create(ev).Error
}
