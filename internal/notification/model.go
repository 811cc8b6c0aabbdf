package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification represents a notification in the system
type Notification struct {
	ID                uuid.UUID  `json:"id"`
	RecipientID       uuid.UUID  `json:"recipient_id"`
	Message           string     `json:"message"`
	IsRead            bool       `json:"is_read"`
	RelatedEntityType *string    `json:"related_entity_type,omitempty"` // e.g., "SETTLEMENT", "EXPENSE", "GROUP"
	RelatedEntityID   *uuid.UUID `json:"related_entity_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Related entity types
const (
	EntityTypeGroup      = "GROUP"
	EntityTypeExpense    = "EXPENSE"
	EntityTypeDebt       = "DEBT"
	EntityTypeSettlement = "SETTLEMENT"
)
