package user

import (
	"time"

	"github.com/google/uuid"
)

// User represents a user in the system. The UUID doubles as the
// participant identifier used by the split core.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
