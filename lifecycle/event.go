package lifecycle

import (
	"time"

	"goldpawn/models"

	"github.com/google/uuid"
)

// ItemEvent is broadcast to admin consoles. Status is the state after the action
// and is empty for deletions.
type ItemEvent struct {
	ItemID   uuid.UUID         `json:"item_id" msgpack:"item_id"`
	ItemType models.ItemType   `json:"item_type" msgpack:"item_type"`
	Action   Action            `json:"action" msgpack:"action"`
	Status   models.ItemStatus `json:"status,omitempty" msgpack:"status"`
	ActorID  uuid.UUID         `json:"actor_id" msgpack:"actor_id"`
	At       time.Time         `json:"at" msgpack:"at"`
}
