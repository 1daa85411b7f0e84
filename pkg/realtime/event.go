package realtime

// Event types, one per committed mutation kind. Clients reconcile local
// state from these; created/updated carry the full document, deleted only
// the identifying keys.
const (
	ProductCreated  = "product.created"
	ProductUpdated  = "product.updated"
	ProductDeleted  = "product.deleted"
	BusinessCreated = "business.created"
	BusinessUpdated = "business.updated"
	BusinessDeleted = "business.deleted"
)

// Event is the envelope published to a user room.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// DeletedKeys is the minimal payload of a deleted event.
type DeletedKeys struct {
	ID         string `json:"id"`
	BusinessID string `json:"businessId,omitempty"`
}

// UserRoom names the room scoped to one user's identity. Every event for a
// user's documents goes to this room and nowhere else.
func UserRoom(uid string) string {
	return "user:" + uid
}

// Publisher is the fan-out contract the lifecycle service depends on.
// Implementations must be best-effort: a failed publish never propagates
// back into the mutation path.
type Publisher interface {
	Publish(room string, ev Event)
}
