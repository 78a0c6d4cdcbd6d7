package events

import (
	"github.com/google/uuid"
)

const (
	// NamePathChange is published when a project folder has been chosen.
	NamePathChange = "path_change"
)

// Event is a named notification for the UI layer.
type Event struct {
	ID      uuid.UUID
	Name    string
	Payload any
}
