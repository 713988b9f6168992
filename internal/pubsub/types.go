package pubsub

import (
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/mauv0809/court-rotation/internal/rotation"
)

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub. It doubles
// as the topic name.
type EventType string

const (
	EventAssignmentUpdated EventType = "assignment-updated"
	EventMatchCompleted    EventType = "match-completed"
	EventPlayerJoined      EventType = "player-joined"
	EventPlayerLeft        EventType = "player-left"
)

// SessionEvent is the payload published for every session change.
type SessionEvent struct {
	Type      EventType        `msgpack:"type"`
	SessionID string           `msgpack:"session_id"`
	Round     int              `msgpack:"round"`
	Court     int              `msgpack:"court,omitempty"`
	Match     *rotation.Match  `msgpack:"match,omitempty"`
	PlayerID  string           `msgpack:"player_id,omitempty"`
	Courts    []rotation.Court `msgpack:"courts,omitempty"`
	Queue     []rotation.Match `msgpack:"queue,omitempty"`
	At        time.Time        `msgpack:"at"`
}
