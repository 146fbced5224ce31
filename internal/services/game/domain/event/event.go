// Package event defines the immutable tag event consumed by the dispatcher.
//
// Events are appended by clients under a room's event collection and are
// never mutated after creation. The only record attached to an event later
// is its idempotence marker, owned by storage.
package event

import (
	"strings"
	"time"
)

// Type identifies the kind of a room event.
type Type string

const (
	// TypeTag records one player tagging another.
	TypeTag Type = "tag"
)

// Tag is one immutable tag fact appended under a room.
type Tag struct {
	// RoomID is the room this event belongs to.
	RoomID string
	// ID uniquely identifies the event. Assigned by storage on append when
	// the producer left it empty.
	ID string
	// Type identifies the kind of event. Only "tag" events carry meaning
	// for the dispatcher; anything else is filtered.
	Type Type
	// HunterUID is the player claiming the tag.
	HunterUID string
	// VictimUID is the player being tagged.
	VictimUID string
	// CreatedAt is when the producer appended the event.
	CreatedAt time.Time
}

// Validate reports whether the event is a well-formed tag fact.
//
// A false result is a filter decision, not a fault: the dispatcher drops
// malformed events silently per the fire-and-forget event model.
func (t Tag) Validate() bool {
	if t.Type != TypeTag {
		return false
	}
	if strings.TrimSpace(t.HunterUID) == "" || strings.TrimSpace(t.VictimUID) == "" {
		return false
	}
	// Self-tags carry no meaning in any mode.
	return t.HunterUID != t.VictimUID
}
