// Package mode implements the per-mode tag-resolution rules.
//
// Handlers are stateless. Every guard decision is made against fresh reads
// inside the room transaction the dispatcher opened; the snapshot carried
// in TagContext.Room was read in that same transaction.
package mode

import (
	"context"
	"time"

	apperrors "github.com/louisbranch/chasse.space/internal/platform/errors"
	"github.com/louisbranch/chasse.space/internal/services/game/domain/room"
	"github.com/louisbranch/chasse.space/internal/services/game/storage"
)

// Default anti-spam windows. Historical tunings ranged 800-1500ms for the
// hunter cooldown and 1200-2000ms for the victim invulnerability window;
// both are configuration, not constants of the game.
const (
	DefaultHunterCooldown = 1000 * time.Millisecond
	DefaultVictimIFrame   = 1500 * time.Millisecond
)

// Rules holds the anti-spam windows applied during tag resolution.
type Rules struct {
	// HunterCooldown is the minimum interval between two scoring tags by
	// the same hunter.
	HunterCooldown time.Duration
	// VictimIFrame is the invulnerability window granted to a victim
	// after a successful tag.
	VictimIFrame time.Duration
}

// Normalized returns a copy with defaults applied to unset windows.
func (r Rules) Normalized() Rules {
	if r.HunterCooldown <= 0 {
		r.HunterCooldown = DefaultHunterCooldown
	}
	if r.VictimIFrame <= 0 {
		r.VictimIFrame = DefaultVictimIFrame
	}
	return r
}

// TagContext carries the inputs for one tag resolution.
type TagContext struct {
	// Room is the room record read fresh inside the current transaction.
	Room room.Room
	// HunterUID is the player claiming the tag.
	HunterUID string
	// VictimUID is the player being tagged.
	VictimUID string
	// Now is the resolution instant.
	Now time.Time
	// Rules are the anti-spam windows in effect.
	Rules Rules
}

// RejectReason describes why a tag was a guard no-op.
type RejectReason string

const (
	// RejectVictimInvulnerable means the victim was inside an iframe window.
	RejectVictimInvulnerable RejectReason = "victim_invulnerable"
	// RejectHunterCooldown means the hunter tagged too recently.
	RejectHunterCooldown RejectReason = "hunter_cooldown"
)

// Effect reports what a handler did with a tag. A rejected tag is not an
// error: guards exist to absorb spam and feedback loops silently.
type Effect struct {
	// Applied is true when player/room state was mutated.
	Applied bool
	// Reason explains a rejection when Applied is false.
	Reason RejectReason
	// Room is the post-mutation room record, valid when Applied.
	Room room.Room
	// HunterScore is the hunter's score after the tag, valid when Applied.
	HunterScore int
}

func rejected(reason RejectReason) Effect {
	return Effect{Reason: reason}
}

// Handler resolves one tag event under a specific rule set.
type Handler interface {
	OnTag(ctx context.Context, tx storage.RoomTx, tag TagContext) (Effect, error)
}

// ErrUnresolved indicates no handler could be resolved, not even the
// classic fallback. This is an unrecoverable configuration error.
var ErrUnresolved = apperrors.New(apperrors.CodeModeUnresolved, "mode handler not resolved")

// Registry resolves room modes to handlers. The mode set is a closed enum
// resolved at construction; lookups are pure reads thereafter, so a single
// registry instance is safe for concurrent use.
type Registry struct {
	handlers map[room.Mode]Handler
}

// NewRegistry constructs a registry with every supported mode resolved.
func NewRegistry() *Registry {
	return &Registry{handlers: map[room.Mode]Handler{
		room.ModeClassic:      classicHandler{},
		room.ModeTransmission: transmissionHandler{},
		room.ModeInfection:    infectionHandler{},
	}}
}

// Resolve returns the handler for a mode. Values outside the closed enum
// fall back to classic; a registry missing even the classic handler fails
// with ErrUnresolved.
func (r *Registry) Resolve(m room.Mode) (Handler, error) {
	if r == nil {
		return nil, ErrUnresolved
	}
	if h, ok := r.handlers[m]; ok {
		return h, nil
	}
	if h, ok := r.handlers[room.ModeClassic]; ok {
		return h, nil
	}
	return nil, ErrUnresolved
}
