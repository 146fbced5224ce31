// Package room defines the room and player state mutated during tag
// resolution, along with the closed mode, role, and lifecycle enums.
package room

import (
	"strings"
	"time"

	apperrors "github.com/louisbranch/chasse.space/internal/platform/errors"
)

// Mode describes the rule set a room plays under.
type Mode string

const (
	// ModeClassic is a single-hunter chase to a score target.
	ModeClassic Mode = "classic"
	// ModeTransmission passes the hunter role to the tagged victim.
	ModeTransmission Mode = "transmission"
	// ModeInfection grows the hunter set with every tag.
	ModeInfection Mode = "infection"
)

// State describes the room round lifecycle. Progression is forward-only:
// idle -> running -> ended. An ended room is terminal from the resolution
// core's perspective; reopening is an explicit external action.
type State string

const (
	// StateIdle indicates the round has not started.
	StateIdle State = "idle"
	// StateRunning indicates the round is in play.
	StateRunning State = "running"
	// StateEnded indicates the round is over.
	StateEnded State = "ended"
)

// Role describes a player's part in the chase.
type Role string

const (
	// RoleChasseur is the hunter role, authorized to score by tagging.
	RoleChasseur Role = "chasseur"
	// RoleChasse is the prey role, taggable and mode-dependently flipped.
	RoleChasse Role = "chassé"
)

// Victory describes how an infection round ends.
type Victory string

const (
	// VictoryAllInfected ends the round when every participant is a hunter.
	VictoryAllInfected Victory = "all_infected"
	// VictoryTargetInfections ends the round when one hunter reaches the
	// room's infection target.
	VictoryTargetInfections Victory = "target_infections"
)

// ErrInvalidStateTransition indicates a disallowed room state change.
var ErrInvalidStateTransition = apperrors.New(apperrors.CodeRoomInvalidStateTransition, "room state transition is not allowed")

// ParseMode normalizes a persisted mode value. Unknown or absent values
// report false; callers at the system boundary fall back to classic.
func ParseMode(value string) (Mode, bool) {
	switch Mode(strings.TrimSpace(strings.ToLower(value))) {
	case ModeClassic:
		return ModeClassic, true
	case ModeTransmission:
		return ModeTransmission, true
	case ModeInfection:
		return ModeInfection, true
	default:
		return "", false
	}
}

// ModeOrClassic resolves a persisted mode value with the classic fallback
// applied. This is the only place unknown mode strings are absorbed.
func ModeOrClassic(value string) Mode {
	if mode, ok := ParseMode(value); ok {
		return mode
	}
	return ModeClassic
}

// ParseState normalizes a persisted state value.
func ParseState(value string) (State, bool) {
	switch State(strings.TrimSpace(strings.ToLower(value))) {
	case StateIdle:
		return StateIdle, true
	case StateRunning:
		return StateRunning, true
	case StateEnded:
		return StateEnded, true
	default:
		return "", false
	}
}

// VictoryOrDefault resolves a persisted victory value. Absent or unknown
// values fall back to all_infected, the default infection victory condition.
func VictoryOrDefault(value string) Victory {
	switch Victory(strings.TrimSpace(strings.ToLower(value))) {
	case VictoryTargetInfections:
		return VictoryTargetInfections
	default:
		return VictoryAllInfected
	}
}

// IsStateTransitionAllowed enforces the forward-only round lifecycle.
func IsStateTransitionAllowed(from, to State) bool {
	switch from {
	case StateIdle:
		return to == StateRunning
	case StateRunning:
		return to == StateEnded
	default:
		return false
	}
}

// Room is one game instance. Roles is the authoritative source of role
// truth; the optional HunterCount/PlayerCount pair is a denormalized
// fast path maintained alongside it when present.
type Room struct {
	ID    string
	Mode  Mode
	State State
	// TargetScore ends a classic round when the hunter reaches it. Nil
	// means unset (default applies); a value <= 0 means the round never
	// ends by score.
	TargetScore *int
	// Victory selects the infection victory condition.
	Victory Victory
	// InfectionTarget ends a target_infections round when one hunter's
	// infection count reaches it. Nil means unset (default applies).
	InfectionTarget *int
	// Roles maps player uid to role.
	Roles map[string]Role
	// HunterCount and PlayerCount are optional denormalized counters for
	// the all_infected fast path. Zero means absent.
	HunterCount int
	PlayerCount int
	// EndedAt records when the round ended.
	EndedAt *time.Time
	// CreatedAt is when the room was created.
	CreatedAt time.Time
	// UpdatedAt is when room state last changed.
	UpdatedAt time.Time
}

// Transition moves the room to a new lifecycle state, enforcing the
// forward-only progression.
func (r *Room) Transition(to State, at time.Time) error {
	if !IsStateTransitionAllowed(r.State, to) {
		return ErrInvalidStateTransition
	}
	r.State = to
	if to == StateEnded {
		ended := at.UTC()
		r.EndedAt = &ended
	}
	r.UpdatedAt = at.UTC()
	return nil
}

// HunterRoleCount returns the number of entries in the role map holding
// the hunter role.
func (r Room) HunterRoleCount() int {
	count := 0
	for _, role := range r.Roles {
		if role == RoleChasseur {
			count++
		}
	}
	return count
}

// CloneRoles returns a copy of the role map safe to mutate. A nil map
// clones to an empty, non-nil map so handlers can initialize roles on
// rooms that never had them.
func (r Room) CloneRoles() map[string]Role {
	roles := make(map[string]Role, len(r.Roles))
	for uid, role := range r.Roles {
		roles[uid] = role
	}
	return roles
}

// HasCounters reports whether the denormalized counter pair is present.
func (r Room) HasCounters() bool {
	return r.HunterCount > 0 && r.PlayerCount > 0
}
