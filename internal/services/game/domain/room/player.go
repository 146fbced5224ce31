package room

import "time"

// Player holds the per-room mutable state of one participant. Players are
// created when a participant joins (a lobby concern) and mutated only by
// mode handlers during tag resolution.
type Player struct {
	RoomID string
	UID    string
	// Score counts successful tags performed as hunter.
	Score int
	// LastTagMs is the unix-millisecond timestamp of this player's last
	// successful tag as hunter. Zero means never tagged.
	LastTagMs int64
	// IFrameUntilMs is the unix-millisecond timestamp until which this
	// player is immune to being tagged. Zero means not immune.
	IFrameUntilMs int64
	// CreatedAt is when the player joined the room.
	CreatedAt time.Time
	// UpdatedAt is when player state last changed.
	UpdatedAt time.Time
}

// Invulnerable reports whether the player is inside an invulnerability
// window at the given instant.
func (p Player) Invulnerable(now time.Time) bool {
	return p.IFrameUntilMs > 0 && now.UnixMilli() < p.IFrameUntilMs
}

// InCooldown reports whether the player tagged too recently to score again.
func (p Player) InCooldown(now time.Time, cooldown time.Duration) bool {
	if p.LastTagMs <= 0 {
		return false
	}
	return now.UnixMilli()-p.LastTagMs < cooldown.Milliseconds()
}
