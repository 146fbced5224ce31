package mode

import (
	"context"

	"github.com/louisbranch/chasse.space/internal/services/game/domain/room"
	"github.com/louisbranch/chasse.space/internal/services/game/storage"
)

// infectionHandler grows the hunter set with every tag: a tagged prey
// becomes one more hunter, and hunters are never demoted during a round.
type infectionHandler struct{}

func (infectionHandler) OnTag(ctx context.Context, tx storage.RoomTx, tag TagContext) (Effect, error) {
	victim, err := tx.Player(ctx, tag.VictimUID)
	if err != nil {
		return Effect{}, err
	}
	if victim.Invulnerable(tag.Now) {
		return rejected(RejectVictimInvulnerable), nil
	}

	hunter, err := tx.Player(ctx, tag.HunterUID)
	if err != nil {
		return Effect{}, err
	}
	if hunter.InCooldown(tag.Now, tag.Rules.HunterCooldown) {
		return rejected(RejectHunterCooldown), nil
	}

	nowMs := tag.Now.UnixMilli()
	hunter.Score++ // infections performed by this hunter
	hunter.LastTagMs = nowMs
	hunter.UpdatedAt = tag.Now.UTC()
	victim.IFrameUntilMs = nowMs + tag.Rules.VictimIFrame.Milliseconds()
	victim.UpdatedAt = tag.Now.UTC()

	if err := tx.PutPlayer(ctx, hunter); err != nil {
		return Effect{}, err
	}
	if err := tx.PutPlayer(ctx, victim); err != nil {
		return Effect{}, err
	}

	// Rooms seeded without a role map get one initialized with just the
	// newly infected entry.
	roles := tag.Room.CloneRoles()
	wasHunter := roles[tag.VictimUID] == room.RoleChasseur
	roles[tag.VictimUID] = room.RoleChasseur

	updated := tag.Room
	updated.Roles = roles
	if updated.HasCounters() && !wasHunter {
		updated.HunterCount++
	}
	updated.UpdatedAt = tag.Now.UTC()
	if err := tx.PutRoom(ctx, updated); err != nil {
		return Effect{}, err
	}

	return Effect{Applied: true, Room: updated, HunterScore: hunter.Score}, nil
}
