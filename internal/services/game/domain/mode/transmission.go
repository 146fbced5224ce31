package mode

import (
	"context"

	"github.com/louisbranch/chasse.space/internal/services/game/domain/room"
	"github.com/louisbranch/chasse.space/internal/services/game/storage"
)

// transmissionHandler passes the hunter role to the tagged victim. The
// whole role map is rewritten in one staged write so no committed state
// ever shows more than one hunter.
type transmissionHandler struct{}

func (transmissionHandler) OnTag(ctx context.Context, tx storage.RoomTx, tag TagContext) (Effect, error) {
	victim, err := tx.Player(ctx, tag.VictimUID)
	if err != nil {
		return Effect{}, err
	}
	// The iframe here is what prevents an instant retaliation tag.
	if victim.Invulnerable(tag.Now) {
		return rejected(RejectVictimInvulnerable), nil
	}

	roles := tag.Room.CloneRoles()
	for uid, r := range roles {
		if r == room.RoleChasseur {
			roles[uid] = room.RoleChasse
		}
	}
	roles[tag.HunterUID] = room.RoleChasse
	roles[tag.VictimUID] = room.RoleChasseur

	updated := tag.Room
	updated.Roles = roles
	if updated.HasCounters() {
		updated.HunterCount = 1
	}
	updated.UpdatedAt = tag.Now.UTC()
	if err := tx.PutRoom(ctx, updated); err != nil {
		return Effect{}, err
	}

	victim.IFrameUntilMs = tag.Now.UnixMilli() + tag.Rules.VictimIFrame.Milliseconds()
	victim.UpdatedAt = tag.Now.UTC()
	if err := tx.PutPlayer(ctx, victim); err != nil {
		return Effect{}, err
	}

	return Effect{Applied: true, Room: updated}, nil
}
