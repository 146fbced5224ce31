package mode

import (
	"context"

	"github.com/louisbranch/chasse.space/internal/services/game/storage"
)

// classicHandler scores a single hunter chasing prey to a score target.
type classicHandler struct{}

func (classicHandler) OnTag(ctx context.Context, tx storage.RoomTx, tag TagContext) (Effect, error) {
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
	hunter.Score++
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

	return Effect{Applied: true, Room: tag.Room, HunterScore: hunter.Score}, nil
}
