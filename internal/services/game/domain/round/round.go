// Package round decides whether a resolved tag ends the room's round.
//
// The running -> ended transition is applied at most once; evaluating an
// already-ended room is a no-op, and an ended room never regresses.
package round

import (
	"context"
	"time"

	"github.com/louisbranch/chasse.space/internal/services/game/domain/room"
	"github.com/louisbranch/chasse.space/internal/services/game/storage"
)

// Defaults applied when a room leaves its thresholds unset. An explicit
// threshold <= 0 means the round never ends by that threshold.
const (
	DefaultTargetScore     = 5
	DefaultInfectionTarget = 10
)

// Evaluate inspects the post-tag room state and ends the round when the
// mode's victory condition holds. It stages the room write on the same
// transaction that applied the tag, so termination commits atomically with
// the mutation that caused it. Returns true when the round ended now.
func Evaluate(ctx context.Context, tx storage.RoomTx, rm room.Room, hunterScore int, now time.Time) (bool, error) {
	if rm.State != room.StateRunning {
		return false, nil
	}

	// Unrecognized modes terminate under classic rules, mirroring how tag
	// resolution falls back.
	var ended bool
	switch room.ModeOrClassic(string(rm.Mode)) {
	case room.ModeClassic:
		ended = thresholdReached(rm.TargetScore, DefaultTargetScore, hunterScore)
	case room.ModeInfection:
		switch room.VictoryOrDefault(string(rm.Victory)) {
		case room.VictoryTargetInfections:
			ended = thresholdReached(rm.InfectionTarget, DefaultInfectionTarget, hunterScore)
		default:
			var err error
			ended, err = allInfected(ctx, tx, rm)
			if err != nil {
				return false, err
			}
		}
	case room.ModeTransmission:
		// Transmission rounds end only through an external owner action.
		return false, nil
	}

	if !ended {
		return false, nil
	}
	if err := rm.Transition(room.StateEnded, now); err != nil {
		return false, err
	}
	if err := tx.PutRoom(ctx, rm); err != nil {
		return false, err
	}
	return true, nil
}

// thresholdReached applies the unset-default / non-positive-disables policy
// shared by targetScore and infectionTarget.
func thresholdReached(target *int, fallback, score int) bool {
	goal := fallback
	if target != nil {
		goal = *target
	}
	if goal <= 0 {
		return false
	}
	return score >= goal
}

// allInfected reports whether every participant holds the hunter role,
// preferring the denormalized counter pair and falling back to the role
// map plus a participant count.
func allInfected(ctx context.Context, tx storage.RoomTx, rm room.Room) (bool, error) {
	if rm.HasCounters() {
		return rm.HunterCount >= rm.PlayerCount, nil
	}
	total, err := tx.CountPlayers(ctx)
	if err != nil {
		return false, err
	}
	return AllInfected(rm, total), nil
}

// AllInfected is the slow-path recomputation from the role map. It is
// exported so tests can assert it agrees with the counter fast path.
func AllInfected(rm room.Room, totalPlayers int) bool {
	if totalPlayers <= 0 {
		return false
	}
	return rm.HunterRoleCount() >= totalPlayers
}
