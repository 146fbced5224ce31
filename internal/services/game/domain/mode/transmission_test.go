package mode

import (
	"testing"
	"time"

	"github.com/louisbranch/chasse.space/internal/services/game/domain/room"
	"github.com/louisbranch/chasse.space/internal/testkit/gamefakes"
)

func transmissionFixture(t *testing.T) (*gamefakes.GameStore, room.Room) {
	t.Helper()
	store := gamefakes.NewGameStore()
	rm := room.Room{
		ID:    "room-1",
		Mode:  room.ModeTransmission,
		State: room.StateRunning,
		Roles: map[string]room.Role{
			"a": room.RoleChasseur,
			"b": room.RoleChasse,
			"c": room.RoleChasse,
		},
	}
	store.SeedRoom(rm)
	for _, uid := range []string{"a", "b", "c"} {
		store.SeedPlayer(room.Player{RoomID: "room-1", UID: uid})
	}
	return store, rm
}

func TestTransmissionPassesHunterRole(t *testing.T) {
	store, rm := transmissionFixture(t)
	now := time.UnixMilli(50_000)

	eff := runTag(t, store, transmissionHandler{}, TagContext{Room: rm, HunterUID: "a", VictimUID: "b", Now: now, Rules: testRules})

	if !eff.Applied {
		t.Fatalf("expected tag applied, got rejection %q", eff.Reason)
	}

	roles := store.Rooms["room-1"].Roles
	if roles["a"] != room.RoleChasse {
		t.Fatalf("previous hunter role = %q, want %q", roles["a"], room.RoleChasse)
	}
	if roles["b"] != room.RoleChasseur {
		t.Fatalf("victim role = %q, want %q", roles["b"], room.RoleChasseur)
	}
	if roles["c"] != room.RoleChasse {
		t.Fatalf("bystander role = %q, want %q", roles["c"], room.RoleChasse)
	}

	victim := store.PlayersByRoom["room-1"]["b"]
	if victim.IFrameUntilMs != now.UnixMilli()+testRules.VictimIFrame.Milliseconds() {
		t.Fatalf("victim iframe = %d, want %d", victim.IFrameUntilMs, now.UnixMilli()+testRules.VictimIFrame.Milliseconds())
	}
}

// Property: after any sequence of transmission tags, exactly one role entry
// is chasseur at every committed state.
func TestTransmissionRoleUniqueness(t *testing.T) {
	store, _ := transmissionFixture(t)
	now := time.UnixMilli(50_000)

	tags := []struct{ hunter, victim string }{
		{"a", "b"},
		{"b", "c"},
		{"c", "a"},
		{"a", "c"},
	}
	for i, tag := range tags {
		rm := store.Rooms["room-1"]
		// Space tags beyond the iframe window so each one lands.
		at := now.Add(time.Duration(i) * 2 * time.Second)
		eff := runTag(t, store, transmissionHandler{}, TagContext{Room: rm, HunterUID: tag.hunter, VictimUID: tag.victim, Now: at, Rules: testRules})
		if !eff.Applied {
			t.Fatalf("tag %d rejected: %q", i, eff.Reason)
		}

		committed := store.Rooms["room-1"]
		if got := committed.HunterRoleCount(); got != 1 {
			t.Fatalf("after tag %d: hunter count = %d, want exactly 1", i, got)
		}
		if committed.Roles[tag.victim] != room.RoleChasseur {
			t.Fatalf("after tag %d: victim %q is not the hunter", i, tag.victim)
		}
	}
}

func TestTransmissionInvulnerableVictimPreventsRetaliation(t *testing.T) {
	store, _ := transmissionFixture(t)
	now := time.UnixMilli(50_000)

	rm := store.Rooms["room-1"]
	eff := runTag(t, store, transmissionHandler{}, TagContext{Room: rm, HunterUID: "a", VictimUID: "b", Now: now, Rules: testRules})
	if !eff.Applied {
		t.Fatalf("first tag rejected: %q", eff.Reason)
	}

	// Immediate tag-back from the old hunter's victim window: b is now
	// hunter, but a is not invulnerable, so the guard under test is the
	// reverse direction. b tags back at a allowed; a tags b again blocked.
	rm = store.Rooms["room-1"]
	eff = runTag(t, store, transmissionHandler{}, TagContext{Room: rm, HunterUID: "a", VictimUID: "b", Now: now.Add(100 * time.Millisecond), Rules: testRules})
	if eff.Applied {
		t.Fatal("expected tag against invulnerable victim to be rejected")
	}
	if eff.Reason != RejectVictimInvulnerable {
		t.Fatalf("reason = %q, want %q", eff.Reason, RejectVictimInvulnerable)
	}
	if got := store.Rooms["room-1"].Roles["b"]; got != room.RoleChasseur {
		t.Fatalf("rejected tag changed roles: b = %q", got)
	}
}

func TestTransmissionMaintainsCounterWhenPresent(t *testing.T) {
	store, rm := transmissionFixture(t)
	rm.HunterCount = 1
	rm.PlayerCount = 3
	store.SeedRoom(rm)

	eff := runTag(t, store, transmissionHandler{}, TagContext{Room: rm, HunterUID: "a", VictimUID: "b", Now: time.UnixMilli(50_000), Rules: testRules})
	if !eff.Applied {
		t.Fatalf("tag rejected: %q", eff.Reason)
	}
	if got := store.Rooms["room-1"].HunterCount; got != 1 {
		t.Fatalf("hunter count = %d, want 1", got)
	}
}
