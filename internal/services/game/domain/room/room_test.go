package room

import (
	"errors"
	"testing"
	"time"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		value string
		want  Mode
		ok    bool
	}{
		{"classic", ModeClassic, true},
		{"transmission", ModeTransmission, true},
		{"infection", ModeInfection, true},
		{" Infection ", ModeInfection, true},
		{"", "", false},
		{"koth", "", false},
		{"unknown-mode-xyz", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseMode(tt.value)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("ParseMode(%q) = (%q, %v), want (%q, %v)", tt.value, got, ok, tt.want, tt.ok)
		}
	}
}

func TestModeOrClassicFallsBack(t *testing.T) {
	if got := ModeOrClassic("unknown-mode-xyz"); got != ModeClassic {
		t.Fatalf("ModeOrClassic fallback = %q, want %q", got, ModeClassic)
	}
	if got := ModeOrClassic(""); got != ModeClassic {
		t.Fatalf("ModeOrClassic empty = %q, want %q", got, ModeClassic)
	}
	if got := ModeOrClassic("transmission"); got != ModeTransmission {
		t.Fatalf("ModeOrClassic known = %q, want %q", got, ModeTransmission)
	}
}

func TestVictoryOrDefault(t *testing.T) {
	if got := VictoryOrDefault(""); got != VictoryAllInfected {
		t.Fatalf("VictoryOrDefault empty = %q, want %q", got, VictoryAllInfected)
	}
	if got := VictoryOrDefault("target_infections"); got != VictoryTargetInfections {
		t.Fatalf("VictoryOrDefault = %q, want %q", got, VictoryTargetInfections)
	}
	if got := VictoryOrDefault("domination"); got != VictoryAllInfected {
		t.Fatalf("VictoryOrDefault unknown = %q, want %q", got, VictoryAllInfected)
	}
}

func TestStateTransitions(t *testing.T) {
	tests := []struct {
		from, to State
		allowed  bool
	}{
		{StateIdle, StateRunning, true},
		{StateRunning, StateEnded, true},
		{StateIdle, StateEnded, false},
		{StateEnded, StateRunning, false},
		{StateEnded, StateIdle, false},
		{StateRunning, StateIdle, false},
	}

	for _, tt := range tests {
		if got := IsStateTransitionAllowed(tt.from, tt.to); got != tt.allowed {
			t.Fatalf("IsStateTransitionAllowed(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
		}
	}
}

func TestTransitionEndedIsTerminal(t *testing.T) {
	now := time.Now()
	r := Room{ID: "room-1", State: StateRunning}

	if err := r.Transition(StateEnded, now); err != nil {
		t.Fatalf("end room: %v", err)
	}
	if r.State != StateEnded {
		t.Fatalf("state = %s, want %s", r.State, StateEnded)
	}
	if r.EndedAt == nil {
		t.Fatal("expected ended timestamp")
	}

	err := r.Transition(StateRunning, now)
	if !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestHunterRoleCount(t *testing.T) {
	r := Room{Roles: map[string]Role{
		"a": RoleChasseur,
		"b": RoleChasse,
		"c": RoleChasseur,
	}}
	if got := r.HunterRoleCount(); got != 2 {
		t.Fatalf("HunterRoleCount() = %d, want 2", got)
	}
	if got := (Room{}).HunterRoleCount(); got != 0 {
		t.Fatalf("HunterRoleCount() on empty room = %d, want 0", got)
	}
}

func TestCloneRolesInitializesNilMap(t *testing.T) {
	r := Room{}
	roles := r.CloneRoles()
	if roles == nil {
		t.Fatal("expected non-nil clone")
	}
	roles["v"] = RoleChasseur
	if len(r.Roles) != 0 {
		t.Fatal("clone mutation leaked into room")
	}
}

func TestPlayerInvulnerable(t *testing.T) {
	now := time.UnixMilli(10_000)
	p := Player{IFrameUntilMs: 11_000}
	if !p.Invulnerable(now) {
		t.Fatal("expected player inside iframe window to be invulnerable")
	}
	if (Player{IFrameUntilMs: 9_000}).Invulnerable(now) {
		t.Fatal("expected expired iframe window to allow tags")
	}
	if (Player{}).Invulnerable(now) {
		t.Fatal("expected zero iframe to allow tags")
	}
}

func TestPlayerInCooldown(t *testing.T) {
	now := time.UnixMilli(10_000)
	cooldown := time.Second

	if !(Player{LastTagMs: 9_500}).InCooldown(now, cooldown) {
		t.Fatal("expected recent tag to keep hunter in cooldown")
	}
	if (Player{LastTagMs: 9_000}).InCooldown(now, cooldown) {
		t.Fatal("expected elapsed cooldown to allow tags")
	}
	if (Player{}).InCooldown(now, cooldown) {
		t.Fatal("expected never-tagged hunter to be out of cooldown")
	}
}
