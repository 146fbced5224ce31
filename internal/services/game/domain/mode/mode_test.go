package mode

import (
	"errors"
	"testing"
	"time"

	"github.com/louisbranch/chasse.space/internal/services/game/domain/room"
)

func TestRulesNormalized(t *testing.T) {
	got := Rules{}.Normalized()
	if got.HunterCooldown != DefaultHunterCooldown {
		t.Fatalf("hunter cooldown = %v, want %v", got.HunterCooldown, DefaultHunterCooldown)
	}
	if got.VictimIFrame != DefaultVictimIFrame {
		t.Fatalf("victim iframe = %v, want %v", got.VictimIFrame, DefaultVictimIFrame)
	}

	custom := Rules{HunterCooldown: 800 * time.Millisecond, VictimIFrame: 2 * time.Second}.Normalized()
	if custom.HunterCooldown != 800*time.Millisecond || custom.VictimIFrame != 2*time.Second {
		t.Fatalf("custom rules were overridden: %+v", custom)
	}
}

func TestRegistryResolvesEachMode(t *testing.T) {
	registry := NewRegistry()

	for _, m := range []room.Mode{room.ModeClassic, room.ModeTransmission, room.ModeInfection} {
		h, err := registry.Resolve(m)
		if err != nil {
			t.Fatalf("resolve %s: %v", m, err)
		}
		if h == nil {
			t.Fatalf("resolve %s returned nil handler", m)
		}
	}
}

func TestRegistryFallsBackToClassic(t *testing.T) {
	registry := NewRegistry()

	h, err := registry.Resolve(room.Mode("koth"))
	if err != nil {
		t.Fatalf("resolve unknown mode: %v", err)
	}
	if _, ok := h.(classicHandler); !ok {
		t.Fatalf("fallback handler = %T, want classicHandler", h)
	}
}

func TestRegistryResolveOnce(t *testing.T) {
	registry := NewRegistry()

	first, err := registry.Resolve(room.ModeInfection)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	second, err := registry.Resolve(room.ModeInfection)
	if err != nil {
		t.Fatalf("resolve again: %v", err)
	}
	if first != second {
		t.Fatal("expected memoized handler instance")
	}
}

func TestNilRegistryIsFatal(t *testing.T) {
	var registry *Registry
	if _, err := registry.Resolve(room.ModeClassic); !errors.Is(err, ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}
}
