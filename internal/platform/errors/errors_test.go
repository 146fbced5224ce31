package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	base := New(CodeRoomInvalidStateTransition, "room state transition is not allowed")
	other := New(CodeRoomInvalidStateTransition, "different message, same code")

	if !stderrors.Is(other, base) {
		t.Fatal("expected errors with the same code to match")
	}
	if stderrors.Is(New(CodeNotFound, "missing"), base) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestErrorIsMatchesThroughWrapping(t *testing.T) {
	base := New(CodeEventMalformed, "event is malformed")
	wrapped := fmt.Errorf("dispatch event: %w", base)

	if !stderrors.Is(wrapped, base) {
		t.Fatal("expected wrapped error to match by code")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(CodeUnknown, "append event", cause)

	if !stderrors.Is(err, cause) {
		t.Fatal("expected cause to be reachable via errors.Is")
	}
	if err.Error() != "append event" {
		t.Fatalf("message = %q, want %q", err.Error(), "append event")
	}
}

func TestWithMetadata(t *testing.T) {
	err := WithMetadata(CodeModeUnresolved, "mode handler not resolved", map[string]string{"mode": "koth"})
	if err.Metadata["mode"] != "koth" {
		t.Fatalf("metadata mode = %q, want %q", err.Metadata["mode"], "koth")
	}
}
