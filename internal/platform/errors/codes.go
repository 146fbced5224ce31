// Package errors provides structured error handling for domain failures.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Room errors
	CodeRoomEmptyID                 Code = "ROOM_EMPTY_ID"
	CodeRoomInvalidStateTransition  Code = "ROOM_INVALID_STATE_TRANSITION"
	CodeRoomStateDisallowsOperation Code = "ROOM_STATE_DISALLOWS_OPERATION"

	// Player errors
	CodePlayerEmptyUID    Code = "PLAYER_EMPTY_UID"
	CodePlayerEmptyRoomID Code = "PLAYER_EMPTY_ROOM_ID"

	// Event errors
	CodeEventEmptyRoomID Code = "EVENT_EMPTY_ROOM_ID"
	CodeEventMalformed   Code = "EVENT_MALFORMED"

	// Mode errors
	CodeModeUnresolved Code = "MODE_UNRESOLVED"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
	CodeConflict Code = "TRANSACTION_CONFLICT"
)
