// Package timeouts defines shared timeout constants used across the service.
// Centralizing these values prevents drift between components and makes the
// durations discoverable.
package timeouts

import "time"

// EventPoll is the default interval between pending-event poll rounds.
const EventPoll = 500 * time.Millisecond

// RoomTransaction caps the time allowed for one read-decide-write room
// transaction, including conflict retries.
const RoomTransaction = 5 * time.Second

// ReadHeader limits how long the watch HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long servers wait for in-flight work during graceful
// shutdown.
const Shutdown = 5 * time.Second
