// Package events fans state machine events out to off-chain indexers.
//
// The Hub's Sink is installed on the root; emitted events are stamped
// with a sortable ULID, BCS-encoded and queued, then broadcast to every
// WebSocket subscriber as a JSON envelope. Events are a side channel, not
// part of any operation's return value: a slow or absent subscriber never
// blocks a mutation, and the queue drops (with a log line) rather than
// backing up into the state machine.
package events
