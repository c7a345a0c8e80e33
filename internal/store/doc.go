// Package store persists root objects across restarts.
//
// The root is the unit of persistence: every successful mutation is
// followed by a full snapshot write, and Load rebuilds the complete root
// (both arenas included) and re-checks its invariants. Snapshots are the
// canonical wire encoding, so a save/load cycle is bit-exact.
//
// Each root lives under a key derived from its authority identity by
// hashing, which is the authority binding: a caller whose identity hashes
// to a different key simply cannot reach the root.
package store
