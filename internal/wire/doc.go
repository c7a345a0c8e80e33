// Package wire is the canonical binary codec for read-operation results,
// event payloads and persisted root snapshots.
//
// The encoding is BCS: scalar integers little-endian, strings and
// sequences prefixed with a ULEB128 count, booleans a single 0/1 byte,
// object ids 32 little-endian bytes. Encoding a value twice yields the
// same bytes, which is what lets the store round-trip the root bit for
// bit.
package wire
