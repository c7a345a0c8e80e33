// Package http exposes the state machine's operation set over REST.
//
// Mutating routes bind the caller's X-Authority identity to the root they
// operate on; read routes resolve the same way but never write. Handlers
// translate the state machine's tagged errors to HTTP statuses and
// snapshot the root to the store after every successful mutation. Read
// results are JSON by default and the canonical BCS bytes (base64) with
// ?encoding=bcs.
package http
