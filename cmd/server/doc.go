// Command server runs the walavie filesystem service: the hierarchical
// filesystem state machine behind a REST surface, with a WebSocket event
// stream for off-chain indexers and badger-backed root persistence.
package main
