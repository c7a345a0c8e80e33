// Package server wires the service together: configuration, logging,
// metrics, the badger-backed root store, the event hub and the gin router
// with its middleware stack (CORS, request ids, metrics, rate limiting,
// authority binding on the /fs group).
package server
