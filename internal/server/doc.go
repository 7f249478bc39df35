// Package server implements the HTTP surface of the flavors service: the
// /api/flavors JSON endpoints, health and metrics routes, and the static
// front end. It wires the routes to their dependencies (flavor store,
// database handle, static file source) and provides the lifecycle helpers
// used by tests and the production binary.
package server
