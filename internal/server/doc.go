// Package server exposes the resource broker's host façade over HTTP:
// health/status endpoints, session creation, and per-session operation
// dispatch, with the reconfigure request body validated against an
// embedded OpenAPI document before it reaches a handler.
package server
