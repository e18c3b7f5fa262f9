// Package camguard is an embeddable library that brokers exclusive
// ownership of hardware-like resources (canonically cameras) and mediates
// a small set of lifecycle operations on them: StartStreaming, Stop,
// Pause, Resume, UpdateConfiguration, Prepare, Reset.
//
// # Responsibilities
//   - single-owner admission control over a resource table (package table)
//   - a pure state-machine gatekeeper over legal transitions (package
//     statemachine)
//   - synchronous acceptance / asynchronous execution of operations with
//     cancellation and timeout (package scheduler)
//   - fan-out of completion notifications with handler fault isolation
//     (package eventhub)
//   - a per-owner session façade (package session)
//   - the public host façade that wires the above (package host)
//
// # Usage
//
// A caller constructs a host with host.New and initializes it with its
// Initialize method, obtains a session with CreateSession, issues
// operations on the session, and observes completion through the typed
// callbacks passed to CreateSession.
//
// This package holds the data model shared by every component: ResourceId,
// CameraState, OperationType, OwnerToken, CameraConfiguration,
// CompletionEvent, OperationTicket and the fixed Callbacks set.
package camguard
