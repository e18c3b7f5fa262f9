package scheduler

import (
	"context"

	"github.com/camguard/camguard"
)

// operationRequest is the internal queued work item: everything
// ProcessRequest needs to begin the transition, compose a cancellation
// scope and drive the adapter. Unexported: callers only ever see the
// OperationTicket handed back at Enqueue time.
type operationRequest struct {
	operationID camguard.OperationId
	resourceID  camguard.ResourceId
	owner       camguard.OwnerToken
	op          camguard.OperationType
	config      *camguard.CameraConfiguration
	cancel      context.Context
}
