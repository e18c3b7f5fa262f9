package camguard

import (
	"time"

	"github.com/google/uuid"

	"github.com/camguard/camguard/errs"
)

// OperationId uniquely identifies one accepted or rejected operation
// request within the process.
type OperationId struct {
	id string
}

// NewOperationId allocates a fresh, process-unique OperationId.
func NewOperationId() OperationId {
	return OperationId{id: uuid.NewString()}
}

func (id OperationId) String() string { return id.id }

// IsZero reports whether id was never assigned.
func (id OperationId) IsZero() bool { return id.id == "" }

// TicketStatus is the outcome carried by an OperationTicket.
type TicketStatus string

const (
	Accepted         TicketStatus = "Accepted"
	FailedImmediately TicketStatus = "FailedImmediately"
)

// OperationTicket is the receipt returned by every synchronous entry
// point. A receipt with status Accepted carries no error code; a receipt
// with status FailedImmediately carries exactly one.
type OperationTicket struct {
	OperationId OperationId
	Status      TicketStatus
	Code        errs.Code
	CreatedAt   time.Time
}

// AcceptedTicket builds a receipt for an accepted request.
func AcceptedTicket(id OperationId) OperationTicket {
	return OperationTicket{OperationId: id, Status: Accepted, CreatedAt: time.Now()}
}

// FailedTicket builds a receipt for a request that never entered the
// asynchronous path.
func FailedTicket(id OperationId, code errs.Code) OperationTicket {
	return OperationTicket{OperationId: id, Status: FailedImmediately, Code: code, CreatedAt: time.Now()}
}

// Ok reports whether the ticket is Accepted.
func (t OperationTicket) Ok() bool { return t.Status == Accepted }
