package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/camguard/camguard"
	"github.com/camguard/camguard/errs"
	"github.com/camguard/camguard/host"
)

// Handler implements the HTTP routes over a Host. It owns no state of
// its own beyond the Host reference.
type Handler struct {
	host *host.Host
}

// HealthResponse is the /healthz payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ResourceStatusDTO is one resource's entry in StatusResponse.
type ResourceStatusDTO struct {
	ResourceId string `json:"resource_id"`
	State      string `json:"state"`
	Owned      bool   `json:"owned"`
}

// StatusResponse is the /status payload.
type StatusResponse struct {
	Resources []ResourceStatusDTO `json:"resources"`
	Timestamp time.Time           `json:"timestamp"`
}

// CreateSessionRequest is the POST /sessions payload. UserId is optional.
type CreateSessionRequest struct {
	UserId string `json:"user_id"`
}

// CreateSessionResponse is the POST /sessions response.
type CreateSessionResponse struct {
	SessionId  string `json:"session_id"`
	ResourceId string `json:"resource_id"`
}

// ReconfigureRequest is the body of POST /sessions/:id/operations/reconfigure.
type ReconfigureRequest struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Fps         int    `json:"fps"`
	PixelFormat string `json:"pixel_format"`
}

// OperationResponse is returned by every operation endpoint: the ticket
// the session façade produced, rendered over the wire.
type OperationResponse struct {
	OperationId string `json:"operation_id"`
	Status      string `json:"status"`
	Code        string `json:"code,omitempty"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Timestamp: time.Now()})
}

func (h *Handler) GetStatus(c *gin.Context) {
	resources, err := h.host.Status()
	if err != nil {
		writeCoreError(c, err)
		return
	}
	dtos := make([]ResourceStatusDTO, 0, len(resources))
	for _, r := range resources {
		dtos = append(dtos, ResourceStatusDTO{ResourceId: r.ResourceId, State: string(r.State), Owned: r.Owned})
	}
	c.JSON(http.StatusOK, StatusResponse{Resources: dtos, Timestamp: time.Now()})
}

func (h *Handler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	// Body is optional; a missing or empty body just means no preferred user id.
	_ = c.ShouldBindJSON(&req)

	sess, err := h.host.CreateSession(req.UserId, camguard.Callbacks{})
	if err != nil {
		writeCoreError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateSessionResponse{
		SessionId:  sess.ID(),
		ResourceId: sess.ResourceId().String(),
	})
}

func (h *Handler) CloseSession(c *gin.Context) {
	sess, ok := h.host.Session(c.Param("sessionId"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "session_not_found", Timestamp: time.Now()})
		return
	}
	h.host.CloseSession(sess)
	c.Status(http.StatusNoContent)
}

// Operation dispatches one of the fixed operation names onto the named
// session: start, stop, pause, resume, reconfigure, prepare, reset.
func (h *Handler) Operation(c *gin.Context) {
	sess, ok := h.host.Session(c.Param("sessionId"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "session_not_found", Timestamp: time.Now()})
		return
	}

	// Completion is observed asynchronously via callbacks, well after this
	// handler returns, so the operation must not inherit the request's
	// context: net/http cancels c.Request.Context() the instant ServeHTTP
	// returns, which would race every operation straight into CT0001.
	var ctx context.Context

	op := c.Param("op")
	var ticket camguard.OperationTicket

	switch op {
	case "start":
		ticket = sess.StartStreaming(ctx)
	case "stop":
		ticket = sess.Stop(ctx)
	case "pause":
		ticket = sess.Pause(ctx)
	case "resume":
		ticket = sess.Resume(ctx)
	case "prepare":
		ticket = sess.Prepare(ctx)
	case "reset":
		ticket = sess.Reset(ctx)
	case "reconfigure":
		var body ReconfigureRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: err.Error(), Timestamp: time.Now()})
			return
		}
		cfg, err := camguard.NewCameraConfiguration(body.Width, body.Height, body.Fps, camguard.PixelFormat(body.PixelFormat))
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_configuration", Message: err.Error(), Timestamp: time.Now()})
			return
		}
		ticket = sess.UpdateConfiguration(cfg, ctx)
	default:
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown_operation", Message: op, Timestamp: time.Now()})
		return
	}

	status := http.StatusAccepted
	if !ticket.Ok() {
		status = http.StatusConflict
	}
	resp := OperationResponse{
		OperationId: ticket.OperationId.String(),
		Status:      string(ticket.Status),
	}
	if !ticket.Code.IsZero() {
		resp.Code = ticket.Code.String()
	}
	c.JSON(status, resp)
}

func writeCoreError(c *gin.Context, err error) {
	code := errs.Of(err)
	status := http.StatusInternalServerError
	switch code {
	case errs.NotInitialized:
		status = http.StatusServiceUnavailable
	case errs.OwnershipConflict:
		status = http.StatusConflict
	}
	c.JSON(status, ErrorResponse{Error: code.String(), Message: err.Error(), Timestamp: time.Now()})
}
