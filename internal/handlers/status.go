package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/roomops/mtr-console/internal/services"
	"github.com/roomops/mtr-console/pkg/entra"
	"github.com/roomops/mtr-console/pkg/intune"
)

// StatusReporter is the status-service surface the handler consumes.
type StatusReporter interface {
	Snapshot(ctx context.Context, serial, upn string) *services.RoomStatus
}

// StatusHandler serves the aggregated room-status operation.
type StatusHandler struct {
	status StatusReporter
	logger zerolog.Logger
}

// NewStatusHandler initializes a StatusHandler.
func NewStatusHandler(status StatusReporter, logger zerolog.Logger) *StatusHandler {
	return &StatusHandler{status: status, logger: logger}
}

type roomStatusRequest struct {
	Serial string `json:"serial"`
	UPN    string `json:"upn"`
}

type deviceStatus struct {
	Valid   bool           `json:"valid"`
	Message string         `json:"message,omitempty"`
	Exists  bool           `json:"exists"`
	Device  *intune.Device `json:"device,omitempty"`
}

type accountStatus struct {
	Exists        bool           `json:"exists"`
	MatchedDomain string         `json:"matchedDomain,omitempty"`
	Account       *entra.Account `json:"account,omitempty"`
}

type groupStatus struct {
	IsMember bool `json:"isMember"`
}

type roomStatusResponse struct {
	Response
	Device       *deviceStatus          `json:"device,omitempty"`
	DeviceError  string                 `json:"deviceError,omitempty"`
	Account      *accountStatus         `json:"account,omitempty"`
	AccountError string                 `json:"accountError,omitempty"`
	Groups       map[string]groupStatus `json:"groups"`
	GroupErrors  map[string]string      `json:"groupErrors,omitempty"`
}

// Snapshot runs every per-room check concurrently and reports each leg
// independently.
func (h *StatusHandler) Snapshot(c echo.Context) error {
	var req roomStatusRequest
	if err := c.Bind(&req); err != nil {
		return respondBadRequest(c)
	}

	status := h.status.Snapshot(c.Request().Context(), req.Serial, req.UPN)

	response := roomStatusResponse{
		Response:     succeeded(),
		DeviceError:  status.DeviceError,
		AccountError: status.AccountError,
		Groups:       make(map[string]groupStatus, len(status.Groups)),
		GroupErrors:  status.GroupErrors,
	}
	if status.Device != nil {
		response.Device = &deviceStatus{
			Valid:   status.Device.Validation.Valid,
			Message: status.Device.Validation.Message,
			Exists:  status.Device.Exists,
			Device:  status.Device.Device,
		}
	}
	if status.Account != nil {
		response.Account = &accountStatus{
			Exists:        status.Account.Exists,
			MatchedDomain: string(status.Account.MatchedDomain),
			Account:       status.Account.Account,
		}
	}
	for role, membership := range status.Groups {
		response.Groups[role] = groupStatus{IsMember: membership.IsMember}
	}

	return c.JSON(http.StatusOK, response)
}
