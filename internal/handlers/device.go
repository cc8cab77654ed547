package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/roomops/mtr-console/internal/rules"
	"github.com/roomops/mtr-console/internal/services"
	"github.com/roomops/mtr-console/pkg/intune"
)

// DeviceProvisioner is the device-service surface the handlers consume.
type DeviceProvisioner interface {
	Check(ctx context.Context, serial string) (*services.DeviceCheck, error)
	Provision(ctx context.Context, serial, description string) (*services.ProvisionOutcome, error)
}

// DeviceHandler serves the device check and provision operations.
type DeviceHandler struct {
	devices DeviceProvisioner
	logger  zerolog.Logger
}

// NewDeviceHandler initializes a DeviceHandler.
func NewDeviceHandler(devices DeviceProvisioner, logger zerolog.Logger) *DeviceHandler {
	return &DeviceHandler{devices: devices, logger: logger}
}

type deviceCheckRequest struct {
	Serial string `json:"serial"`
}

type deviceCheckResponse struct {
	Response
	Valid   bool           `json:"valid"`
	Message string         `json:"message,omitempty"`
	Exists  bool           `json:"exists"`
	Device  *intune.Device `json:"device,omitempty"`
}

// Check validates a serial and reports whether it is already provisioned.
func (h *DeviceHandler) Check(c echo.Context) error {
	var req deviceCheckRequest
	if err := c.Bind(&req); err != nil {
		return respondBadRequest(c)
	}

	check, err := h.devices.Check(c.Request().Context(), req.Serial)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, deviceCheckResponse{
		Response: succeeded(),
		Valid:    check.Validation.Valid,
		Message:  check.Validation.Message,
		Exists:   check.Exists,
		Device:   check.Device,
	})
}

type deviceProvisionRequest struct {
	Serial      string `json:"serial"`
	Description string `json:"description"`
}

type deviceProvisionResponse struct {
	Response
	AlreadyExisted bool           `json:"alreadyExisted"`
	Device         *intune.Device `json:"device,omitempty"`
}

// Provision registers the serial with the device directory if absent.
func (h *DeviceHandler) Provision(c echo.Context) error {
	var req deviceProvisionRequest
	if err := c.Bind(&req); err != nil {
		return respondBadRequest(c)
	}

	outcome, err := h.devices.Provision(c.Request().Context(), req.Serial, req.Description)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, deviceProvisionResponse{
		Response:       succeeded(),
		AlreadyExisted: outcome.AlreadyExisted,
		Device:         outcome.Device,
	})
}

type macNormalizeRequest struct {
	Raw string `json:"raw"`
}

type macNormalizeResponse struct {
	Response
	Canonical string `json:"canonical"`
	Complete  bool   `json:"complete"`
}

// NormalizeMac canonicalizes MAC address input for the UI as the operator
// types. Pure local computation, no remote calls.
func (h *DeviceHandler) NormalizeMac(c echo.Context) error {
	var req macNormalizeRequest
	if err := c.Bind(&req); err != nil {
		return respondBadRequest(c)
	}

	canonical := rules.NormalizeMac(req.Raw)
	return c.JSON(http.StatusOK, macNormalizeResponse{
		Response:  succeeded(),
		Canonical: canonical,
		Complete:  rules.MacComplete(canonical),
	})
}
