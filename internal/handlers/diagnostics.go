package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/roomops/mtr-console/internal/services"
)

// DiagnosticsCollector is the diagnostics-service surface the handler consumes.
type DiagnosticsCollector interface {
	Collect() *services.DiagnosticsReport
	CheckAppVersion(reported string) (*services.VersionCheck, error)
}

// DiagnosticsHandler serves the console-host diagnostics operations.
type DiagnosticsHandler struct {
	diagnostics DiagnosticsCollector
	logger      zerolog.Logger
}

// NewDiagnosticsHandler initializes a DiagnosticsHandler.
func NewDiagnosticsHandler(diagnostics DiagnosticsCollector, logger zerolog.Logger) *DiagnosticsHandler {
	return &DiagnosticsHandler{diagnostics: diagnostics, logger: logger}
}

type diagnosticsResponse struct {
	Response
	Hostname          string    `json:"hostname,omitempty"`
	OS                string    `json:"os,omitempty"`
	Platform          string    `json:"platform,omitempty"`
	PlatformVersion   string    `json:"platformVersion,omitempty"`
	UptimeSeconds     uint64    `json:"uptimeSeconds"`
	MemoryUsedPercent float64   `json:"memoryUsedPercent"`
	DiskUsedPercent   float64   `json:"diskUsedPercent"`
	CollectedAt       time.Time `json:"collectedAt"`
}

// Info returns a point-in-time snapshot of the console host.
func (h *DiagnosticsHandler) Info(c echo.Context) error {
	report := h.diagnostics.Collect()

	return c.JSON(http.StatusOK, diagnosticsResponse{
		Response:          succeeded(),
		Hostname:          report.Hostname,
		OS:                report.OS,
		Platform:          report.Platform,
		PlatformVersion:   report.PlatformVersion,
		UptimeSeconds:     report.UptimeSeconds,
		MemoryUsedPercent: report.MemoryUsedPercent,
		DiskUsedPercent:   report.DiskUsedPercent,
		CollectedAt:       report.CollectedAt,
	})
}

type appVersionRequest struct {
	Version string `json:"version"`
}

type appVersionResponse struct {
	Response
	Reported  string `json:"reported"`
	Minimum   string `json:"minimum"`
	Supported bool   `json:"supported"`
}

// CheckAppVersion gates a device-reported app version against the minimum.
func (h *DiagnosticsHandler) CheckAppVersion(c echo.Context) error {
	var req appVersionRequest
	if err := c.Bind(&req); err != nil {
		return respondBadRequest(c)
	}

	check, err := h.diagnostics.CheckAppVersion(req.Version)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, appVersionResponse{
		Response:  succeeded(),
		Reported:  check.Reported,
		Minimum:   check.Minimum,
		Supported: check.Supported,
	})
}
