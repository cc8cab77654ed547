package services

import (
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/disk"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"
)

// DiagnosticsReport is a point-in-time snapshot of the console host. Fields
// a collector could not read stay at their zero value; collection never
// fails outright.
type DiagnosticsReport struct {
	Hostname          string
	OS                string
	Platform          string
	PlatformVersion   string
	UptimeSeconds     uint64
	MemoryUsedPercent float64
	DiskUsedPercent   float64
	CollectedAt       time.Time
}

// VersionCheck compares a device-reported app version against the configured
// minimum.
type VersionCheck struct {
	Reported  string
	Minimum   string
	Supported bool
}

// DiagnosticsService collects host diagnostics and gates app versions.
type DiagnosticsService struct {
	minAppVersion *semver.Version
	minRaw        string
	logger        zerolog.Logger
}

// parseAppVersion parses a Teams Rooms app version. These are four-part
// (e.g. 4.17.42.0), which strict semver rejects, so the fourth segment is
// folded into build metadata and the first three segments drive the
// comparison.
func parseAppVersion(raw string) (*semver.Version, error) {
	parts := strings.SplitN(raw, ".", 4)
	if len(parts) == 4 {
		raw = strings.Join(parts[:3], ".") + "+" + parts[3]
	}
	return semver.NewVersion(raw)
}

// NewDiagnosticsService parses the configured minimum app version once.
func NewDiagnosticsService(minimumAppVersion string, logger zerolog.Logger) (*DiagnosticsService, error) {
	minimum, err := parseAppVersion(minimumAppVersion)
	if err != nil {
		return nil, err
	}
	return &DiagnosticsService{
		minAppVersion: minimum,
		minRaw:        minimumAppVersion,
		logger:        logger,
	}, nil
}

// Collect gathers host information; individual collector failures are logged
// and leave their fields empty.
func (s *DiagnosticsService) Collect() *DiagnosticsReport {
	report := &DiagnosticsReport{CollectedAt: time.Now()}

	info, err := host.Info()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read host information")
	} else {
		report.Hostname = info.Hostname
		report.OS = info.OS
		report.Platform = info.Platform
		report.PlatformVersion = info.PlatformVersion
		report.UptimeSeconds = info.Uptime
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read memory usage")
	} else {
		report.MemoryUsedPercent = vm.UsedPercent
	}

	usage, err := disk.Usage("/")
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read disk usage")
	} else {
		report.DiskUsedPercent = usage.UsedPercent
	}

	return report
}

// CheckAppVersion gates a device-reported Teams Rooms app version against
// the configured minimum.
func (s *DiagnosticsService) CheckAppVersion(reported string) (*VersionCheck, error) {
	version, err := parseAppVersion(reported)
	if err != nil {
		return nil, &ValidationError{Message: "invalid app version: " + reported}
	}

	return &VersionCheck{
		Reported:  reported,
		Minimum:   s.minRaw,
		Supported: !version.LessThan(s.minAppVersion),
	}, nil
}
