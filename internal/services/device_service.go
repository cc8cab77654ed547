package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/roomops/mtr-console/internal/rules"
	"github.com/roomops/mtr-console/pkg/httpclient"
	"github.com/roomops/mtr-console/pkg/intune"
)

// DeviceCheck is the outcome of a device lookup. An invalid serial short-
// circuits before any remote call, so Exists and Device are only meaningful
// when Validation.Valid holds.
type DeviceCheck struct {
	Validation rules.Validation
	Exists     bool
	Device     *intune.Device
}

// ProvisionOutcome is the result of a create-if-absent device sequence.
type ProvisionOutcome struct {
	AlreadyExisted bool
	Device         *intune.Device
}

// DeviceService sequences serial validation and device-directory calls for
// the check and provision operations.
type DeviceService struct {
	directory intune.DeviceDirectory
	logger    zerolog.Logger
}

// NewDeviceService initializes a DeviceService with its directory client.
func NewDeviceService(directory intune.DeviceDirectory, logger zerolog.Logger) *DeviceService {
	return &DeviceService{
		directory: directory,
		logger:    logger,
	}
}

// Check validates the serial and, when well-formed, looks it up in the
// device directory. Absence is a normal outcome, not an error.
func (s *DeviceService) Check(ctx context.Context, serial string) (*DeviceCheck, error) {
	validation := rules.ValidateSerial(serial)
	if !validation.Valid {
		return &DeviceCheck{Validation: validation}, nil
	}

	device, err := s.directory.FindBySerial(ctx, serial)
	if err != nil {
		if errors.Is(err, httpclient.ErrNotFound) {
			return &DeviceCheck{Validation: validation}, nil
		}
		return nil, fmt.Errorf("device lookup: %w", err)
	}

	return &DeviceCheck{Validation: validation, Exists: true, Device: device}, nil
}

// Provision registers the serial with the device directory unless it is
// already present. A creation step is only invoked after an existence check
// reported absence, and the created record is re-read rather than trusting
// the import response.
func (s *DeviceService) Provision(ctx context.Context, serial, description string) (*ProvisionOutcome, error) {
	validation := rules.ValidateSerial(serial)
	if !validation.Valid {
		return nil, &ValidationError{Message: validation.Message}
	}

	existing, err := s.directory.FindBySerial(ctx, serial)
	if err == nil {
		s.logger.Info().Str("serial", serial).Msg("Device already provisioned")
		return &ProvisionOutcome{AlreadyExisted: true, Device: existing}, nil
	}
	if !errors.Is(err, httpclient.ErrNotFound) {
		return nil, fmt.Errorf("device lookup: %w", err)
	}

	if err := s.directory.ImportSerial(ctx, serial, description); err != nil {
		return nil, fmt.Errorf("device import: %w", err)
	}

	created, err := s.directory.FindBySerial(ctx, serial)
	if err != nil {
		if errors.Is(err, httpclient.ErrNotFound) {
			return nil, ErrDeviceNotVisible
		}
		return nil, fmt.Errorf("confirming device import: %w", err)
	}

	s.logger.Info().Str("serial", serial).Str("device_id", created.ID).Msg("Device provisioned")
	return &ProvisionOutcome{Device: created}, nil
}
