package services

import "errors"

// ValidationError is a local input failure. No remote call was attempted and
// the operator can correct the input and retry.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	// ErrAccountNotFound means neither the original nor the tenant-default
	// UPN form exists in the identity directory.
	ErrAccountNotFound = errors.New("account not found under the original or tenant-default domain")

	// ErrDeviceNotVisible means a device import succeeded but the follow-up
	// read came back empty, which points at eventual-consistency lag in the
	// device directory rather than outright failure.
	ErrDeviceNotVisible = errors.New("device was imported but is not yet visible in the directory")

	// ErrAccountNotVisible is the account-side counterpart of ErrDeviceNotVisible.
	ErrAccountNotVisible = errors.New("account was created but is not yet visible in the directory")
)
