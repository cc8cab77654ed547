package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/roomops/mtr-console/internal/services"
	"github.com/roomops/mtr-console/pkg/entra"
	"github.com/roomops/mtr-console/pkg/intune"
)

// mockDeviceDirectory is a testify mock of intune.DeviceDirectory.
type mockDeviceDirectory struct {
	mock.Mock
}

func (m *mockDeviceDirectory) FindBySerial(ctx context.Context, serial string) (*intune.Device, error) {
	args := m.Called(ctx, serial)
	var device *intune.Device
	if args.Get(0) != nil {
		device = args.Get(0).(*intune.Device)
	}
	return device, args.Error(1)
}

func (m *mockDeviceDirectory) ImportSerial(ctx context.Context, serial, description string) error {
	args := m.Called(ctx, serial, description)
	return args.Error(0)
}

// mockIdentityDirectory is a testify mock of entra.IdentityDirectory.
type mockIdentityDirectory struct {
	mock.Mock
}

func (m *mockIdentityDirectory) FindByUPN(ctx context.Context, upn string) (*entra.Account, error) {
	args := m.Called(ctx, upn)
	var account *entra.Account
	if args.Get(0) != nil {
		account = args.Get(0).(*entra.Account)
	}
	return account, args.Error(1)
}

func (m *mockIdentityDirectory) CreateAccount(ctx context.Context, req entra.CreateAccountRequest) (*entra.Account, error) {
	args := m.Called(ctx, req)
	var account *entra.Account
	if args.Get(0) != nil {
		account = args.Get(0).(*entra.Account)
	}
	return account, args.Error(1)
}

func (m *mockIdentityDirectory) UpdateDisplayName(ctx context.Context, upn, displayName string) error {
	args := m.Called(ctx, upn, displayName)
	return args.Error(0)
}

func (m *mockIdentityDirectory) ResetPassword(ctx context.Context, upn, password string) error {
	args := m.Called(ctx, upn, password)
	return args.Error(0)
}

func (m *mockIdentityDirectory) ListGroupMembers(ctx context.Context, groupID string) ([]string, error) {
	args := m.Called(ctx, groupID)
	var ids []string
	if args.Get(0) != nil {
		ids = args.Get(0).([]string)
	}
	return ids, args.Error(1)
}

func (m *mockIdentityDirectory) AddMember(ctx context.Context, groupID, objectID string) error {
	args := m.Called(ctx, groupID, objectID)
	return args.Error(0)
}

func (m *mockIdentityDirectory) RemoveMember(ctx context.Context, groupID, objectID string) error {
	args := m.Called(ctx, groupID, objectID)
	return args.Error(0)
}

// mockAccountResolver is a testify mock of services.AccountResolver.
type mockAccountResolver struct {
	mock.Mock
}

func (m *mockAccountResolver) Resolve(ctx context.Context, upn string) (*services.AccountResolution, error) {
	args := m.Called(ctx, upn)
	var resolution *services.AccountResolution
	if args.Get(0) != nil {
		resolution = args.Get(0).(*services.AccountResolution)
	}
	return resolution, args.Error(1)
}
