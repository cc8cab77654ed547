package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/roomops/mtr-console/internal/handlers"
	"github.com/roomops/mtr-console/internal/rules"
	"github.com/roomops/mtr-console/internal/services"
	"github.com/roomops/mtr-console/pkg/entra"
	"github.com/roomops/mtr-console/pkg/intune"
)

type mockDeviceProvisioner struct {
	mock.Mock
}

func (m *mockDeviceProvisioner) Check(ctx context.Context, serial string) (*services.DeviceCheck, error) {
	args := m.Called(ctx, serial)
	if check, ok := args.Get(0).(*services.DeviceCheck); ok {
		return check, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDeviceProvisioner) Provision(ctx context.Context, serial, description string) (*services.ProvisionOutcome, error) {
	args := m.Called(ctx, serial, description)
	if outcome, ok := args.Get(0).(*services.ProvisionOutcome); ok {
		return outcome, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAccountManager struct {
	mock.Mock
}

func (m *mockAccountManager) Resolve(ctx context.Context, upn string) (*services.AccountResolution, error) {
	args := m.Called(ctx, upn)
	if resolution, ok := args.Get(0).(*services.AccountResolution); ok {
		return resolution, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountManager) Create(ctx context.Context, displayName, upn string) (*services.AccountOutcome, error) {
	args := m.Called(ctx, displayName, upn)
	if outcome, ok := args.Get(0).(*services.AccountOutcome); ok {
		return outcome, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountManager) UpdateDisplayName(ctx context.Context, upn, displayName string) error {
	args := m.Called(ctx, upn, displayName)
	return args.Error(0)
}

func (m *mockAccountManager) ResetPassword(ctx context.Context, upn, newPassword string) (string, error) {
	args := m.Called(ctx, upn, newPassword)
	return args.String(0), args.Error(1)
}

func (m *mockAccountManager) VerifyPassword(ctx context.Context, upn string) (*services.PasswordVerification, error) {
	args := m.Called(ctx, upn)
	if verification, ok := args.Get(0).(*services.PasswordVerification); ok {
		return verification, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountManager) CheckUnlock(ctx context.Context, upn string) (*services.UnlockStatus, error) {
	args := m.Called(ctx, upn)
	if status, ok := args.Get(0).(*services.UnlockStatus); ok {
		return status, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockGroupManager struct {
	mock.Mock
}

func (m *mockGroupManager) Membership(ctx context.Context, roleKey, upn string) (*services.MembershipStatus, error) {
	args := m.Called(ctx, roleKey, upn)
	if status, ok := args.Get(0).(*services.MembershipStatus); ok {
		return status, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGroupManager) Apply(ctx context.Context, roleKey, upn string, action rules.MembershipAction) (*services.MembershipChange, error) {
	args := m.Called(ctx, roleKey, upn, action)
	if change, ok := args.Get(0).(*services.MembershipChange); ok {
		return change, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockStatusReporter struct {
	mock.Mock
}

func (m *mockStatusReporter) Snapshot(ctx context.Context, serial, upn string) *services.RoomStatus {
	args := m.Called(ctx, serial, upn)
	return args.Get(0).(*services.RoomStatus)
}

type mockDiagnosticsCollector struct {
	mock.Mock
}

func (m *mockDiagnosticsCollector) Collect() *services.DiagnosticsReport {
	args := m.Called()
	return args.Get(0).(*services.DiagnosticsReport)
}

func (m *mockDiagnosticsCollector) CheckAppVersion(reported string) (*services.VersionCheck, error) {
	args := m.Called(reported)
	if check, ok := args.Get(0).(*services.VersionCheck); ok {
		return check, args.Error(1)
	}
	return nil, args.Error(1)
}

func invoke(t *testing.T, handler echo.HandlerFunc, body string, params map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for name, value := range params {
		c.SetParamNames(name)
		c.SetParamValues(value)
	}

	assert.NoError(t, handler(c))

	var payload map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return rec, payload
}

func TestDeviceHandler_Check_InvalidSerial(t *testing.T) {
	devices := new(mockDeviceProvisioner)
	devices.On("Check", mock.Anything, "SHORT2").Return(&services.DeviceCheck{
		Validation: rules.Validation{Message: "too short: 6/12"},
	}, nil)
	handler := handlers.NewDeviceHandler(devices, zerolog.Nop())

	rec, payload := invoke(t, handler.Check, `{"serial":"SHORT2"}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, false, payload["valid"])
	assert.Equal(t, "too short: 6/12", payload["message"])
	assert.Equal(t, false, payload["exists"])
	devices.AssertExpectations(t)
}

func TestDeviceHandler_Check_Existing(t *testing.T) {
	devices := new(mockDeviceProvisioner)
	devices.On("Check", mock.Anything, "ABCDEFGHIJ12").Return(&services.DeviceCheck{
		Validation: rules.Validation{Valid: true},
		Exists:     true,
		Device:     &intune.Device{ID: "dev-1", ImportedDeviceIdentifier: "ABCDEFGHIJ12"},
	}, nil)
	handler := handlers.NewDeviceHandler(devices, zerolog.Nop())

	rec, payload := invoke(t, handler.Check, `{"serial":"ABCDEFGHIJ12"}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, payload["valid"])
	assert.Equal(t, true, payload["exists"])
	device := payload["device"].(map[string]any)
	assert.Equal(t, "dev-1", device["id"])
}

func TestDeviceHandler_Check_BadBody(t *testing.T) {
	handler := handlers.NewDeviceHandler(new(mockDeviceProvisioner), zerolog.Nop())

	rec, payload := invoke(t, handler.Check, `{"serial":`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "invalid request body", payload["error"])
}

func TestDeviceHandler_Provision_ServiceError(t *testing.T) {
	devices := new(mockDeviceProvisioner)
	devices.On("Provision", mock.Anything, "ABCDEFGHIJ13", "Room 1").
		Return(nil, &services.ValidationError{Message: "serial must end with 2"})
	handler := handlers.NewDeviceHandler(devices, zerolog.Nop())

	rec, payload := invoke(t, handler.Provision, `{"serial":"ABCDEFGHIJ13","description":"Room 1"}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "serial must end with 2", payload["error"])
}

func TestDeviceHandler_Provision_Success(t *testing.T) {
	devices := new(mockDeviceProvisioner)
	devices.On("Provision", mock.Anything, "ABCDEFGHIJ12", "Room 1").Return(&services.ProvisionOutcome{
		Device: &intune.Device{ID: "dev-1"},
	}, nil)
	handler := handlers.NewDeviceHandler(devices, zerolog.Nop())

	rec, payload := invoke(t, handler.Provision, `{"serial":"ABCDEFGHIJ12","description":"Room 1"}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, false, payload["alreadyExisted"])
}

func TestDeviceHandler_NormalizeMac(t *testing.T) {
	handler := handlers.NewDeviceHandler(new(mockDeviceProvisioner), zerolog.Nop())

	rec, payload := invoke(t, handler.NormalizeMac, `{"raw":"aa-bb-cc-dd-ee-ff"}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", payload["canonical"])
	assert.Equal(t, true, payload["complete"])
}

func TestAccountHandler_Check_Fallback(t *testing.T) {
	accounts := new(mockAccountManager)
	accounts.On("Resolve", mock.Anything, "room@contoso.com").Return(&services.AccountResolution{
		Exists:        true,
		MatchedDomain: rules.DomainTenantDefault,
		Account:       &entra.Account{ID: "acc-1", UserPrincipalName: "room@contoso.onmicrosoft.com"},
	}, nil)
	handler := handlers.NewAccountHandler(accounts, zerolog.Nop())

	rec, payload := invoke(t, handler.Check, `{"upn":"room@contoso.com"}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, payload["exists"])
	assert.Equal(t, "tenantDefault", payload["matchedDomain"])
}

func TestAccountHandler_Check_InvalidUPN(t *testing.T) {
	accounts := new(mockAccountManager)
	accounts.On("Resolve", mock.Anything, "not-a-upn").
		Return(nil, &services.ValidationError{Message: "invalid user principal name: not-a-upn"})
	handler := handlers.NewAccountHandler(accounts, zerolog.Nop())

	rec, payload := invoke(t, handler.Check, `{"upn":"not-a-upn"}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "invalid user principal name: not-a-upn", payload["error"])
}

func TestAccountHandler_Create_ReturnsInitialPassword(t *testing.T) {
	accounts := new(mockAccountManager)
	accounts.On("Create", mock.Anything, "Room 1", "room@contoso.com").Return(&services.AccountOutcome{
		Account:         &entra.Account{ID: "acc-1", UserPrincipalName: "room@contoso.com"},
		InitialPassword: "S3cret!pass0word",
	}, nil)
	handler := handlers.NewAccountHandler(accounts, zerolog.Nop())

	rec, payload := invoke(t, handler.Create, `{"upn":"room@contoso.com","displayName":"Room 1"}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, false, payload["alreadyExisted"])
	assert.Equal(t, "S3cret!pass0word", payload["initialPassword"])
}

func TestAccountHandler_Update(t *testing.T) {
	accounts := new(mockAccountManager)
	accounts.On("UpdateDisplayName", mock.Anything, "room@contoso.com", "Room 2").Return(nil)
	handler := handlers.NewAccountHandler(accounts, zerolog.Nop())

	rec, payload := invoke(t, handler.Update, `{"upn":"room@contoso.com","displayName":"Room 2"}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, payload["success"])
	accounts.AssertExpectations(t)
}

func TestAccountHandler_ResetPassword(t *testing.T) {
	accounts := new(mockAccountManager)
	accounts.On("ResetPassword", mock.Anything, "room@contoso.com", "").Return("Gener4ted!pass", nil)
	handler := handlers.NewAccountHandler(accounts, zerolog.Nop())

	rec, payload := invoke(t, handler.ResetPassword, `{"upn":"room@contoso.com"}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Gener4ted!pass", payload["password"])
}

func TestAccountHandler_VerifyPassword(t *testing.T) {
	accounts := new(mockAccountManager)
	accounts.On("VerifyPassword", mock.Anything, "room@contoso.com").Return(&services.PasswordVerification{
		Retrievable:   true,
		Enabled:       true,
		MatchedDomain: rules.DomainOriginal,
	}, nil)
	handler := handlers.NewAccountHandler(accounts, zerolog.Nop())

	rec, payload := invoke(t, handler.VerifyPassword, `{"upn":"room@contoso.com"}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, payload["retrievable"])
	assert.Equal(t, true, payload["enabled"])
	assert.Equal(t, "original", payload["matchedDomain"])
}

func TestAccountHandler_CheckUnlock(t *testing.T) {
	accounts := new(mockAccountManager)
	accounts.On("CheckUnlock", mock.Anything, "room@contoso.com").Return(&services.UnlockStatus{
		Enabled:       true,
		MatchedDomain: rules.DomainOriginal,
		UPN:           "room@contoso.com",
	}, nil)
	handler := handlers.NewAccountHandler(accounts, zerolog.Nop())

	rec, payload := invoke(t, handler.CheckUnlock, `{"upn":"room@contoso.com"}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, payload["enabled"])
	assert.Equal(t, "room@contoso.com", payload["upn"])
}

func TestGroupHandler_Check(t *testing.T) {
	groups := new(mockGroupManager)
	groups.On("Membership", mock.Anything, "room-account", "room@contoso.com").Return(&services.MembershipStatus{
		Role:          rules.GroupRole{Key: "room-account", DisplayName: "Room Accounts"},
		IsMember:      true,
		MatchedDomain: rules.DomainOriginal,
	}, nil)
	handler := handlers.NewGroupHandler(groups, zerolog.Nop())

	rec, payload := invoke(t, handler.Check, `{"upn":"room@contoso.com"}`, map[string]string{"role": "room-account"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "room-account", payload["role"])
	assert.Equal(t, true, payload["isMember"])
}

func TestGroupHandler_Add_AlreadyMember(t *testing.T) {
	groups := new(mockGroupManager)
	groups.On("Apply", mock.Anything, "pro-license", "room@contoso.com", rules.ActionAdd).
		Return(&services.MembershipChange{
			Role:     rules.GroupRole{Key: "pro-license", DisplayName: "Teams Rooms Pro"},
			Action:   rules.ActionAdd,
			Reason:   "already a member",
			IsMember: true,
		}, nil)
	handler := handlers.NewGroupHandler(groups, zerolog.Nop())

	rec, payload := invoke(t, handler.Add, `{"upn":"room@contoso.com"}`, map[string]string{"role": "pro-license"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, false, payload["performed"])
	assert.Equal(t, "already a member", payload["reason"])
	assert.Equal(t, true, payload["isMember"])
}

func TestGroupHandler_Remove_Performed(t *testing.T) {
	groups := new(mockGroupManager)
	groups.On("Apply", mock.Anything, "resource-account", "room@contoso.com", rules.ActionRemove).
		Return(&services.MembershipChange{
			Role:      rules.GroupRole{Key: "resource-account", DisplayName: "Resource Accounts"},
			Action:    rules.ActionRemove,
			Performed: true,
		}, nil)
	handler := handlers.NewGroupHandler(groups, zerolog.Nop())

	rec, payload := invoke(t, handler.Remove, `{"upn":"room@contoso.com"}`, map[string]string{"role": "resource-account"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, payload["performed"])
	assert.Equal(t, false, payload["isMember"])
}

func TestGroupHandler_UnknownRole(t *testing.T) {
	groups := new(mockGroupManager)
	groups.On("Membership", mock.Anything, "bogus", "room@contoso.com").
		Return(nil, &services.ValidationError{Message: "unknown group role: bogus"})
	handler := handlers.NewGroupHandler(groups, zerolog.Nop())

	rec, payload := invoke(t, handler.Check, `{"upn":"room@contoso.com"}`, map[string]string{"role": "bogus"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "unknown group role: bogus", payload["error"])
}

func TestStatusHandler_Snapshot_PartialFailure(t *testing.T) {
	status := new(mockStatusReporter)
	status.On("Snapshot", mock.Anything, "ABCDEFGHIJ12", "room@contoso.com").Return(&services.RoomStatus{
		Device: &services.DeviceCheck{
			Validation: rules.Validation{Valid: true},
			Exists:     true,
			Device:     &intune.Device{ID: "dev-1"},
		},
		AccountError: "account lookup: connection refused",
		Groups: map[string]*services.MembershipStatus{
			"room-account": {Role: rules.GroupRole{Key: "room-account"}, IsMember: true},
		},
		GroupErrors: map[string]string{
			"pro-license": "group members: connection refused",
		},
	})
	handler := handlers.NewStatusHandler(status, zerolog.Nop())

	rec, payload := invoke(t, handler.Snapshot, `{"serial":"ABCDEFGHIJ12","upn":"room@contoso.com"}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, payload["success"])
	device := payload["device"].(map[string]any)
	assert.Equal(t, true, device["exists"])
	assert.Equal(t, "account lookup: connection refused", payload["accountError"])
	groups := payload["groups"].(map[string]any)
	assert.Contains(t, groups, "room-account")
	groupErrors := payload["groupErrors"].(map[string]any)
	assert.Equal(t, "group members: connection refused", groupErrors["pro-license"])
}

func TestDiagnosticsHandler_Info(t *testing.T) {
	diagnostics := new(mockDiagnosticsCollector)
	diagnostics.On("Collect").Return(&services.DiagnosticsReport{
		Hostname:          "console-01",
		OS:                "windows",
		Platform:          "Microsoft Windows 11 IoT Enterprise",
		UptimeSeconds:     3600,
		MemoryUsedPercent: 41.5,
		CollectedAt:       time.Now(),
	})
	handler := handlers.NewDiagnosticsHandler(diagnostics, zerolog.Nop())

	rec, payload := invoke(t, handler.Info, ``, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, "console-01", payload["hostname"])
	assert.Equal(t, 41.5, payload["memoryUsedPercent"])
}

func TestDiagnosticsHandler_CheckAppVersion(t *testing.T) {
	diagnostics := new(mockDiagnosticsCollector)
	diagnostics.On("CheckAppVersion", "4.9.100.0").Return(&services.VersionCheck{
		Reported:  "4.9.100.0",
		Minimum:   "4.8.0.0",
		Supported: true,
	}, nil)
	handler := handlers.NewDiagnosticsHandler(diagnostics, zerolog.Nop())

	rec, payload := invoke(t, handler.CheckAppVersion, `{"version":"4.9.100.0"}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, payload["supported"])
	assert.Equal(t, "4.8.0.0", payload["minimum"])
}
