package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/roomops/mtr-console/internal/services"
	"github.com/roomops/mtr-console/pkg/entra"
)

// AccountManager is the account-service surface the handlers consume.
type AccountManager interface {
	Resolve(ctx context.Context, upn string) (*services.AccountResolution, error)
	Create(ctx context.Context, displayName, upn string) (*services.AccountOutcome, error)
	UpdateDisplayName(ctx context.Context, upn, displayName string) error
	ResetPassword(ctx context.Context, upn, newPassword string) (string, error)
	VerifyPassword(ctx context.Context, upn string) (*services.PasswordVerification, error)
	CheckUnlock(ctx context.Context, upn string) (*services.UnlockStatus, error)
}

// AccountHandler serves the resource-account operations.
type AccountHandler struct {
	accounts AccountManager
	logger   zerolog.Logger
}

// NewAccountHandler initializes an AccountHandler.
func NewAccountHandler(accounts AccountManager, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, logger: logger}
}

type accountRequest struct {
	UPN         string `json:"upn"`
	DisplayName string `json:"displayName,omitempty"`
	NewPassword string `json:"newPassword,omitempty"`
}

type accountCheckResponse struct {
	Response
	Exists        bool           `json:"exists"`
	MatchedDomain string         `json:"matchedDomain,omitempty"`
	Account       *entra.Account `json:"account,omitempty"`
}

// Check resolves a UPN under the original and tenant-default domains.
func (h *AccountHandler) Check(c echo.Context) error {
	var req accountRequest
	if err := c.Bind(&req); err != nil {
		return respondBadRequest(c)
	}

	resolution, err := h.accounts.Resolve(c.Request().Context(), req.UPN)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, accountCheckResponse{
		Response:      succeeded(),
		Exists:        resolution.Exists,
		MatchedDomain: string(resolution.MatchedDomain),
		Account:       resolution.Account,
	})
}

type accountCreateResponse struct {
	Response
	AlreadyExisted  bool           `json:"alreadyExisted"`
	Account         *entra.Account `json:"account,omitempty"`
	InitialPassword string         `json:"initialPassword,omitempty"`
}

// Create provisions the resource account unless it already exists.
func (h *AccountHandler) Create(c echo.Context) error {
	var req accountRequest
	if err := c.Bind(&req); err != nil {
		return respondBadRequest(c)
	}

	outcome, err := h.accounts.Create(c.Request().Context(), req.DisplayName, req.UPN)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, accountCreateResponse{
		Response:        succeeded(),
		AlreadyExisted:  outcome.AlreadyExisted,
		Account:         outcome.Account,
		InitialPassword: outcome.InitialPassword,
	})
}

// Update patches the account's display name.
func (h *AccountHandler) Update(c echo.Context) error {
	var req accountRequest
	if err := c.Bind(&req); err != nil {
		return respondBadRequest(c)
	}

	if err := h.accounts.UpdateDisplayName(c.Request().Context(), req.UPN, req.DisplayName); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, succeeded())
}

type resetPasswordResponse struct {
	Response
	Password string `json:"password,omitempty"`
}

// ResetPassword sets a new (possibly generated) password and returns it so
// the operator can configure the device.
func (h *AccountHandler) ResetPassword(c echo.Context) error {
	var req accountRequest
	if err := c.Bind(&req); err != nil {
		return respondBadRequest(c)
	}

	password, err := h.accounts.ResetPassword(c.Request().Context(), req.UPN, req.NewPassword)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, resetPasswordResponse{
		Response: succeeded(),
		Password: password,
	})
}

type verifyPasswordResponse struct {
	Response
	Retrievable   bool   `json:"retrievable"`
	Enabled       bool   `json:"enabled"`
	MatchedDomain string `json:"matchedDomain,omitempty"`
}

// VerifyPassword re-reads the account after a password operation.
func (h *AccountHandler) VerifyPassword(c echo.Context) error {
	var req accountRequest
	if err := c.Bind(&req); err != nil {
		return respondBadRequest(c)
	}

	verification, err := h.accounts.VerifyPassword(c.Request().Context(), req.UPN)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, verifyPasswordResponse{
		Response:      succeeded(),
		Retrievable:   verification.Retrievable,
		Enabled:       verification.Enabled,
		MatchedDomain: string(verification.MatchedDomain),
	})
}

type unlockCheckResponse struct {
	Response
	Enabled       bool   `json:"enabled"`
	MatchedDomain string `json:"matchedDomain,omitempty"`
	UPN           string `json:"upn,omitempty"`
}

// CheckUnlock reports whether the account is enabled for sign-in.
func (h *AccountHandler) CheckUnlock(c echo.Context) error {
	var req accountRequest
	if err := c.Bind(&req); err != nil {
		return respondBadRequest(c)
	}

	status, err := h.accounts.CheckUnlock(c.Request().Context(), req.UPN)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, unlockCheckResponse{
		Response:      succeeded(),
		Enabled:       status.Enabled,
		MatchedDomain: string(status.MatchedDomain),
		UPN:           status.UPN,
	})
}
