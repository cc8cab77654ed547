package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/roomops/mtr-console/internal/constants"
	"github.com/roomops/mtr-console/internal/rules"
	"github.com/roomops/mtr-console/pkg/entra"
	"github.com/roomops/mtr-console/pkg/httpclient"
)

// AccountResolution is the outcome of the two-domain account lookup.
// MatchedDomain tags which candidate form matched; it is empty when the
// account exists in neither domain.
type AccountResolution struct {
	Exists        bool
	MatchedDomain rules.MatchedDomain
	Account       *entra.Account
}

// AccountOutcome is the result of a create-if-absent account sequence.
type AccountOutcome struct {
	AlreadyExisted  bool
	Account         *entra.Account
	InitialPassword string
}

// PasswordVerification reports whether an account is retrievable and enabled
// after a password operation.
type PasswordVerification struct {
	Retrievable   bool
	Enabled       bool
	MatchedDomain rules.MatchedDomain
}

// UnlockStatus reports the sign-in state of an account.
type UnlockStatus struct {
	Enabled       bool
	MatchedDomain rules.MatchedDomain
	UPN           string
}

// AccountResolver is the resolution surface other services depend on.
type AccountResolver interface {
	Resolve(ctx context.Context, upn string) (*AccountResolution, error)
}

// AccountService sequences identity-directory calls around the UPN rules.
type AccountService struct {
	directory     entra.IdentityDirectory
	usageLocation string
	logger        zerolog.Logger
}

// NewAccountService initializes an AccountService with its directory client.
func NewAccountService(directory entra.IdentityDirectory, usageLocation string, logger zerolog.Logger) *AccountService {
	return &AccountService{
		directory:     directory,
		usageLocation: usageLocation,
		logger:        logger,
	}
}

// Resolve looks the account up under the original domain first and the
// tenant-default domain second. A transport error on either lookup is
// surfaced immediately; only a genuine not-found falls through to the next
// candidate, so an outage is never mistaken for absence.
func (s *AccountService) Resolve(ctx context.Context, upn string) (*AccountResolution, error) {
	candidates, err := rules.LookupOrder(upn)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	for _, candidate := range candidates {
		account, err := s.directory.FindByUPN(ctx, candidate.UPN)
		if err == nil {
			s.logger.Debug().Str("upn", candidate.UPN).Str("matched_domain", string(candidate.Domain)).
				Msg("Account resolved")
			return &AccountResolution{Exists: true, MatchedDomain: candidate.Domain, Account: account}, nil
		}
		if !errors.Is(err, httpclient.ErrNotFound) {
			return nil, fmt.Errorf("account lookup for %s: %w", candidate.UPN, err)
		}
	}

	return &AccountResolution{}, nil
}

// Create provisions a resource account unless one already exists under
// either domain form. The created account is re-read to confirm state; the
// initial password is returned so the operator can hand it to the device.
func (s *AccountService) Create(ctx context.Context, displayName, upn string) (*AccountOutcome, error) {
	resolution, err := s.Resolve(ctx, upn)
	if err != nil {
		return nil, err
	}
	if resolution.Exists {
		s.logger.Info().Str("upn", upn).Msg("Account already exists")
		return &AccountOutcome{AlreadyExisted: true, Account: resolution.Account}, nil
	}

	local, _, err := rules.SplitUPN(upn)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	password, err := GeneratePassword(constants.GeneratedPasswordLength)
	if err != nil {
		return nil, fmt.Errorf("generating initial password: %w", err)
	}

	if _, err := s.directory.CreateAccount(ctx, entra.CreateAccountRequest{
		DisplayName:   displayName,
		UPN:           upn,
		MailNickname:  local,
		Password:      password,
		UsageLocation: s.usageLocation,
	}); err != nil {
		return nil, fmt.Errorf("account create: %w", err)
	}

	created, err := s.directory.FindByUPN(ctx, upn)
	if err != nil {
		if errors.Is(err, httpclient.ErrNotFound) {
			return nil, ErrAccountNotVisible
		}
		return nil, fmt.Errorf("confirming account create: %w", err)
	}

	s.logger.Info().Str("upn", upn).Str("object_id", created.ID).Msg("Account created")
	return &AccountOutcome{Account: created, InitialPassword: password}, nil
}

// UpdateDisplayName patches the display name of an existing account, using
// whichever UPN form the account actually lives under.
func (s *AccountService) UpdateDisplayName(ctx context.Context, upn, displayName string) error {
	resolution, err := s.Resolve(ctx, upn)
	if err != nil {
		return err
	}
	if !resolution.Exists {
		return ErrAccountNotFound
	}

	if err := s.directory.UpdateDisplayName(ctx, resolution.Account.UserPrincipalName, displayName); err != nil {
		return fmt.Errorf("display name update: %w", err)
	}
	return nil
}

// ResetPassword sets a new password on an existing account. When newPassword
// is empty a compliant one is generated. The applied password is returned.
func (s *AccountService) ResetPassword(ctx context.Context, upn, newPassword string) (string, error) {
	resolution, err := s.Resolve(ctx, upn)
	if err != nil {
		return "", err
	}
	if !resolution.Exists {
		return "", ErrAccountNotFound
	}

	password := newPassword
	if password == "" {
		password, err = GeneratePassword(constants.GeneratedPasswordLength)
		if err != nil {
			return "", fmt.Errorf("generating password: %w", err)
		}
	}

	if err := s.directory.ResetPassword(ctx, resolution.Account.UserPrincipalName, password); err != nil {
		return "", fmt.Errorf("password reset: %w", err)
	}

	s.logger.Info().Str("upn", resolution.Account.UserPrincipalName).Msg("Password reset")
	return password, nil
}

// VerifyPassword re-reads the account after a password operation. The
// directory offers no daemon-usable credential check, so verification means
// the account is still retrievable and enabled for sign-in.
func (s *AccountService) VerifyPassword(ctx context.Context, upn string) (*PasswordVerification, error) {
	resolution, err := s.Resolve(ctx, upn)
	if err != nil {
		return nil, err
	}
	if !resolution.Exists {
		return &PasswordVerification{}, nil
	}

	return &PasswordVerification{
		Retrievable:   true,
		Enabled:       resolution.Account.AccountEnabled,
		MatchedDomain: resolution.MatchedDomain,
	}, nil
}

// CheckUnlock reports whether the account is enabled for sign-in.
func (s *AccountService) CheckUnlock(ctx context.Context, upn string) (*UnlockStatus, error) {
	resolution, err := s.Resolve(ctx, upn)
	if err != nil {
		return nil, err
	}
	if !resolution.Exists {
		return nil, ErrAccountNotFound
	}

	return &UnlockStatus{
		Enabled:       resolution.Account.AccountEnabled,
		MatchedDomain: resolution.MatchedDomain,
		UPN:           resolution.Account.UserPrincipalName,
	}, nil
}
