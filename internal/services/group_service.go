package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/roomops/mtr-console/internal/rules"
	"github.com/roomops/mtr-console/internal/utils"
	"github.com/roomops/mtr-console/pkg/entra"
)

// GroupBinding ties a role descriptor to the directory group backing it.
type GroupBinding struct {
	Role     rules.GroupRole
	ObjectID string
}

// MembershipStatus is the outcome of a membership query for one role.
type MembershipStatus struct {
	Role          rules.GroupRole
	IsMember      bool
	AccountID     string
	UPN           string
	MatchedDomain rules.MatchedDomain
}

// MembershipChange is the outcome of an add or remove request. Performed is
// false when the account was already in the target state; that is a success,
// and Reason says why nothing had to be done.
type MembershipChange struct {
	Role      rules.GroupRole
	Action    rules.MembershipAction
	Performed bool
	Reason    string
	IsMember  bool
}

// GroupService runs one parameterized membership workflow over the fixed
// group roles. Membership state is never cached: every query and every
// mutation re-fetches the group's full member list first.
type GroupService struct {
	directory entra.IdentityDirectory
	accounts  AccountResolver
	bindings  map[string]GroupBinding
	logger    zerolog.Logger
}

// NewGroupService initializes a GroupService over the given role bindings.
func NewGroupService(directory entra.IdentityDirectory, accounts AccountResolver, bindings []GroupBinding, logger zerolog.Logger) *GroupService {
	byKey := make(map[string]GroupBinding, len(bindings))
	for _, binding := range bindings {
		byKey[binding.Role.Key] = binding
	}
	return &GroupService{
		directory: directory,
		accounts:  accounts,
		bindings:  byKey,
		logger:    logger,
	}
}

// Membership resolves the account and tests containment against a fresh
// member-id snapshot of the role's group.
func (s *GroupService) Membership(ctx context.Context, roleKey, upn string) (*MembershipStatus, error) {
	binding, resolution, memberSet, err := s.snapshot(ctx, roleKey, upn)
	if err != nil {
		return nil, err
	}

	return &MembershipStatus{
		Role:          binding.Role,
		IsMember:      rules.IsMember(memberSet, resolution.Account.ID),
		AccountID:     resolution.Account.ID,
		UPN:           resolution.Account.UserPrincipalName,
		MatchedDomain: resolution.MatchedDomain,
	}, nil
}

// Apply performs an add or remove request idempotently: the current state is
// re-derived first and a request that is already satisfied succeeds as a
// no-op.
func (s *GroupService) Apply(ctx context.Context, roleKey, upn string, action rules.MembershipAction) (*MembershipChange, error) {
	binding, resolution, memberSet, err := s.snapshot(ctx, roleKey, upn)
	if err != nil {
		return nil, err
	}

	isMember := rules.IsMember(memberSet, resolution.Account.ID)
	plan := rules.ResolveAction(isMember, action)

	change := &MembershipChange{
		Role:      binding.Role,
		Action:    action,
		Performed: plan.Perform,
		Reason:    plan.Reason,
		IsMember:  isMember,
	}

	if !plan.Perform {
		s.logger.Debug().Str("role", roleKey).Str("upn", upn).Str("reason", plan.Reason).
			Msg("Membership request is already satisfied")
		return change, nil
	}

	switch action {
	case rules.ActionAdd:
		if err := s.directory.AddMember(ctx, binding.ObjectID, resolution.Account.ID); err != nil {
			return nil, fmt.Errorf("adding member to %s: %w", binding.Role.DisplayName, err)
		}
		change.IsMember = true
	case rules.ActionRemove:
		if err := s.directory.RemoveMember(ctx, binding.ObjectID, resolution.Account.ID); err != nil {
			return nil, fmt.Errorf("removing member from %s: %w", binding.Role.DisplayName, err)
		}
		change.IsMember = false
	}

	s.logger.Info().Str("role", roleKey).Str("upn", resolution.Account.UserPrincipalName).
		Str("action", string(action)).Msg("Group membership updated")
	return change, nil
}

// snapshot resolves the role, the account and a fresh member-id set.
func (s *GroupService) snapshot(ctx context.Context, roleKey, upn string) (GroupBinding, *AccountResolution, map[string]struct{}, error) {
	binding, ok := s.bindings[roleKey]
	if !ok {
		return GroupBinding{}, nil, nil, &ValidationError{Message: fmt.Sprintf("unknown group role %q", roleKey)}
	}

	resolution, err := s.accounts.Resolve(ctx, upn)
	if err != nil {
		return GroupBinding{}, nil, nil, err
	}
	if !resolution.Exists {
		return GroupBinding{}, nil, nil, ErrAccountNotFound
	}

	memberIDs, err := s.directory.ListGroupMembers(ctx, binding.ObjectID)
	if err != nil {
		return GroupBinding{}, nil, nil, fmt.Errorf("listing %s members: %w", binding.Role.DisplayName, err)
	}

	return binding, resolution, utils.SliceToSet(memberIDs), nil
}
