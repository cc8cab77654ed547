package services_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/roomops/mtr-console/internal/rules"
	"github.com/roomops/mtr-console/internal/services"
	"github.com/roomops/mtr-console/pkg/entra"
)

func testBindings() []services.GroupBinding {
	return []services.GroupBinding{
		{Role: rules.RoleResourceAccount, ObjectID: "grp-resource"},
		{Role: rules.RoleRoomAccount, ObjectID: "grp-room"},
		{Role: rules.RoleProLicense, ObjectID: "grp-pro"},
	}
}

func resolvedAccount() *services.AccountResolution {
	return &services.AccountResolution{
		Exists:        true,
		MatchedDomain: rules.DomainOriginal,
		Account:       &entra.Account{ID: "obj-1", UserPrincipalName: "room@banenor.no"},
	}
}

// TestGroupService_Membership tests containment against the fetched snapshot.
func TestGroupService_Membership(t *testing.T) {
	directory := new(mockIdentityDirectory)
	directory.On("ListGroupMembers", mock.Anything, "grp-pro").Return([]string{"obj-1", "obj-2"}, nil)

	accounts := new(mockAccountResolver)
	accounts.On("Resolve", mock.Anything, "room@banenor.no").Return(resolvedAccount(), nil)

	s := services.NewGroupService(directory, accounts, testBindings(), zerolog.Nop())

	status, err := s.Membership(context.Background(), "pro-license", "room@banenor.no")

	assert.NoError(t, err)
	assert.True(t, status.IsMember)
	assert.Equal(t, rules.RoleProLicense, status.Role)
	assert.Equal(t, "obj-1", status.AccountID)
}

// TestGroupService_Membership_UnknownRole rejects before any remote call.
func TestGroupService_Membership_UnknownRole(t *testing.T) {
	directory := new(mockIdentityDirectory)
	accounts := new(mockAccountResolver)

	s := services.NewGroupService(directory, accounts, testBindings(), zerolog.Nop())

	_, err := s.Membership(context.Background(), "super-admins", "room@banenor.no")

	var validationErr *services.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	accounts.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
}

// TestGroupService_Apply_AddWhenAbsent performs the mutation.
func TestGroupService_Apply_AddWhenAbsent(t *testing.T) {
	directory := new(mockIdentityDirectory)
	directory.On("ListGroupMembers", mock.Anything, "grp-room").Return([]string{"obj-9"}, nil)
	directory.On("AddMember", mock.Anything, "grp-room", "obj-1").Return(nil)

	accounts := new(mockAccountResolver)
	accounts.On("Resolve", mock.Anything, "room@banenor.no").Return(resolvedAccount(), nil)

	s := services.NewGroupService(directory, accounts, testBindings(), zerolog.Nop())

	change, err := s.Apply(context.Background(), "room-account", "room@banenor.no", rules.ActionAdd)

	assert.NoError(t, err)
	assert.True(t, change.Performed)
	assert.True(t, change.IsMember)
	directory.AssertExpectations(t)
}

// TestGroupService_Apply_AddWhenMember is an idempotent no-op success.
func TestGroupService_Apply_AddWhenMember(t *testing.T) {
	directory := new(mockIdentityDirectory)
	directory.On("ListGroupMembers", mock.Anything, "grp-room").Return([]string{"obj-1"}, nil)

	accounts := new(mockAccountResolver)
	accounts.On("Resolve", mock.Anything, "room@banenor.no").Return(resolvedAccount(), nil)

	s := services.NewGroupService(directory, accounts, testBindings(), zerolog.Nop())

	change, err := s.Apply(context.Background(), "room-account", "room@banenor.no", rules.ActionAdd)

	assert.NoError(t, err)
	assert.False(t, change.Performed)
	assert.Equal(t, "already a member", change.Reason)
	assert.True(t, change.IsMember)
	directory.AssertNotCalled(t, "AddMember", mock.Anything, mock.Anything, mock.Anything)
}

// TestGroupService_Apply_RemoveWhenAbsent is the symmetric no-op.
func TestGroupService_Apply_RemoveWhenAbsent(t *testing.T) {
	directory := new(mockIdentityDirectory)
	directory.On("ListGroupMembers", mock.Anything, "grp-resource").Return(nil, nil)

	accounts := new(mockAccountResolver)
	accounts.On("Resolve", mock.Anything, "room@banenor.no").Return(resolvedAccount(), nil)

	s := services.NewGroupService(directory, accounts, testBindings(), zerolog.Nop())

	change, err := s.Apply(context.Background(), "resource-account", "room@banenor.no", rules.ActionRemove)

	assert.NoError(t, err)
	assert.False(t, change.Performed)
	assert.Equal(t, "not a member", change.Reason)
	assert.False(t, change.IsMember)
	directory.AssertNotCalled(t, "RemoveMember", mock.Anything, mock.Anything, mock.Anything)
}

// TestGroupService_Apply_RemoveWhenMember performs the removal.
func TestGroupService_Apply_RemoveWhenMember(t *testing.T) {
	directory := new(mockIdentityDirectory)
	directory.On("ListGroupMembers", mock.Anything, "grp-pro").Return([]string{"obj-1"}, nil)
	directory.On("RemoveMember", mock.Anything, "grp-pro", "obj-1").Return(nil)

	accounts := new(mockAccountResolver)
	accounts.On("Resolve", mock.Anything, "room@banenor.no").Return(resolvedAccount(), nil)

	s := services.NewGroupService(directory, accounts, testBindings(), zerolog.Nop())

	change, err := s.Apply(context.Background(), "pro-license", "room@banenor.no", rules.ActionRemove)

	assert.NoError(t, err)
	assert.True(t, change.Performed)
	assert.False(t, change.IsMember)
	directory.AssertExpectations(t)
}

// TestGroupService_AccountMissing maps a resolution miss to the typed error.
func TestGroupService_AccountMissing(t *testing.T) {
	directory := new(mockIdentityDirectory)
	accounts := new(mockAccountResolver)
	accounts.On("Resolve", mock.Anything, "ghost@banenor.no").Return(&services.AccountResolution{}, nil)

	s := services.NewGroupService(directory, accounts, testBindings(), zerolog.Nop())

	_, err := s.Membership(context.Background(), "pro-license", "ghost@banenor.no")

	assert.ErrorIs(t, err, services.ErrAccountNotFound)
	directory.AssertNotCalled(t, "ListGroupMembers", mock.Anything, mock.Anything)
}
