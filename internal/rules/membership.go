package rules

import "fmt"

// MembershipAction is a requested group-membership mutation.
type MembershipAction string

const (
	ActionAdd    MembershipAction = "add"
	ActionRemove MembershipAction = "remove"
)

// ActionPlan says whether a requested mutation must actually be performed.
// A no-op plan carries the reason and is a success, not an error, which makes
// every add/remove request idempotent from the caller's perspective.
type ActionPlan struct {
	Perform bool
	Reason  string
}

// IsMember tests containment of a directory object id against a freshly
// fetched member-id snapshot. The snapshot is always re-fetched by the caller
// before acting; no membership state is cached anywhere.
func IsMember(memberIDs map[string]struct{}, targetID string) bool {
	_, ok := memberIDs[targetID]
	return ok
}

// ResolveAction decides the legal next step for a membership request given
// the current state.
func ResolveAction(isMember bool, action MembershipAction) ActionPlan {
	switch action {
	case ActionAdd:
		if isMember {
			return ActionPlan{Reason: "already a member"}
		}
		return ActionPlan{Perform: true}
	case ActionRemove:
		if !isMember {
			return ActionPlan{Reason: "not a member"}
		}
		return ActionPlan{Perform: true}
	default:
		return ActionPlan{Reason: fmt.Sprintf("unknown action %q", action)}
	}
}

// GroupRole describes one of the fixed target groups governing license and
// feature eligibility for a resource account. The same membership workflow is
// parameterized over these descriptors instead of being duplicated per group.
type GroupRole struct {
	Key         string
	DisplayName string
}

var (
	RoleResourceAccount = GroupRole{Key: "resource-account", DisplayName: "Resource Accounts"}
	RoleRoomAccount     = GroupRole{Key: "room-account", DisplayName: "Room Accounts"}
	RoleProLicense      = GroupRole{Key: "pro-license", DisplayName: "Teams Rooms Pro Licenses"}
)

// Roles lists the fixed group roles in display order.
func Roles() []GroupRole {
	return []GroupRole{RoleResourceAccount, RoleRoomAccount, RoleProLicense}
}

// RoleByKey resolves a role descriptor from its wire key.
func RoleByKey(key string) (GroupRole, bool) {
	for _, role := range Roles() {
		if role.Key == key {
			return role, true
		}
	}
	return GroupRole{}, false
}
