// Package access holds the authorization policy: who may act on which
// records. Every function here is pure; identities are resolved beforehand by
// the identity module and handed in as a Principal.
package access

import "anoa.com/boardinghouse/internal/entity"

// Principal is the authenticated caller together with its resolved role.
type Principal struct {
	UserID    uint
	Username  string
	Superuser bool
	Role      entity.Role
	// MemberID is the member record linked to the caller, if any.
	MemberID *uint
}

// DefaultRole is the role given to a caller whose identity does not exist yet.
func DefaultRole(superuser bool) entity.Role {
	if superuser {
		return entity.RoleAdmin
	}
	return entity.RoleMember
}

func IsAdmin(role entity.Role) bool {
	return role == entity.RoleAdmin
}

func IsStaff(role entity.Role) bool {
	return role == entity.RoleAdmin || role == entity.RoleStaff
}

func IsMember(role entity.Role) bool {
	return role == entity.RoleMember
}

// IsOwnerOrStaff allows staff and admins unconditionally. A member passes only
// when target hangs off a Member whose linked user is the caller; targets
// without a member reference are denied.
func IsOwnerOrStaff(p Principal, target any) bool {
	if IsStaff(p.Role) {
		return true
	}
	if !IsMember(p.Role) {
		return false
	}

	owned, ok := target.(entity.MemberOwned)
	if !ok {
		return false
	}
	return owned.OwnerMember().LinkedTo(p.UserID)
}

// ListScope restricts list queries over member-owned collections.
type ListScope struct {
	All      bool
	MemberID *uint
}

// Empty reports whether the scope can match no rows at all.
func (s ListScope) Empty() bool {
	return !s.All && s.MemberID == nil
}

// ScopeFor returns the rows a caller may list. A member with no linked member
// record sees nothing.
func ScopeFor(p Principal) ListScope {
	if IsStaff(p.Role) {
		return ListScope{All: true}
	}
	if IsMember(p.Role) && p.MemberID != nil {
		id := *p.MemberID
		return ListScope{MemberID: &id}
	}
	return ListScope{}
}

// CanTargetMember reports whether the caller may create or move a record onto
// the given member. Used for writes where the record does not exist yet.
func CanTargetMember(p Principal, member *entity.Member) bool {
	if IsStaff(p.Role) {
		return true
	}
	return IsMember(p.Role) && member.LinkedTo(p.UserID)
}
