package enums

// MemberRole is a user's permission level inside a workshop.
type MemberRole string

const (
	MemberRoleOwner    MemberRole = "owner"
	MemberRoleAdmin    MemberRole = "admin"
	MemberRoleOperator MemberRole = "operator"
	MemberRoleViewer   MemberRole = "viewer"
)

var validMemberRoles = []MemberRole{
	MemberRoleOwner,
	MemberRoleAdmin,
	MemberRoleOperator,
	MemberRoleViewer,
}

// String implements fmt.Stringer.
func (m MemberRole) String() string {
	return string(m)
}

// IsValid reports whether the value is known.
func (m MemberRole) IsValid() bool {
	return contains(validMemberRoles, m)
}

// CanWrite reports whether the role may mutate workshop data.
func (m MemberRole) CanWrite() bool {
	return m == MemberRoleOwner || m == MemberRoleAdmin || m == MemberRoleOperator
}

// ParseMemberRole converts raw input into a MemberRole.
func ParseMemberRole(value string) (MemberRole, error) {
	return parse(validMemberRoles, value, "member role")
}
