package entity

// Role is the coarse access tier of a user account.
type Role string

const (
	RoleFree    Role = "free"
	RolePremium Role = "premium"
	RoleAdmin   Role = "admin"
)

// NormalizeRole maps a stored role value onto the closed Role set. Legacy
// user documents may lack the role field entirely; everything unknown,
// including the empty string, is the free tier. This runs at the data-access
// boundary so "role absent" never escapes the repository layer.
func NormalizeRole(s string) Role {
	switch Role(s) {
	case RolePremium:
		return RolePremium
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleFree
	}
}

// CanAccessPremium reports whether the role may read premium-visibility posts.
func (r Role) CanAccessPremium() bool {
	return r == RolePremium || r == RoleAdmin
}
