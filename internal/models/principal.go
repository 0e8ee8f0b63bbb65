package models

// Principal is the authenticated identity attached to the current request:
// the user's id plus the role set resolved from the store. Core service
// operations take it as an explicit parameter; there is no ambient
// "current user" lookup anywhere below the HTTP layer.
type Principal struct {
	UserID   uint
	Username string
	Roles    []string
}

// Resolved reports whether the principal identifies an authenticated user.
func (p Principal) Resolved() bool {
	return p.UserID != 0
}

// IsAdmin reports whether the principal carries the admin authority.
func (p Principal) IsAdmin() bool {
	for _, r := range p.Roles {
		if r == RoleAdmin {
			return true
		}
	}
	return false
}

// PrincipalFromUser builds a request principal from a loaded user record.
func PrincipalFromUser(u *User) Principal {
	if u == nil {
		return Principal{}
	}
	return Principal{
		UserID:   u.ID,
		Username: u.Username,
		Roles:    u.RoleNames(),
	}
}
