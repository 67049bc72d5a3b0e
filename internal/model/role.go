package model

// Role is the account kind. Authorization is decided by the capability table
// in the policy package, never by comparing role strings in handlers.
type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleGudang     Role = "gudang"
	RoleKasir      Role = "kasir"
)

var AllRoles = []Role{RoleSuperadmin, RoleAdmin, RoleGudang, RoleKasir}

func ParseRole(s string) (Role, bool) {
	for _, r := range AllRoles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// IsStaff reports whether the role belongs to shop floor staff supervised by an admin.
func (r Role) IsStaff() bool {
	return r == RoleGudang || r == RoleKasir
}

func (r Role) Label() string {
	switch r {
	case RoleSuperadmin:
		return "Super Admin"
	case RoleAdmin:
		return "Admin Toko"
	case RoleGudang:
		return "Staff Gudang"
	case RoleKasir:
		return "Kasir"
	}
	return string(r)
}
