package model

import (
	"strings"

	"github.com/samber/lo"
)

// Role is the closed set of roles a token may carry.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleWorker Role = "worker"
	RoleSales  Role = "sales"
)

// Roles lists every known role.
var Roles = []Role{RoleAdmin, RoleWorker, RoleSales}

// ParseRole maps a role name to the enum. Unknown names report false.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, lo.Contains(Roles, r)
}

func (r Role) String() string { return string(r) }

// HasAnyRole reports whether r is a member of set.
func (r Role) HasAnyRole(set ...Role) bool { return lo.Contains(set, r) }

func (r Role) IsAdmin() bool { return r == RoleAdmin }

func (r Role) IsWorkerOrAdmin() bool { return r.HasAnyRole(RoleWorker, RoleAdmin) }

func (r Role) IsSalesOrAdmin() bool { return r.HasAnyRole(RoleSales, RoleAdmin) }
