package service

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"

	"github.com/iliyamo/shoe-workshop/internal/model"
)

// Resources guarded by the permission table.
const (
	ResInventory  = "inventory"
	ResStock      = "stock"
	ResSales      = "sales"
	ResPayments   = "payments"
	ResAnalytics  = "analytics"
	ResWorkerLogs = "worker_logs"
	ResRoles      = "roles"
	ResBatches    = "batches"
	ResWorkers    = "workers"
	ResDashboard  = "dashboard"
)

// Actions.
const (
	ActRead   = "read"
	ActWrite  = "write"
	ActDelete = "delete"
)

// rbacModel matches a role against (resource, action) policies; "*" in a
// policy matches anything.
const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

// Policies is the permission table: role, resource, action.
var Policies = [][3]string{
	{"admin", "*", "*"},

	{"worker", ResInventory, ActRead},
	{"worker", ResStock, ActWrite},
	{"worker", ResSales, ActRead},
	{"worker", ResWorkerLogs, ActRead},
	{"worker", ResWorkerLogs, ActWrite},
	{"worker", ResRoles, ActRead},
	{"worker", ResBatches, ActRead},
	{"worker", ResWorkers, ActRead},

	{"sales", ResSales, ActRead},
	{"sales", ResSales, ActWrite},
	{"sales", ResPayments, ActWrite},
	{"sales", ResAnalytics, ActRead},
	{"sales", ResDashboard, ActRead},
	{"sales", ResRoles, ActRead},
	{"sales", ResBatches, ActRead},
	{"sales", ResWorkers, ActRead},
}

// Authorizer answers permission questions from the casbin enforcer.
type Authorizer struct {
	enforcer *casbin.Enforcer
}

// NewAuthorizer builds the enforcer from the in-code model and Policies.
func NewAuthorizer() (*Authorizer, error) {
	m, err := casbinmodel.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load rbac model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize rbac enforcer: %w", err)
	}
	for _, p := range Policies {
		if _, err := e.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, fmt.Errorf("add policy %v: %w", p, err)
		}
	}
	return &Authorizer{enforcer: e}, nil
}

// Allowed reports whether role may perform action on resource.  Enforcer
// errors deny.
func (a *Authorizer) Allowed(role model.Role, resource, action string) bool {
	ok, err := a.enforcer.Enforce(role.String(), resource, action)
	return err == nil && ok
}

// Permissions lists the (resource, action) pairs granted to role.
func (a *Authorizer) Permissions(role model.Role) ([][]string, error) {
	perms, err := a.enforcer.GetPermissionsForUser(role.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get role permissions: %w", err)
	}
	return perms, nil
}
