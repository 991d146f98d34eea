package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/shoe-workshop/internal/model"
)

func TestAuthorizerTable(t *testing.T) {
	a, err := NewAuthorizer()
	require.NoError(t, err)

	cases := []struct {
		role     model.Role
		resource string
		action   string
		want     bool
	}{
		{model.RoleAdmin, ResSales, ActDelete, true},
		{model.RoleAdmin, ResInventory, ActWrite, true},
		{model.RoleWorker, ResSales, ActDelete, false},
		{model.RoleWorker, ResSales, ActRead, true},
		{model.RoleWorker, ResSales, ActWrite, false},
		{model.RoleWorker, ResInventory, ActRead, true},
		{model.RoleWorker, ResInventory, ActWrite, false},
		{model.RoleWorker, ResStock, ActWrite, true},
		{model.RoleWorker, ResWorkerLogs, ActWrite, true},
		{model.RoleWorker, ResAnalytics, ActRead, false},
		{model.RoleSales, ResSales, ActWrite, true},
		{model.RoleSales, ResSales, ActDelete, false},
		{model.RoleSales, ResPayments, ActWrite, true},
		{model.RoleSales, ResAnalytics, ActRead, true},
		{model.RoleSales, ResInventory, ActWrite, false},
		{model.RoleSales, ResWorkerLogs, ActRead, false},
		{model.RoleSales, ResRoles, ActWrite, false},
		{model.Role("janitor"), ResSales, ActRead, false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, a.Allowed(tc.role, tc.resource, tc.action), "%s %s %s", tc.role, tc.resource, tc.action)
	}
}

func TestAuthorizerPermissions(t *testing.T) {
	a, err := NewAuthorizer()
	require.NoError(t, err)

	perms, err := a.Permissions(model.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, [][]string{{"admin", "*", "*"}}, perms)
}
