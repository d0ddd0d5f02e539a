package access_test

import (
	"testing"

	"go-webtrack/internal/access"

	"github.com/stretchr/testify/assert"
)

func newPolicy(t *testing.T) *access.RolePolicy {
	t.Helper()
	p, err := access.NewRolePolicy()
	assert.NoError(t, err)
	return p
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, access.RoleHR, access.ParseRole("hr"))
	assert.Equal(t, access.RoleManager, access.ParseRole(" MANAGER "))
	assert.Equal(t, access.RoleEmployee, access.ParseRole(""))
	assert.Equal(t, access.RoleEmployee, access.ParseRole("intern"))
}

func TestRolePolicy_Scope(t *testing.T) {
	p := newPolicy(t)

	tests := []struct {
		role access.Role
		kind access.Kind
		want access.Scope
	}{
		{access.RoleEmployee, access.KindLeaveRequest, access.ScopeSelf},
		{access.RoleSales, access.KindLeaveRequest, access.ScopeSelf},
		{access.RoleManager, access.KindLeaveRequest, access.ScopeTeam},
		{access.RoleHR, access.KindLeaveRequest, access.ScopeAll},
		{access.RoleAdmin, access.KindLeaveRequest, access.ScopeAll},
		{access.RoleEmployee, access.KindLeaveBalance, access.ScopeSelf},
		{access.RoleManager, access.KindLeaveBalance, access.ScopeSelf},
		{access.RoleHR, access.KindLeaveBalance, access.ScopeAll},
		{access.RoleEmployee, access.KindLeaveType, access.ScopeAll},
		{access.RoleEmployee, access.KindNotification, access.ScopeSelf},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, p.Scope(access.Actor{EmployeeID: "e1", Role: tt.role}, tt.kind))
		})
	}
}

func TestRolePolicy_CanView(t *testing.T) {
	p := newPolicy(t)
	req := access.Resource{Kind: access.KindLeaveRequest, OwnerID: "emp", ManagerID: "mgr"}

	assert.True(t, p.CanView(access.Actor{EmployeeID: "emp", Role: access.RoleEmployee}, req))
	assert.False(t, p.CanView(access.Actor{EmployeeID: "other", Role: access.RoleEmployee}, req))
	assert.True(t, p.CanView(access.Actor{EmployeeID: "mgr", Role: access.RoleManager}, req))
	assert.False(t, p.CanView(access.Actor{EmployeeID: "mgr2", Role: access.RoleManager}, req))
	assert.True(t, p.CanView(access.Actor{EmployeeID: "hr", Role: access.RoleHR}, req))
	assert.True(t, p.CanView(access.Actor{EmployeeID: "admin", Role: access.RoleAdmin}, req))
}

func TestRolePolicy_CanMutate(t *testing.T) {
	p := newPolicy(t)
	req := access.Resource{Kind: access.KindLeaveRequest, OwnerID: "emp", ManagerID: "mgr"}

	t.Run("approve", func(t *testing.T) {
		assert.False(t, p.CanMutate(access.Actor{EmployeeID: "emp", Role: access.RoleEmployee}, access.ActionApprove, req))
		assert.True(t, p.CanMutate(access.Actor{EmployeeID: "mgr", Role: access.RoleManager}, access.ActionApprove, req))
		assert.False(t, p.CanMutate(access.Actor{EmployeeID: "mgr2", Role: access.RoleManager}, access.ActionApprove, req))
		assert.True(t, p.CanMutate(access.Actor{EmployeeID: "hr", Role: access.RoleHR}, access.ActionApprove, req))
	})

	t.Run("self approval", func(t *testing.T) {
		own := access.Resource{Kind: access.KindLeaveRequest, OwnerID: "mgr", ManagerID: "boss"}
		assert.False(t, p.CanMutate(access.Actor{EmployeeID: "mgr", Role: access.RoleManager}, access.ActionApprove, own))

		hrOwn := access.Resource{Kind: access.KindLeaveRequest, OwnerID: "hr"}
		assert.True(t, p.CanMutate(access.Actor{EmployeeID: "hr", Role: access.RoleHR}, access.ActionApprove, hrOwn))
	})

	t.Run("create for someone else", func(t *testing.T) {
		assert.True(t, p.CanMutate(access.Actor{EmployeeID: "emp", Role: access.RoleEmployee}, access.ActionCreate, req))
		assert.False(t, p.CanMutate(access.Actor{EmployeeID: "other", Role: access.RoleEmployee}, access.ActionCreate, req))
		assert.True(t, p.CanMutate(access.Actor{EmployeeID: "hr", Role: access.RoleHR}, access.ActionCreate, req))
	})

	t.Run("catalog writes", func(t *testing.T) {
		lt := access.Resource{Kind: access.KindLeaveType}
		assert.False(t, p.CanMutate(access.Actor{EmployeeID: "hr", Role: access.RoleHR}, access.ActionCreate, lt))
		assert.True(t, p.CanMutate(access.Actor{EmployeeID: "admin", Role: access.RoleAdmin}, access.ActionDelete, lt))
	})
}

func TestRolePolicy_Allows(t *testing.T) {
	p := newPolicy(t)

	assert.True(t, p.Allows(access.Actor{Role: access.RoleAdmin}, access.KindLeaveBalance, access.ActionCreate))
	assert.False(t, p.Allows(access.Actor{Role: access.RoleHR}, access.KindLeaveBalance, access.ActionCreate))
	assert.False(t, p.Allows(access.Actor{Role: access.RoleFinance}, access.KindLeaveRequest, access.ActionApprove))
}

func TestNewRolePolicyWithGrants(t *testing.T) {
	p, err := access.NewRolePolicyWithGrants(
		[]access.Grant{{Role: access.RoleFinance, Kind: access.KindLeaveRequest, Action: access.ActionRead, Reach: "any"}},
		nil,
	)
	assert.NoError(t, err)

	assert.Equal(t, access.ScopeAll, p.Scope(access.Actor{Role: access.RoleFinance}, access.KindLeaveRequest))
	assert.Equal(t, access.ScopeNone, p.Scope(access.Actor{Role: access.RoleEmployee}, access.KindLeaveRequest))
}
