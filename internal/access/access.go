package access

import "strings"

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleHR       Role = "HR"
	RoleManager  Role = "MANAGER"
	RoleFinance  Role = "FINANCE"
	RoleSales    Role = "SALES"
	RoleEmployee Role = "EMPLOYEE"
)

// ParseRole normalises a role claim. Unknown or empty roles are treated as EMPLOYEE.
func ParseRole(s string) Role {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleHR, RoleManager, RoleFinance, RoleSales, RoleEmployee:
		return r
	default:
		return RoleEmployee
	}
}

type Kind string

const (
	KindLeaveType    Kind = "leave_type"
	KindLeavePolicy  Kind = "leave_policy"
	KindLeaveBalance Kind = "leave_balance"
	KindLeaveRequest Kind = "leave_request"
	KindNotification Kind = "notification"
)

type Action string

const (
	ActionRead    Action = "read"
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionApprove Action = "approve"
)

// Scope is the portion of a company's records an actor may see.
type Scope int

const (
	ScopeNone Scope = iota
	ScopeSelf
	ScopeTeam
	ScopeAll
)

func (s Scope) String() string {
	switch s {
	case ScopeSelf:
		return "self"
	case ScopeTeam:
		return "team"
	case ScopeAll:
		return "all"
	default:
		return "none"
	}
}

// Actor is the authenticated caller. It is passed explicitly to every service call.
type Actor struct {
	EmployeeID string
	CompanyID  string
	Role       Role
}

// Resource describes the record being checked. ManagerID is the owner's direct
// manager, empty when the owner has none.
type Resource struct {
	Kind      Kind
	OwnerID   string
	ManagerID string
}

type Policy interface {
	CanView(actor Actor, res Resource) bool
	CanMutate(actor Actor, action Action, res Resource) bool
	Scope(actor Actor, kind Kind) Scope
	// Allows reports whether the actor holds the action on kind at any reach.
	Allows(actor Actor, kind Kind, action Action) bool
}
