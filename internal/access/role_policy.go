package access

import (
	_ "embed"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"go.uber.org/zap"
)

//go:embed model.conf
var modelText string

type reach string

const (
	reachAny  reach = "any"
	reachTeam reach = "team"
	reachSelf reach = "self"
)

// Grant gives a role an action on a kind up to a reach.
type Grant struct {
	Role   Role
	Kind   Kind
	Action Action
	Reach  string
}

// Inherit makes Role hold every grant of Parent.
type Inherit struct {
	Role   Role
	Parent Role
}

func DefaultGrants() []Grant {
	var grants []Grant
	add := func(role Role, kind Kind, r reach, actions ...Action) {
		for _, a := range actions {
			grants = append(grants, Grant{Role: role, Kind: kind, Action: a, Reach: string(r)})
		}
	}

	for _, kind := range []Kind{KindLeaveType, KindLeavePolicy} {
		add(RoleEmployee, kind, reachAny, ActionRead)
		add(RoleAdmin, kind, reachAny, ActionCreate, ActionUpdate, ActionDelete)
	}

	add(RoleEmployee, KindLeaveBalance, reachSelf, ActionRead)
	add(RoleHR, KindLeaveBalance, reachAny, ActionRead)
	add(RoleAdmin, KindLeaveBalance, reachAny, ActionCreate, ActionUpdate, ActionDelete)

	add(RoleEmployee, KindLeaveRequest, reachSelf, ActionRead, ActionCreate, ActionUpdate)
	add(RoleManager, KindLeaveRequest, reachTeam, ActionRead, ActionApprove)
	add(RoleHR, KindLeaveRequest, reachAny, ActionRead, ActionCreate, ActionUpdate, ActionApprove)

	add(RoleEmployee, KindNotification, reachSelf, ActionRead, ActionUpdate)

	return grants
}

func DefaultInheritance() []Inherit {
	return []Inherit{
		{Role: RoleAdmin, Parent: RoleHR},
		{Role: RoleHR, Parent: RoleEmployee},
		{Role: RoleManager, Parent: RoleEmployee},
		{Role: RoleFinance, Parent: RoleEmployee},
		{Role: RoleSales, Parent: RoleEmployee},
	}
}

// RolePolicy answers access questions from role grants held in a casbin enforcer.
type RolePolicy struct {
	enforcer *casbin.Enforcer
	logger   *zap.Logger
}

func NewRolePolicy(logger ...*zap.Logger) (*RolePolicy, error) {
	return NewRolePolicyWithGrants(DefaultGrants(), DefaultInheritance(), logger...)
}

func NewRolePolicyWithGrants(grants []Grant, inherits []Inherit, logger ...*zap.Logger) (*RolePolicy, error) {
	l := zap.L().Named("access.policy")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("access.policy")
	}

	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("load access model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}

	rules := make([][]string, 0, len(grants))
	for _, g := range grants {
		rules = append(rules, []string{string(g.Role), string(g.Kind), string(g.Action), g.Reach})
	}
	if len(rules) > 0 {
		if _, err := e.AddPolicies(rules); err != nil {
			return nil, fmt.Errorf("add grants: %w", err)
		}
	}

	groups := make([][]string, 0, len(inherits))
	for _, in := range inherits {
		groups = append(groups, []string{string(in.Role), string(in.Parent)})
	}
	if len(groups) > 0 {
		if _, err := e.AddGroupingPolicies(groups); err != nil {
			return nil, fmt.Errorf("add inheritance: %w", err)
		}
	}

	return &RolePolicy{enforcer: e, logger: l}, nil
}

func (p *RolePolicy) reachFor(role Role, kind Kind, action Action) (reach, bool) {
	for _, r := range []reach{reachAny, reachTeam, reachSelf} {
		ok, err := p.enforcer.Enforce(string(role), string(kind), string(action), string(r))
		if err != nil {
			p.logger.Error("enforce failed",
				zap.String("role", string(role)),
				zap.String("kind", string(kind)),
				zap.String("action", string(action)),
				zap.Error(err),
			)
			return "", false
		}
		if ok {
			return r, true
		}
	}
	return "", false
}

func (p *RolePolicy) Scope(actor Actor, kind Kind) Scope {
	r, ok := p.reachFor(actor.Role, kind, ActionRead)
	if !ok {
		return ScopeNone
	}
	switch r {
	case reachAny:
		return ScopeAll
	case reachTeam:
		return ScopeTeam
	default:
		return ScopeSelf
	}
}

func (p *RolePolicy) Allows(actor Actor, kind Kind, action Action) bool {
	_, ok := p.reachFor(actor.Role, kind, action)
	return ok
}

func (p *RolePolicy) CanView(actor Actor, res Resource) bool {
	return p.check(actor, ActionRead, res)
}

func (p *RolePolicy) CanMutate(actor Actor, action Action, res Resource) bool {
	return p.check(actor, action, res)
}

func (p *RolePolicy) check(actor Actor, action Action, res Resource) bool {
	r, ok := p.reachFor(actor.Role, res.Kind, action)
	if !ok {
		return false
	}

	isOwner := actor.EmployeeID != "" && res.OwnerID == actor.EmployeeID
	isManager := actor.EmployeeID != "" && res.ManagerID == actor.EmployeeID

	// approving your own request needs company-wide reach
	if action == ActionApprove && isOwner && r != reachAny {
		return false
	}

	switch r {
	case reachAny:
		return true
	case reachTeam:
		if action == ActionApprove {
			return isManager
		}
		return isOwner || isManager
	default:
		return isOwner
	}
}
