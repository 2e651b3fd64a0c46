package rbac

import (
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const (
	RoleSuperuser = "SUPERUSER"
	RoleAdmin     = "ADMIN"
	RoleEmployee  = "EMPLOYEE"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// policies maps role -> resource -> allowed actions.
var policies = []struct {
	role     string
	resource string
	action   string
}{
	{RoleEmployee, "leave", "read"},
	{RoleEmployee, "leave", "write"},
	{RoleEmployee, "timesheet", "read"},
	{RoleEmployee, "timesheet", "write"},
	{RoleEmployee, "document", "read"},
	{RoleEmployee, "balance", "read"},

	{RoleAdmin, "leave", "approve"},
	{RoleAdmin, "leave", "manage"},
	{RoleAdmin, "policy", "manage"},
	{RoleAdmin, "timesheet", "approve"},
	{RoleAdmin, "employee", "manage"},
	{RoleAdmin, "account", "manage"},
	{RoleAdmin, "payroll", "manage"},
	{RoleAdmin, "document", "manage"},
	{RoleAdmin, "company", "read"},

	{RoleSuperuser, "company", "manage"},
}

// roleInheritance: higher role inherits everything below it.
var roleInheritance = [][2]string{
	{RoleAdmin, RoleEmployee},
	{RoleSuperuser, RoleAdmin},
}

type EnforceRequest struct {
	Role     string
	Resource string
	Action   string
}

type Service interface {
	Enforce(req EnforceRequest) (bool, error)
}

type service struct {
	enforcer *casbin.Enforcer
	mu       sync.Mutex
}

func NewService() (Service, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	for _, p := range policies {
		if _, err := enforcer.AddPolicy(p.role, p.resource, p.action); err != nil {
			return nil, err
		}
	}
	for _, g := range roleInheritance {
		if _, err := enforcer.AddGroupingPolicy(g[0], g[1]); err != nil {
			return nil, err
		}
	}

	return &service{enforcer: enforcer}, nil
}

func (s *service) Enforce(req EnforceRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.enforcer.Enforce(req.Role, req.Resource, req.Action)
}
