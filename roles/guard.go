package roles

import (
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// rbacModel grants access to a route prefix by role, with role inheritance
// expressed as grouping policies.
const rbacModel = `
[request_definition]
r = sub, obj

[policy_definition]
p = sub, obj

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch(r.obj, p.obj)
`

// Guard decides which routes a set of roles may open. Directors inherit the
// professor's routes.
type Guard struct {
	enforcer *casbin.SyncedEnforcer
}

// Route prefixes protected by the guard, one per role area.
var routePolicies = [][2]string{
	{DirecteurCED, CEDDashboard + "*"},
	{DirecteurLabo, LaboDashboard + "*"},
	{DirecteurPole, PoleDashboard + "*"},
	{Scolarite, ScolariteDashboard + "*"},
	{Professeur, ProfesseurDashboard + "*"},
	{Candidat, CandidatDashboard + "*"},
}

var inheritance = [][2]string{
	{DirecteurCED, Professeur},
	{DirecteurLabo, Professeur},
	{DirecteurPole, Professeur},
}

func NewGuard() (*Guard, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rbac model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}
	for _, rule := range routePolicies {
		if _, err := enforcer.AddPolicy(rule[0], rule[1]); err != nil {
			return nil, fmt.Errorf("failed to add policy %v: %w", rule, err)
		}
	}
	for _, rule := range inheritance {
		if _, err := enforcer.AddGroupingPolicy(rule[0], rule[1]); err != nil {
			return nil, fmt.Errorf("failed to add grouping policy %v: %w", rule, err)
		}
	}
	return &Guard{enforcer: enforcer}, nil
}

// Allowed reports whether any of roles may open path.
func (g *Guard) Allowed(roles []string, path string) (bool, error) {
	path = strings.TrimSpace(path)
	for _, role := range roles {
		ok, err := g.enforcer.Enforce(role, path)
		if err != nil {
			return false, fmt.Errorf("enforcement failed: %w", err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// HasRole reports whether roles hold required, directly or through inheritance.
func (g *Guard) HasRole(roles []string, required Role) bool {
	for _, role := range roles {
		if role == required {
			return true
		}
		if ok, err := g.enforcer.HasRoleForUser(role, required); err == nil && ok {
			return true
		}
	}
	return false
}
