// Package roles maps portal roles to their dashboards and resolves the
// primary role of a user holding several.
package roles

import "slices"

// Role is a portal role as carried by the access token.
type Role = string

const (
	DirecteurCED  Role = "directeur_ced"
	DirecteurLabo Role = "directeur_labo"
	DirecteurPole Role = "directeur_pole"
	Scolarite     Role = "scolarite"
	Professeur    Role = "professeur"
	Candidat      Role = "candidat"
)

// Dashboard routes.
const (
	LoginPath           = "/login"
	CEDDashboard        = "/ced-dashboard"
	LaboDashboard       = "/labo-dashboard"
	PoleDashboard       = "/pole-dashboard"
	ScolariteDashboard  = "/scolarite-dashboard"
	ProfesseurDashboard = "/professeur-dashboard"
	CandidatDashboard   = "/candidat-dashboard"
	DefaultDashboard    = CandidatDashboard
)

// Precedence lists roles from most to least privileged.
var Precedence = []Role{DirecteurCED, DirecteurLabo, DirecteurPole, Scolarite, Professeur, Candidat}

var dashboards = map[Role]string{
	DirecteurCED:  CEDDashboard,
	DirecteurLabo: LaboDashboard,
	DirecteurPole: PoleDashboard,
	Scolarite:     ScolariteDashboard,
	Professeur:    ProfesseurDashboard,
	Candidat:      CandidatDashboard,
}

// DashboardFor returns the landing route for role. Unknown and empty roles
// land on the candidate dashboard.
func DashboardFor(role Role) string {
	if path, ok := dashboards[role]; ok {
		return path
	}
	return DefaultDashboard
}

// Primary picks the highest-precedence known role from roles. When none is
// known the first entry is returned; an empty list yields "".
func Primary(roles []string) Role {
	for _, candidate := range Precedence {
		if slices.Contains(roles, candidate) {
			return candidate
		}
	}
	if len(roles) > 0 {
		return roles[0]
	}
	return ""
}

// Known reports whether role is one of the portal roles.
func Known(role Role) bool {
	_, ok := dashboards[role]
	return ok
}
