package fakeportal

import (
	"net/http"

	"github.com/jrsteele09/go-edoctorat/internal/config"
	"github.com/jrsteele09/go-edoctorat/roles"
)

// Domain routes served besides the configurable auth endpoints.
const (
	RouteCandidatInfo      = "/api/candidat-info/"
	RouteMyLaboratory      = "/api/my-laboratory-id/"
	RouteLaboProfesseurs   = "/api/labo_professeur/"
	RouteLaboSujets        = "/api/sujetslabo/"
	RouteSujetCandidats    = "/api/get-sujet-candidat/{id}/"
	RouteCommission        = "/api/commission/"
	RouteCommissionDetails = "/api/commission-with-details/"
	RouteUserInfo          = "/api/get-user-info/{role}"
	RouteOIDCPrefix        = "/oidc"
)

func (p *Portal) initRoutes() {
	endpoints := config.Endpoints{}
	authed := func(mw ...func(http.HandlerFunc) http.HandlerFunc) []func(http.HandlerFunc) http.HandlerFunc {
		return p.APIMiddleware(append([]func(http.HandlerFunc) http.HandlerFunc{p.RequireAuth()}, mw...)...)
	}

	// AUTH
	p.RegisterRouteFunc("POST "+endpoints.GetLoginEndpoint(), ChainMiddleware(p.LoginHandler(), p.APIMiddleware()...))
	p.RegisterRouteFunc("POST "+endpoints.GetGoogleLoginEndpoint(), ChainMiddleware(p.GoogleLoginHandler(), p.APIMiddleware()...))
	p.RegisterRouteFunc("POST "+endpoints.GetRefreshEndpoint(), ChainMiddleware(p.RefreshHandler(), p.APIMiddleware()...))
	p.RegisterRouteFunc("POST "+endpoints.GetLogoutEndpoint(), ChainMiddleware(p.LogoutHandler(), authed()...))

	// SIGNUP AND RECOVERY
	p.RegisterRouteFunc("POST "+endpoints.GetRegisterCandidatEndpoint(), ChainMiddleware(p.RegisterHandler(), p.APIMiddleware()...))
	p.RegisterRouteFunc("POST "+endpoints.GetVerifyEmailEndpoint(), ChainMiddleware(p.VerifyEmailHandler(), p.APIMiddleware()...))
	p.RegisterRouteFunc("POST "+endpoints.GetResendVerificationEndpoint(), ChainMiddleware(p.ResendVerificationHandler(), p.APIMiddleware()...))
	p.RegisterRouteFunc("POST "+endpoints.GetRequestPasswordResetEndpoint(), ChainMiddleware(p.RequestPasswordResetHandler(), p.APIMiddleware()...))
	p.RegisterRouteFunc("PATCH "+endpoints.GetPerformPasswordResetEndpoint(), ChainMiddleware(p.PerformPasswordResetHandler(), p.APIMiddleware()...))

	// ACCOUNT
	p.RegisterRouteFunc("GET "+endpoints.GetCurrentUserEndpoint(), ChainMiddleware(p.MeHandler(), authed()...))
	p.RegisterRouteFunc("GET "+RouteUserInfo, ChainMiddleware(p.UserInfoHandler(), authed()...))
	p.RegisterRouteFunc("GET "+RouteCandidatInfo, ChainMiddleware(p.CandidatInfoHandler(), authed(p.RequireRole(roles.Candidat))...))

	// LABO
	labo := authed(p.RequireRole(roles.DirecteurLabo))
	p.RegisterRouteFunc("GET "+RouteMyLaboratory, ChainMiddleware(p.MyLaboratoryHandler(), labo...))
	p.RegisterRouteFunc("GET "+RouteLaboProfesseurs, ChainMiddleware(p.LaboProfesseursHandler(), labo...))
	p.RegisterRouteFunc("GET "+RouteLaboSujets, ChainMiddleware(p.LaboSujetsHandler(), labo...))
	p.RegisterRouteFunc("GET "+RouteSujetCandidats, ChainMiddleware(p.SujetCandidatsHandler(), labo...))
	p.RegisterRouteFunc("GET "+RouteCommission, ChainMiddleware(p.CommissionsHandler(), labo...))
	p.RegisterRouteFunc("POST "+RouteCommissionDetails, ChainMiddleware(p.CreateCommissionHandler(), labo...))

	// OIDC, when acting as the identity provider too
	if p.idp != nil {
		p.idp.prefix = RouteOIDCPrefix
		p.routes = append(p.routes, RouteOIDCPrefix+"/")
		p.mux.Handle(RouteOIDCPrefix+"/", http.StripPrefix(RouteOIDCPrefix, p.idp))
	}
}
