package portal

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-edoctorat/api"
)

const (
	allCandidatsPath     = "/api/get-all-candidats/"
	allSujetsPath        = "/api/get-all-sujets/"
	allCommissionsPath   = "/api/get-all-commissions/"
	allInscriptionsPath  = "/api/get-all-inscriptions/"
	publierSujetsPath    = "/api/publier-sujets/"
	publierAttentePath   = "/api/publier-liste-attente/"
	publierPrincipalPath = "/api/publier-liste-principale/"
)

// Pole is the doctoral pole director's area.
type Pole struct {
	api *api.Client
}

func (p *Pole) Candidats(ctx context.Context, page api.Pagination) (*api.Page[Candidat], error) {
	return list[Candidat](ctx, p.api, allCandidatsPath, page)
}

func (p *Pole) Sujets(ctx context.Context, page api.Pagination) (*api.Page[Sujet], error) {
	return list[Sujet](ctx, p.api, allSujetsPath, page)
}

func (p *Pole) Commissions(ctx context.Context, page api.Pagination) (*api.Page[Commission], error) {
	return list[Commission](ctx, p.api, allCommissionsPath, page)
}

func (p *Pole) Inscriptions(ctx context.Context, page api.Pagination) (*api.Page[Inscription], error) {
	return list[Inscription](ctx, p.api, allInscriptionsPath, page)
}

func (p *Pole) PublierSujets(ctx context.Context) (*Message, error) {
	return send[Message](ctx, p.api, http.MethodPut, publierSujetsPath, struct{}{})
}

func (p *Pole) PublierListeAttente(ctx context.Context) (*Message, error) {
	return send[Message](ctx, p.api, http.MethodPost, publierAttentePath, struct{}{})
}

func (p *Pole) PublierListePrincipale(ctx context.Context) (*Message, error) {
	return send[Message](ctx, p.api, http.MethodPost, publierPrincipalPath, struct{}{})
}

func (p *Pole) Calendrier(ctx context.Context) ([]Calendrier, error) {
	out, err := get[[]Calendrier](ctx, p.api, calendrierPath, nil)
	if err != nil {
		return nil, err
	}
	return *out, nil
}
