package portal

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-edoctorat/api"
)

const (
	formationsPath          = "/api/formations/"
	professeursPath         = "/api/get-professeurs/"
	sujetsPath              = "/api/sujets/"
	participantPath         = "/api/participant/"
	examinerPath            = "/api/examiner/"
	inscritsPath            = "/api/inscrits/"
	professeurCandidatsPath = "/api/get-professeur-candidats/"
	calendrierPath          = "/api/professeur/calendrier"
)

// Professeurs is the professor's area. Directors reach it too.
type Professeurs struct {
	api *api.Client
}

func (p *Professeurs) Formations(ctx context.Context) (*api.Page[FormationDoctorale], error) {
	return list[FormationDoctorale](ctx, p.api, formationsPath, api.Pagination{})
}

func (p *Professeurs) Professeurs(ctx context.Context) (*api.Page[Professeur], error) {
	return list[Professeur](ctx, p.api, professeursPath, api.Pagination{})
}

func (p *Professeurs) Sujets(ctx context.Context) (*api.Page[Sujet], error) {
	return list[Sujet](ctx, p.api, sujetsPath, api.Pagination{})
}

func (p *Professeurs) Sujet(ctx context.Context, id int64) (*Sujet, error) {
	return get[Sujet](ctx, p.api, itemPath(sujetsPath, id), nil)
}

func (p *Professeurs) CreateSujet(ctx context.Context, in SujetInput) (*Sujet, error) {
	return send[Sujet](ctx, p.api, http.MethodPost, sujetsPath, in)
}

func (p *Professeurs) UpdateSujet(ctx context.Context, id int64, in SujetInput) (*Sujet, error) {
	return send[Sujet](ctx, p.api, http.MethodPut, itemPath(sujetsPath, id), in)
}

func (p *Professeurs) DeleteSujet(ctx context.Context, id int64) error {
	return remove(ctx, p.api, itemPath(sujetsPath, id))
}

// Commissions lists the commissions the professor sits on.
func (p *Professeurs) Commissions(ctx context.Context) (*api.Page[Commission], error) {
	return list[Commission](ctx, p.api, participantPath, api.Pagination{})
}

func (p *Professeurs) Resultats(ctx context.Context, page api.Pagination) (*api.Page[Examiner], error) {
	return list[Examiner](ctx, p.api, examinerPath, page)
}

func (p *Professeurs) Inscrits(ctx context.Context, page api.Pagination) (*api.Page[Inscription], error) {
	return list[Inscription](ctx, p.api, inscritsPath, page)
}

// Candidats lists applications to the professor's subjects.
func (p *Professeurs) Candidats(ctx context.Context, page api.Pagination) (*api.Page[Postulation], error) {
	return list[Postulation](ctx, p.api, professeurCandidatsPath, page)
}

func (p *Professeurs) Calendrier(ctx context.Context) ([]Calendrier, error) {
	out, err := get[[]Calendrier](ctx, p.api, calendrierPath, nil)
	if err != nil {
		return nil, err
	}
	return *out, nil
}
