package portal

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-edoctorat/api"
)

const (
	candidatInfoPath      = "/api/candidat-info/"
	candidatParcoursPath  = "/api/candidat-parcours/"
	candidatPostulesPath  = "/api/candidat-postules/"
	baseConfigPath        = "/api/get-base-config/"
	notificationsPath     = "/api/get-candidat-notifications"
	publishedSubjectsPath = "/api/get-published-subjects"
)

// Candidats is the candidate's own area.
type Candidats struct {
	api *api.Client
}

func (c *Candidats) Info(ctx context.Context) (*Candidat, error) {
	return get[Candidat](ctx, c.api, candidatInfoPath, nil)
}

func (c *Candidats) UpdateInfo(ctx context.Context, info Candidat) (*Candidat, error) {
	return send[Candidat](ctx, c.api, http.MethodPut, candidatInfoPath, info)
}

func (c *Candidats) Parcours(ctx context.Context) (*api.Page[Diplome], error) {
	return list[Diplome](ctx, c.api, candidatParcoursPath, api.Pagination{})
}

// AddDiplome answers with the candidate's updated parcours.
func (c *Candidats) AddDiplome(ctx context.Context, d Diplome) (*api.Page[Diplome], error) {
	return send[api.Page[Diplome]](ctx, c.api, http.MethodPost, candidatParcoursPath, d)
}

func (c *Candidats) UpdateDiplome(ctx context.Context, id int64, d Diplome) (*Diplome, error) {
	return send[Diplome](ctx, c.api, http.MethodPatch, itemPath(candidatParcoursPath, id), d)
}

func (c *Candidats) DeleteDiplome(ctx context.Context, id int64) error {
	return remove(ctx, c.api, itemPath(candidatParcoursPath, id))
}

func (c *Candidats) BaseConfig(ctx context.Context) (*BaseConfig, error) {
	return get[BaseConfig](ctx, c.api, baseConfigPath, nil)
}

func (c *Candidats) Notifications(ctx context.Context) (*api.Page[Notification], error) {
	return list[Notification](ctx, c.api, notificationsPath, api.Pagination{})
}

func (c *Candidats) Postulations(ctx context.Context) (*api.Page[Postulation], error) {
	return list[Postulation](ctx, c.api, candidatPostulesPath, api.Pagination{})
}

// Postuler applies to a subject.
func (c *Candidats) Postuler(ctx context.Context, sujetID int64) (*Postulation, error) {
	return send[Postulation](ctx, c.api, http.MethodPost, candidatPostulesPath, map[string]int64{"sujet": sujetID})
}

// RetirerPostulation withdraws an application.
func (c *Candidats) RetirerPostulation(ctx context.Context, id int64) error {
	return remove(ctx, c.api, fmt.Sprintf("%s%d", candidatPostulesPath, id))
}

// PublishedSubjects lists subjects open to applications. The backend pages
// by 10 when no limit is given.
func (c *Candidats) PublishedSubjects(ctx context.Context, page api.Pagination) (*api.Page[Sujet], error) {
	if page.Limit == 0 {
		page.Limit = 10
	}
	return list[Sujet](ctx, c.api, publishedSubjectsPath, page)
}
