package portal

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-edoctorat/api"
	"github.com/jrsteele09/go-edoctorat/internal/errors"
)

const scolaritePath = "/api/scolarite/"

// Scolarite is the registrar's area.
type Scolarite struct {
	api *api.Client
}

// Dossiers lists candidate dossiers awaiting review.
func (s *Scolarite) Dossiers(ctx context.Context, page api.Pagination) (*api.Page[Candidat], error) {
	return list[Candidat](ctx, s.api, scolaritePath, page)
}

// UpdateDossier records the registrar's decision. A rejection needs a comment.
func (s *Scolarite) UpdateDossier(ctx context.Context, id int64, update DossierUpdate) (*Candidat, error) {
	if update.EtatDossier != nil && *update.EtatDossier == DossierRejected && update.CommentaireScolarite == "" {
		return nil, &errors.ValidationError{Field: "commentaireScolarite", Message: "is required when rejecting a dossier"}
	}
	return send[Candidat](ctx, s.api, http.MethodPatch, itemPath(scolaritePath, id), update)
}
