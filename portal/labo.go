package portal

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-edoctorat/api"
	"github.com/jrsteele09/go-edoctorat/internal/errors"
)

const (
	directeurLaboInfoPath   = "/api/directeur-labo-info/"
	myLaboratoryPath        = "/api/my-laboratory-id/"
	sujetsLaboPath          = "/api/sujetslabo/"
	commissionPath          = "/api/commission/"
	commissionDetailsPath   = "/api/commission-with-details/"
	laboProfesseurPath      = "/api/labo_professeur/"
	laboCandidatPath        = "/api/labo_candidat/"
	sujetCandidatPath       = "/api/get-sujet-candidat/"
	laboValiderExaminerPath = "/api/labo_valider_examiner/"
	convoqueCandidatPath    = "/api/convoque-candidat/"
	candidatsJoinedPath     = "/api/labo-candidats-joined/"
)

// Labo is the lab director's area.
type Labo struct {
	api *api.Client
}

func (l *Labo) Directeur(ctx context.Context) (*DirecteurLabo, error) {
	return get[DirecteurLabo](ctx, l.api, directeurLaboInfoPath, nil)
}

// Laboratory returns the lab the current director runs. A zero id means the
// account is not attached to a lab.
func (l *Labo) Laboratory(ctx context.Context) (*Laboratory, error) {
	lab, err := get[Laboratory](ctx, l.api, myLaboratoryPath, nil)
	if err != nil {
		return nil, err
	}
	if lab.ID == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "[Labo.Laboratory] no laboratory for current user")
	}
	return lab, nil
}

// Formations answers with a bare array on the lab side.
func (l *Labo) Formations(ctx context.Context) ([]FormationDoctorale, error) {
	out, err := get[[]FormationDoctorale](ctx, l.api, formationsPath, nil)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

func (l *Labo) Professeurs(ctx context.Context) (*api.Page[Professeur], error) {
	return list[Professeur](ctx, l.api, laboProfesseurPath, api.Pagination{})
}

func (l *Labo) Sujets(ctx context.Context) (*api.Page[Sujet], error) {
	return list[Sujet](ctx, l.api, sujetsLaboPath, api.Pagination{})
}

func (l *Labo) CreateSujet(ctx context.Context, in SujetInput) (*Sujet, error) {
	return send[Sujet](ctx, l.api, http.MethodPost, sujetsLaboPath, in)
}

func (l *Labo) UpdateSujet(ctx context.Context, id int64, in SujetInput) (*Sujet, error) {
	return send[Sujet](ctx, l.api, http.MethodPut, itemPath(sujetsLaboPath, id), in)
}

func (l *Labo) DeleteSujet(ctx context.Context, id int64) error {
	return remove(ctx, l.api, itemPath(sujetsLaboPath, id))
}

func (l *Labo) Commissions(ctx context.Context, page api.Pagination) (*api.Page[Commission], error) {
	return list[Commission](ctx, l.api, commissionPath, page)
}

func (l *Labo) CreateCommission(ctx context.Context, in CommissionInput) (*Commission, error) {
	return send[Commission](ctx, l.api, http.MethodPost, commissionPath, in)
}

func (l *Labo) UpdateCommission(ctx context.Context, id int64, in CommissionInput) (*Commission, error) {
	return send[Commission](ctx, l.api, http.MethodPut, itemPath(commissionPath, id), in)
}

// ValidateCommission sets the commission's valider flag.
func (l *Labo) ValidateCommission(ctx context.Context, id int64, valider bool) (*Commission, error) {
	return send[Commission](ctx, l.api, http.MethodPut, itemPath(commissionPath, id), map[string]bool{"valider": valider})
}

func (l *Labo) DeleteCommission(ctx context.Context, id int64) error {
	return remove(ctx, l.api, itemPath(commissionPath, id))
}

// CreateCommissionWithDetails creates a commission with its panel, subjects
// and convened candidates in one call.
func (l *Labo) CreateCommissionWithDetails(ctx context.Context, in CommissionDetails) (*Commission, error) {
	if in.Labo == 0 {
		return nil, &errors.ValidationError{Field: "labo", Message: "is required"}
	}
	return send[Commission](ctx, l.api, http.MethodPost, commissionDetailsPath, in)
}

// Resultats lists the interview results of the lab.
func (l *Labo) Resultats(ctx context.Context, page api.Pagination) (*api.Page[Examiner], error) {
	return list[Examiner](ctx, l.api, laboCandidatPath, page)
}

// SujetCandidats lists the candidates examined for one subject.
func (l *Labo) SujetCandidats(ctx context.Context, sujetID int64) (*api.Page[Examiner], error) {
	return list[Examiner](ctx, l.api, itemPath(sujetCandidatPath, sujetID), api.Pagination{})
}

func (l *Labo) ValidateExaminer(ctx context.Context, id int64, v ExaminerValidation) (*Examiner, error) {
	return send[Examiner](ctx, l.api, http.MethodPut, itemPath(laboValiderExaminerPath, id), v)
}

// Convoquer sends the convocation for a commission to its candidates.
func (l *Labo) Convoquer(ctx context.Context, commissionID int64) error {
	path := itemPath(convoqueCandidatPath, commissionID)
	if err := l.api.Post(ctx, path, struct{}{}, nil); err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	return nil
}

// CandidatsJoined is the flattened application list. The endpoint answers
// with a bare array.
func (l *Labo) CandidatsJoined(ctx context.Context) ([]PostulationJoined, error) {
	out, err := get[[]PostulationJoined](ctx, l.api, candidatsJoinedPath, nil)
	if err != nil {
		return nil, err
	}
	return *out, nil
}
