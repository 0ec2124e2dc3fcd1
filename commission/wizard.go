// Package commission drives the four-step creation of an admission
// commission by a lab director.
package commission

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/jrsteele09/go-edoctorat/api"
	"github.com/jrsteele09/go-edoctorat/internal/errors"
	"github.com/jrsteele09/go-edoctorat/internal/utils"
	"github.com/jrsteele09/go-edoctorat/portal"
	"github.com/rs/zerolog/log"
)

type Step int

const (
	StepDetails Step = iota + 1
	StepProfesseurs
	StepSujets
	StepCandidats
)

func (s Step) String() string {
	switch s {
	case StepDetails:
		return "details"
	case StepProfesseurs:
		return "professeurs"
	case StepSujets:
		return "sujets"
	case StepCandidats:
		return "candidats"
	}
	return "unknown"
}

// Source is the part of the lab client the wizard reads from and submits to.
type Source interface {
	Laboratory(ctx context.Context) (*portal.Laboratory, error)
	Professeurs(ctx context.Context) (*api.Page[portal.Professeur], error)
	Sujets(ctx context.Context) (*api.Page[portal.Sujet], error)
	SujetCandidats(ctx context.Context, sujetID int64) (*api.Page[portal.Examiner], error)
	CreateCommissionWithDetails(ctx context.Context, in portal.CommissionDetails) (*portal.Commission, error)
}

var _ Source = (*portal.Labo)(nil)

// Details is the first step of the wizard.
type Details struct {
	DateCommission string
	Heure          string
	Lieu           string
}

func (d Details) complete() bool {
	return d.DateCommission != "" && d.Heure != "" && d.Lieu != ""
}

// Candidate is a candidate reachable through one of the selected subjects.
type Candidate struct {
	CNE        string
	Nom        string
	Prenom     string
	Email      string
	SujetID    int64
	SujetTitre string
}

type Wizard struct {
	source Source
	step   Step

	details     Details
	professeurs []int64
	sujets      []int64
	candidats   []string

	allSujets []portal.Sujet
	gathered  []Candidate
}

func New(source Source) *Wizard {
	return &Wizard{source: source, step: StepDetails}
}

func (w *Wizard) Step() Step {
	return w.step
}

func (w *Wizard) SetDetails(d Details) {
	w.details = d
}

// Professeurs lists the lab's professors to choose from.
func (w *Wizard) Professeurs(ctx context.Context) ([]portal.Professeur, error) {
	page, err := w.source.Professeurs(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "[Wizard.Professeurs]")
	}
	return page.Results, nil
}

// SelectProfesseurs replaces the panel. A different panel clears the subject
// and candidate selections.
func (w *Wizard) SelectProfesseurs(ids []int64) {
	if sameSet(w.professeurs, ids) {
		return
	}
	w.professeurs = slices.Clone(ids)
	w.sujets = nil
	w.candidats = nil
	w.gathered = nil
}

// Sujets lists the lab subjects directed or co-directed by a selected professor.
func (w *Wizard) Sujets(ctx context.Context) ([]portal.Sujet, error) {
	if len(w.professeurs) == 0 {
		return nil, nil
	}
	if w.allSujets == nil {
		page, err := w.source.Sujets(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "[Wizard.Sujets]")
		}
		w.allSujets = page.Results
	}
	var out []portal.Sujet
	for _, s := range w.allSujets {
		if slices.ContainsFunc(w.professeurs, s.DirectedBy) {
			out = append(out, s)
		}
	}
	return out, nil
}

// SelectSujets replaces the subject selection. A different selection clears
// the candidates.
func (w *Wizard) SelectSujets(ids []int64) {
	if sameSet(w.sujets, ids) {
		return
	}
	w.sujets = slices.Clone(ids)
	w.candidats = nil
	w.gathered = nil
}

// Candidats gathers the candidates of every selected subject, each CNE once.
// A subject whose candidates cannot be fetched is skipped.
func (w *Wizard) Candidats(ctx context.Context) ([]Candidate, error) {
	var all []Candidate
	for _, sujetID := range w.sujets {
		page, err := w.source.SujetCandidats(ctx, sujetID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn().Err(err).Int64("sujet_id", sujetID).Msg("fetching subject candidates")
			continue
		}
		titre := w.sujetTitre(sujetID)
		for _, e := range page.Results {
			if e.Candidat == nil {
				continue
			}
			cne := e.CNE
			if cne == "" {
				cne = e.Candidat.CNE
			}
			all = append(all, Candidate{
				CNE:        cne,
				Nom:        e.Candidat.Nom,
				Prenom:     e.Candidat.Prenom,
				Email:      e.Candidat.Email,
				SujetID:    sujetID,
				SujetTitre: titre,
			})
		}
	}
	w.gathered = utils.Dedupe(all, func(c Candidate) string { return c.CNE })
	return w.gathered, nil
}

func (w *Wizard) SelectCandidats(cnes []string) {
	w.candidats = slices.Clone(cnes)
}

// Next advances one step once the current step is complete.
func (w *Wizard) Next() error {
	if err := w.checkStep(w.step); err != nil {
		return err
	}
	if w.step < StepCandidats {
		w.step++
	}
	return nil
}

func (w *Wizard) Back() {
	if w.step > StepDetails {
		w.step--
	}
}

// Submit creates the commission. Every step must be complete.
func (w *Wizard) Submit(ctx context.Context) (*portal.Commission, error) {
	for step := StepDetails; step <= StepCandidats; step++ {
		if err := w.checkStep(step); err != nil {
			return nil, err
		}
	}

	lab, err := w.source.Laboratory(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "[Wizard.Submit] laboratory id unavailable")
	}

	commission, err := w.source.CreateCommissionWithDetails(ctx, portal.CommissionDetails{
		DateCommission: w.details.DateCommission,
		Heure:          w.details.Heure,
		Lieu:           w.details.Lieu,
		Labo:           lab.ID,
		ParticipantIDs: w.professeurs,
		SujetIDs:       w.sujets,
		CandidatCNEs:   w.candidats,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "[Wizard.Submit]")
	}
	w.reset()
	return commission, nil
}

// checkStep requires the step's fields and, for subjects and candidates,
// that every selection comes from the last listing: subjects directed or
// co-directed by a selected professor, candidates gathered from the selected
// subjects.
func (w *Wizard) checkStep(step Step) error {
	var ok bool
	switch step {
	case StepDetails:
		ok = w.details.complete()
	case StepProfesseurs:
		ok = len(w.professeurs) > 0
	case StepSujets:
		ok = len(w.sujets) > 0
		if ok {
			if id, found := firstMissing(w.sujets, w.offeredSujets()); found {
				return &errors.ValidationError{Field: "sujets", Message: fmt.Sprintf("subject %d is not directed by a selected professor", id)}
			}
		}
	case StepCandidats:
		ok = len(w.candidats) > 0
		if ok {
			gathered := make([]string, 0, len(w.gathered))
			for _, c := range w.gathered {
				gathered = append(gathered, c.CNE)
			}
			if cne, found := firstMissing(w.candidats, gathered); found {
				return &errors.ValidationError{Field: "candidats", Message: fmt.Sprintf("candidate %s did not apply to a selected subject", cne)}
			}
		}
	}
	if !ok {
		return errors.Wrapf(errors.ErrIncomplete, "step %s", step)
	}
	return nil
}

func (w *Wizard) offeredSujets() []int64 {
	var ids []int64
	for _, s := range w.allSujets {
		if slices.ContainsFunc(w.professeurs, s.DirectedBy) {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// firstMissing returns the first selected value absent from offered.
func firstMissing[T comparable](selected, offered []T) (T, bool) {
	for _, v := range selected {
		if !slices.Contains(offered, v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func (w *Wizard) sujetTitre(id int64) string {
	for _, s := range w.allSujets {
		if s.ID == id {
			return s.Titre
		}
	}
	return ""
}

func (w *Wizard) reset() {
	*w = Wizard{source: w.source, step: StepDetails}
}

func sameSet[T cmp.Ordered](a, b []T) bool {
	return slices.Equal(distinct(a), distinct(b))
}

func distinct[T cmp.Ordered](values []T) []T {
	out := slices.Clone(values)
	slices.Sort(out)
	return slices.Compact(out)
}
