package fakeportal

import (
	"net/http"
	"slices"
	"strconv"

	"github.com/jrsteele09/go-edoctorat/api"
	"github.com/jrsteele09/go-edoctorat/portal"
)

func page[T any](items []T) api.Page[T] {
	if items == nil {
		items = []T{}
	}
	return api.Page[T]{Count: len(items), Results: items}
}

func (p *Portal) CandidatInfoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		p.mu.Lock()
		c, ok := p.data.Candidats[user.Email]
		p.mu.Unlock()
		if !ok {
			c = portal.Candidat{Nom: user.Nom, Prenom: user.Prenom, Email: user.Email}
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func (p *Portal) MyLaboratoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		p.mu.Lock()
		lab := p.data.Laboratory
		p.mu.Unlock()
		if user.LaboratoireID == 0 || user.LaboratoireID != lab.ID {
			writeError(w, http.StatusNotFound, "Not Found", "No laboratory for this director")
			return
		}
		writeJSON(w, http.StatusOK, lab)
	}
}

func (p *Portal) LaboProfesseursHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		defer p.mu.Unlock()
		writeJSON(w, http.StatusOK, page(p.data.Professeurs))
	}
}

func (p *Portal) LaboSujetsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		defer p.mu.Unlock()
		writeJSON(w, http.StatusOK, page(p.data.Sujets))
	}
}

func (p *Portal) SujetCandidatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Bad Request", "Invalid subject id")
			return
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		var out []portal.Examiner
		for _, e := range p.data.Examiners {
			if e.Sujet != nil && e.Sujet.ID == id {
				out = append(out, e)
			}
		}
		writeJSON(w, http.StatusOK, page(out))
	}
}

func (p *Portal) CommissionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		defer p.mu.Unlock()
		writeJSON(w, http.StatusOK, page(p.data.Commissions))
	}
}

// CreateCommissionHandler stores a commission with its panel and subjects.
func (p *Portal) CreateCommissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in portal.CommissionDetails
		if err := decodeBody(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, "Bad Request", "Invalid body")
			return
		}
		if in.Labo == 0 || in.DateCommission == "" || in.Heure == "" || in.Lieu == "" {
			writeError(w, http.StatusBadRequest, "Bad Request", "dateCommission, heure, lieu and labo are required")
			return
		}

		p.mu.Lock()
		defer p.mu.Unlock()
		if in.Labo != p.data.Laboratory.ID {
			writeError(w, http.StatusForbidden, "Forbidden", "Laboratory mismatch")
			return
		}
		c := portal.Commission{
			ID:             int64(len(p.data.Commissions) + 1),
			DateCommission: in.DateCommission,
			Heure:          in.Heure,
			Lieu:           in.Lieu,
			Labo:           in.Labo,
		}
		for _, prof := range p.data.Professeurs {
			if slices.Contains(in.ParticipantIDs, prof.ID) {
				c.Participants = append(c.Participants, prof)
			}
		}
		for _, s := range p.data.Sujets {
			if slices.Contains(in.SujetIDs, s.ID) {
				c.Sujets = append(c.Sujets, s)
			}
		}
		for i := range p.data.Examiners {
			e := &p.data.Examiners[i]
			if slices.Contains(in.CandidatCNEs, e.CNE) && e.Sujet != nil && slices.Contains(in.SujetIDs, e.Sujet.ID) {
				e.Commission = c.ID
			}
		}
		p.data.Commissions = append(p.data.Commissions, c)
		writeJSON(w, http.StatusCreated, c)
	}
}
