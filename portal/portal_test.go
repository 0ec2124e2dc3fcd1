package portal_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/jrsteele09/go-edoctorat/api"
	"github.com/jrsteele09/go-edoctorat/internal/config"
	"github.com/jrsteele09/go-edoctorat/internal/errors"
	"github.com/jrsteele09/go-edoctorat/portal"
	"github.com/jrsteele09/go-edoctorat/roles"
	"github.com/stretchr/testify/require"
)

type call struct {
	method string
	path   string
	query  string
	body   map[string]any
}

type testFixture struct {
	portal *portal.Portal
	mux    *http.ServeMux

	mu    sync.Mutex
	calls []call
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	f := &testFixture{mux: http.NewServeMux()}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := call{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery}
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			require.NoError(t, json.Unmarshal(raw, &c.body))
		}
		f.mu.Lock()
		f.calls = append(f.calls, c)
		f.mu.Unlock()
		f.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	client := api.New(srv.URL, api.WithTokenSource(api.TokenSourceFunc(func(context.Context) (string, error) {
		return "access", nil
	})))
	f.portal = portal.New(client, config.Endpoints{})
	return f
}

func (f *testFixture) handle(pattern string, status int, body any) {
	f.mux.HandleFunc(pattern, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if body != nil {
			_ = json.NewEncoder(w).Encode(body)
		}
	})
}

func (f *testFixture) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *testFixture) last(t *testing.T) call {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.calls)
	return f.calls[len(f.calls)-1]
}

func TestAccount_MeAndUserInfo(t *testing.T) {
	f := setupTestFixture(t)
	f.handle("GET /api/user/me", http.StatusOK, portal.UserInfo{Nom: "Alaoui", Groups: []string{"professeur"}})
	f.handle("GET /api/get-user-info/{role}", http.StatusOK, portal.UserInfo{Prenom: "Sara"})

	me, err := f.portal.Account.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Alaoui", me.Nom)

	info, err := f.portal.Account.UserInfo(context.Background(), roles.DirecteurLabo)
	require.NoError(t, err)
	require.Equal(t, "Sara", info.Prenom)
	require.Equal(t, "/api/get-user-info/directeur_labo", f.last(t).path)
}

func TestCandidats_Postulations(t *testing.T) {
	f := setupTestFixture(t)
	f.handle("POST /api/candidat-postules/", http.StatusCreated, portal.Postulation{ID: 9})
	f.handle("DELETE /api/candidat-postules/{id}", http.StatusNoContent, nil)
	f.handle("GET /api/get-published-subjects", http.StatusOK, api.Page[portal.Sujet]{Count: 12, Results: []portal.Sujet{{ID: 1}}})

	p, err := f.portal.Candidats.Postuler(context.Background(), 4)
	require.NoError(t, err)
	require.Equal(t, int64(9), p.ID)
	require.Equal(t, float64(4), f.last(t).body["sujet"])

	require.NoError(t, f.portal.Candidats.RetirerPostulation(context.Background(), 9))
	require.Equal(t, "/api/candidat-postules/9", f.last(t).path)

	page, err := f.portal.Candidats.PublishedSubjects(context.Background(), api.Pagination{Offset: 10})
	require.NoError(t, err)
	require.Equal(t, 12, page.Count)
	require.Equal(t, "limit=10&offset=10", f.last(t).query)
}

func TestCandidats_Parcours(t *testing.T) {
	f := setupTestFixture(t)
	f.handle("PATCH /api/candidat-parcours/{id}/", http.StatusOK, portal.Diplome{ID: 3, Intitule: "Master"})

	d, err := f.portal.Candidats.UpdateDiplome(context.Background(), 3, portal.Diplome{Intitule: "Master"})
	require.NoError(t, err)
	require.Equal(t, "Master", d.Intitule)
	require.Equal(t, http.MethodPatch, f.last(t).method)
	require.Equal(t, "/api/candidat-parcours/3/", f.last(t).path)
}

func TestProfesseurs_SujetCRUD(t *testing.T) {
	f := setupTestFixture(t)
	f.handle("POST /api/sujets/", http.StatusCreated, portal.Sujet{ID: 5, Titre: "Vision"})
	f.handle("PUT /api/sujets/{id}/", http.StatusOK, portal.Sujet{ID: 5, Titre: "Vision 2"})
	f.handle("DELETE /api/sujets/{id}/", http.StatusNoContent, nil)

	ctx := context.Background()
	s, err := f.portal.Professeurs.CreateSujet(ctx, portal.SujetInput{Titre: "Vision", FormationDoctoraleID: 1})
	require.NoError(t, err)
	require.Equal(t, "Vision", f.last(t).body["titre"])

	s, err = f.portal.Professeurs.UpdateSujet(ctx, s.ID, portal.SujetInput{Titre: "Vision 2"})
	require.NoError(t, err)
	require.Equal(t, "Vision 2", s.Titre)

	require.NoError(t, f.portal.Professeurs.DeleteSujet(ctx, s.ID))
	require.Equal(t, "/api/sujets/5/", f.last(t).path)
}

func TestLabo_Laboratory(t *testing.T) {
	f := setupTestFixture(t)
	f.handle("GET /api/my-laboratory-id/", http.StatusOK, map[string]any{"laboratoireId": 7, "laboratoireNom": "LIPIM"})

	lab, err := f.portal.Labo.Laboratory(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(7), lab.ID)
	require.Equal(t, "LIPIM", lab.Nom)
}

func TestLabo_LaboratoryMissing(t *testing.T) {
	f := setupTestFixture(t)
	f.handle("GET /api/my-laboratory-id/", http.StatusOK, map[string]any{})

	_, err := f.portal.Labo.Laboratory(context.Background())
	require.ErrorIs(t, err, errors.ErrNotFound)
}

func TestLabo_CommissionWithDetails(t *testing.T) {
	f := setupTestFixture(t)
	f.handle("POST /api/commission-with-details/", http.StatusCreated, portal.Commission{ID: 11, Lieu: "Salle 2"})

	_, err := f.portal.Labo.CreateCommissionWithDetails(context.Background(), portal.CommissionDetails{Lieu: "Salle 2"})
	require.ErrorIs(t, err, errors.ErrValidation)
	require.Zero(t, f.count())

	c, err := f.portal.Labo.CreateCommissionWithDetails(context.Background(), portal.CommissionDetails{
		DateCommission: "2026-06-01",
		Heure:          "09:00",
		Lieu:           "Salle 2",
		Labo:           7,
		ParticipantIDs: []int64{1, 2},
		SujetIDs:       []int64{5},
		CandidatCNEs:   []string{"R130000001"},
	})
	require.NoError(t, err)
	require.Equal(t, int64(11), c.ID)
	body := f.last(t).body
	require.Equal(t, float64(7), body["labo"])
	require.Equal(t, []any{"R130000001"}, body["candidatCnes"])
}

func TestLabo_ValidateAndConvoke(t *testing.T) {
	f := setupTestFixture(t)
	f.handle("PUT /api/labo_valider_examiner/{id}/", http.StatusOK, portal.Examiner{ID: 4, Decision: "accepte"})
	f.handle("POST /api/convoque-candidat/{id}/", http.StatusOK, map[string]string{"message": "ok"})
	f.handle("GET /api/labo-candidats-joined/", http.StatusOK, []portal.PostulationJoined{{CNE: "R1"}, {CNE: "R2"}})

	ctx := context.Background()
	valider := true
	e, err := f.portal.Labo.ValidateExaminer(ctx, 4, portal.ExaminerValidation{Valider: &valider, Decision: "accepte"})
	require.NoError(t, err)
	require.Equal(t, "accepte", e.Decision)
	require.Equal(t, true, f.last(t).body["valider"])

	require.NoError(t, f.portal.Labo.Convoquer(ctx, 11))
	require.Equal(t, "/api/convoque-candidat/11/", f.last(t).path)

	joined, err := f.portal.Labo.CandidatsJoined(ctx)
	require.NoError(t, err)
	require.Len(t, joined, 2)
}

func TestPole_Publications(t *testing.T) {
	f := setupTestFixture(t)
	f.handle("PUT /api/publier-sujets/", http.StatusOK, portal.Message{Message: "published"})
	f.handle("POST /api/publier-liste-principale/", http.StatusForbidden, map[string]string{"error": "Forbidden", "message": "not a pole director"})

	msg, err := f.portal.Pole.PublierSujets(context.Background())
	require.NoError(t, err)
	require.Equal(t, "published", msg.Message)

	_, err = f.portal.Pole.PublierListePrincipale(context.Background())
	require.ErrorIs(t, err, errors.ErrForbidden)
	require.Equal(t, "not a pole director", errors.FriendlyMessage(err))
}

func TestCED_DownloadRegistrationReport(t *testing.T) {
	f := setupTestFixture(t)
	f.mux.HandleFunc("GET /api/download-registration-report", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	})

	report, err := f.portal.CED.DownloadRegistrationReport(context.Background())
	require.NoError(t, err)
	require.Equal(t, "application/pdf", report.ContentType)
	require.Equal(t, []byte("%PDF-1.4"), report.Data)
}

func TestScolarite_UpdateDossier(t *testing.T) {
	f := setupTestFixture(t)
	f.handle("PATCH /api/scolarite/{id}/", http.StatusOK, portal.Candidat{ID: 3})

	rejected := portal.DossierRejected
	_, err := f.portal.Scolarite.UpdateDossier(context.Background(), 3, portal.DossierUpdate{EtatDossier: &rejected})
	require.ErrorIs(t, err, errors.ErrValidation)
	require.Zero(t, f.count())

	_, err = f.portal.Scolarite.UpdateDossier(context.Background(), 3, portal.DossierUpdate{EtatDossier: &rejected, CommentaireScolarite: "bac manquant"})
	require.NoError(t, err)
	require.Equal(t, "bac manquant", f.last(t).body["commentaireScolarite"])
	require.Equal(t, float64(2), f.last(t).body["etatDossier"])
}
