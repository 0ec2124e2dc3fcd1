package commission_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/jrsteele09/go-edoctorat/api"
	"github.com/jrsteele09/go-edoctorat/commission"
	"github.com/jrsteele09/go-edoctorat/internal/errors"
	"github.com/jrsteele09/go-edoctorat/portal"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	lab         *portal.Laboratory
	professeurs []portal.Professeur
	sujets      []portal.Sujet
	examined    map[int64][]portal.Examiner
	failing     map[int64]bool
	submitted   *portal.CommissionDetails
}

func (f *fakeSource) Laboratory(context.Context) (*portal.Laboratory, error) {
	if f.lab == nil {
		return nil, errors.ErrNotFound
	}
	return f.lab, nil
}

func (f *fakeSource) Professeurs(context.Context) (*api.Page[portal.Professeur], error) {
	return &api.Page[portal.Professeur]{Count: len(f.professeurs), Results: f.professeurs}, nil
}

func (f *fakeSource) Sujets(context.Context) (*api.Page[portal.Sujet], error) {
	return &api.Page[portal.Sujet]{Count: len(f.sujets), Results: f.sujets}, nil
}

func (f *fakeSource) SujetCandidats(_ context.Context, sujetID int64) (*api.Page[portal.Examiner], error) {
	if f.failing[sujetID] {
		return nil, fmt.Errorf("boom")
	}
	return &api.Page[portal.Examiner]{Results: f.examined[sujetID]}, nil
}

func (f *fakeSource) CreateCommissionWithDetails(_ context.Context, in portal.CommissionDetails) (*portal.Commission, error) {
	f.submitted = &in
	return &portal.Commission{ID: 42, DateCommission: in.DateCommission, Heure: in.Heure, Lieu: in.Lieu, Labo: in.Labo}, nil
}

type testFixture struct {
	source *fakeSource
	wizard *commission.Wizard
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	prof := func(id int64) *portal.Professeur { return &portal.Professeur{ID: id} }
	candidat := func(cne, nom string) *portal.Candidat { return &portal.Candidat{CNE: cne, Nom: nom} }

	source := &fakeSource{
		lab:         &portal.Laboratory{ID: 7, Nom: "LIPIM"},
		professeurs: []portal.Professeur{{ID: 1, Nom: "Alaoui"}, {ID: 2, Nom: "Bennani"}, {ID: 3, Nom: "Chraibi"}},
		sujets: []portal.Sujet{
			{ID: 10, Titre: "Vision", Professeur: prof(1)},
			{ID: 11, Titre: "NLP", Professeur: prof(3), CoDirecteur: prof(2)},
			{ID: 12, Titre: "Robotique", Professeur: prof(3)},
		},
		examined: map[int64][]portal.Examiner{
			10: {{CNE: "R1", Candidat: candidat("R1", "Amrani")}, {CNE: "R2", Candidat: candidat("R2", "Berrada")}},
			11: {{Candidat: candidat("R2", "Berrada")}, {CNE: "R3", Candidat: candidat("R3", "Cherkaoui")}, {CNE: "R4"}},
		},
	}
	return &testFixture{source: source, wizard: commission.New(source)}
}

func (f *testFixture) completeAll(t *testing.T) {
	t.Helper()
	f.wizard.SetDetails(commission.Details{DateCommission: "2026-06-01", Heure: "09:00", Lieu: "Salle 2"})
	require.NoError(t, f.wizard.Next())
	f.wizard.SelectProfesseurs([]int64{1, 2})
	require.NoError(t, f.wizard.Next())
	_, err := f.wizard.Sujets(context.Background())
	require.NoError(t, err)
	f.wizard.SelectSujets([]int64{10, 11})
	require.NoError(t, f.wizard.Next())
	_, err = f.wizard.Candidats(context.Background())
	require.NoError(t, err)
	f.wizard.SelectCandidats([]string{"R1", "R3"})
}

func TestWizard_NextRefusedUntilStepComplete(t *testing.T) {
	f := setupTestFixture(t)
	require.Equal(t, commission.StepDetails, f.wizard.Step())

	f.wizard.SetDetails(commission.Details{DateCommission: "2026-06-01", Heure: "09:00"})
	require.ErrorIs(t, f.wizard.Next(), errors.ErrIncomplete)
	require.Equal(t, commission.StepDetails, f.wizard.Step())

	f.wizard.SetDetails(commission.Details{DateCommission: "2026-06-01", Heure: "09:00", Lieu: "Salle 2"})
	require.NoError(t, f.wizard.Next())
	require.Equal(t, commission.StepProfesseurs, f.wizard.Step())

	require.ErrorIs(t, f.wizard.Next(), errors.ErrIncomplete)
	f.wizard.Back()
	require.Equal(t, commission.StepDetails, f.wizard.Step())
	f.wizard.Back()
	require.Equal(t, commission.StepDetails, f.wizard.Step())
}

func TestWizard_SujetsFilteredBySelectedProfesseurs(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	sujets, err := f.wizard.Sujets(ctx)
	require.NoError(t, err)
	require.Empty(t, sujets)

	f.wizard.SelectProfesseurs([]int64{2})
	sujets, err = f.wizard.Sujets(ctx)
	require.NoError(t, err)
	require.Len(t, sujets, 1)
	require.Equal(t, int64(11), sujets[0].ID)

	f.wizard.SelectProfesseurs([]int64{1, 3})
	sujets, err = f.wizard.Sujets(ctx)
	require.NoError(t, err)
	require.Len(t, sujets, 3)
}

func TestWizard_CandidatsDedupedByCNE(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.wizard.SelectProfesseurs([]int64{1, 2})
	_, err := f.wizard.Sujets(ctx)
	require.NoError(t, err)
	f.wizard.SelectSujets([]int64{10, 11})

	candidats, err := f.wizard.Candidats(ctx)
	require.NoError(t, err)
	require.Len(t, candidats, 3)
	require.Equal(t, "R1", candidats[0].CNE)
	require.Equal(t, "R2", candidats[1].CNE)
	require.Equal(t, "Vision", candidats[1].SujetTitre)
	require.Equal(t, "R3", candidats[2].CNE)
	require.Equal(t, "NLP", candidats[2].SujetTitre)
}

func TestWizard_CandidatsSkipsFailingSubject(t *testing.T) {
	f := setupTestFixture(t)
	f.source.failing = map[int64]bool{10: true}
	f.wizard.SelectProfesseurs([]int64{2})
	f.wizard.SelectSujets([]int64{10, 11})

	candidats, err := f.wizard.Candidats(context.Background())
	require.NoError(t, err)
	require.Len(t, candidats, 2)
}

func TestWizard_ChangingSelectionsResetsLaterSteps(t *testing.T) {
	f := setupTestFixture(t)
	f.completeAll(t)

	f.wizard.SelectSujets([]int64{11, 10})
	_, err := f.wizard.Submit(context.Background())
	require.NoError(t, err, "same subjects in another order keep the candidates")

	f = setupTestFixture(t)
	f.completeAll(t)
	f.wizard.SelectSujets([]int64{10})
	_, err = f.wizard.Submit(context.Background())
	require.ErrorIs(t, err, errors.ErrIncomplete)

	f = setupTestFixture(t)
	f.completeAll(t)
	f.wizard.SelectProfesseurs([]int64{3})
	_, err = f.wizard.Submit(context.Background())
	require.ErrorIs(t, err, errors.ErrIncomplete)
	require.Nil(t, f.source.submitted)
}

func TestWizard_SelectionsMustBeListed(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.wizard.SetDetails(commission.Details{DateCommission: "2026-06-01", Heure: "09:00", Lieu: "Salle 2"})
	require.NoError(t, f.wizard.Next())
	f.wizard.SelectProfesseurs([]int64{1})
	require.NoError(t, f.wizard.Next())
	_, err := f.wizard.Sujets(ctx)
	require.NoError(t, err)

	f.wizard.SelectSujets([]int64{12, 999})
	err = f.wizard.Next()
	require.ErrorIs(t, err, errors.ErrValidation)
	require.Equal(t, commission.StepSujets, f.wizard.Step())

	f.wizard.SelectSujets([]int64{10})
	require.NoError(t, f.wizard.Next())
	_, err = f.wizard.Candidats(ctx)
	require.NoError(t, err)

	f.wizard.SelectCandidats([]string{"R1", "NOPE"})
	_, err = f.wizard.Submit(ctx)
	require.ErrorIs(t, err, errors.ErrValidation)
	require.Nil(t, f.source.submitted)

	f.wizard.SelectCandidats([]string{"R1"})
	_, err = f.wizard.Submit(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"R1"}, f.source.submitted.CandidatCNEs)
}

func TestWizard_CandidatsRequireGathering(t *testing.T) {
	f := setupTestFixture(t)
	f.completeAll(t)

	f.wizard.SelectSujets([]int64{10})
	f.wizard.SelectCandidats([]string{"R1"})
	_, err := f.wizard.Submit(context.Background())
	require.ErrorIs(t, err, errors.ErrValidation, "candidates were not gathered for the new subjects")
	require.Nil(t, f.source.submitted)
}

func TestWizard_RepeatedIDsAreADifferentSelection(t *testing.T) {
	f := setupTestFixture(t)
	f.completeAll(t)

	f.wizard.SelectSujets([]int64{10, 10})
	_, err := f.wizard.Submit(context.Background())
	require.ErrorIs(t, err, errors.ErrIncomplete)
	require.Nil(t, f.source.submitted)

	f = setupTestFixture(t)
	f.completeAll(t)
	f.wizard.SelectProfesseurs([]int64{1, 1})
	_, err = f.wizard.Submit(context.Background())
	require.ErrorIs(t, err, errors.ErrIncomplete)

	f = setupTestFixture(t)
	f.completeAll(t)
	f.wizard.SelectProfesseurs([]int64{2, 1, 2})
	_, err = f.wizard.Submit(context.Background())
	require.NoError(t, err, "the same panel with a repeated id keeps the later steps")
}

func TestWizard_Submit(t *testing.T) {
	f := setupTestFixture(t)
	f.completeAll(t)

	c, err := f.wizard.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(42), c.ID)
	require.Equal(t, portal.CommissionDetails{
		DateCommission: "2026-06-01",
		Heure:          "09:00",
		Lieu:           "Salle 2",
		Labo:           7,
		ParticipantIDs: []int64{1, 2},
		SujetIDs:       []int64{10, 11},
		CandidatCNEs:   []string{"R1", "R3"},
	}, *f.source.submitted)
	require.Equal(t, commission.StepDetails, f.wizard.Step())
}

func TestWizard_SubmitRequiresLaboratory(t *testing.T) {
	f := setupTestFixture(t)
	f.source.lab = nil
	f.completeAll(t)

	_, err := f.wizard.Submit(context.Background())
	require.ErrorIs(t, err, errors.ErrNotFound)
	require.Nil(t, f.source.submitted)
}
