package commission_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-edoctorat/api"
	"github.com/jrsteele09/go-edoctorat/commission"
	"github.com/jrsteele09/go-edoctorat/internal/config"
	"github.com/jrsteele09/go-edoctorat/internal/fakeportal"
	"github.com/jrsteele09/go-edoctorat/portal"
	"github.com/stretchr/testify/require"
)

func TestWizard_AgainstPortal(t *testing.T) {
	backend, err := fakeportal.New(fakeportal.WithDataset(fakeportal.DemoDataset()))
	require.NoError(t, err)
	require.NoError(t, backend.Seed(fakeportal.DemoAccounts()))
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	bearer, err := backend.AccessToken("directeur.labo@uae.ac.ma")
	require.NoError(t, err)
	client := api.New(srv.URL, api.WithTokenSource(api.TokenSourceFunc(func(context.Context) (string, error) {
		return bearer, nil
	})))
	p := portal.New(client, config.Endpoints{})

	ctx := context.Background()
	w := commission.New(p.Labo)
	w.SetDetails(commission.Details{DateCommission: "2026-06-15", Heure: "10:00", Lieu: "Salle du conseil"})
	require.NoError(t, w.Next())

	profs, err := w.Professeurs(ctx)
	require.NoError(t, err)
	require.Len(t, profs, 3)
	w.SelectProfesseurs([]int64{3})
	require.NoError(t, w.Next())

	sujets, err := w.Sujets(ctx)
	require.NoError(t, err)
	require.Len(t, sujets, 2)
	w.SelectSujets([]int64{11})
	require.NoError(t, w.Next())

	candidats, err := w.Candidats(ctx)
	require.NoError(t, err)
	require.Len(t, candidats, 2)
	w.SelectCandidats([]string{candidats[0].CNE})

	created, err := w.Submit(ctx)
	require.NoError(t, err)
	require.Equal(t, "Salle du conseil", created.Lieu)

	stored := backend.Commissions()
	require.Len(t, stored, 1)
	require.Equal(t, int64(7), stored[0].Labo)
	require.Len(t, stored[0].Participants, 1)
	require.Equal(t, int64(3), stored[0].Participants[0].ID)
	require.Equal(t, commission.StepDetails, w.Step())
}
