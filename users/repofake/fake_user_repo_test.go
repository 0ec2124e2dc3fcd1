package fakeuserrepo_test

import (
	"testing"

	"github.com/jrsteele09/go-edoctorat/internal/errors"
	"github.com/jrsteele09/go-edoctorat/users"
	fakeuserrepo "github.com/jrsteele09/go-edoctorat/users/repofake"
	"github.com/stretchr/testify/require"
)

func TestFakeUserRepo(t *testing.T) {
	repo := fakeuserrepo.NewFakeUserRepo()

	u := &users.User{Email: "Prof@Uae.ac.ma", Roles: []string{"professeur"}}
	require.NoError(t, u.SetPassword("secret"))
	require.NoError(t, repo.Upsert(u))
	require.NotEmpty(t, u.ID)

	got, err := repo.GetByEmail("prof@uae.ac.ma")
	require.NoError(t, err)
	require.True(t, got.CheckPassword("secret"))
	require.False(t, got.CheckPassword("wrong"))
	require.True(t, got.HasRole("professeur"))

	require.NoError(t, repo.SetVerified(u.Email, true))
	got, err = repo.GetByID(u.ID)
	require.NoError(t, err)
	require.True(t, got.Verified)

	list, total, err := repo.List(0, 10)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, list, 1)

	require.NoError(t, repo.Delete(u.Email))
	_, err = repo.GetByEmail(u.Email)
	require.ErrorIs(t, err, errors.ErrNotFound)
	require.ErrorIs(t, repo.SetBlocked(u.Email, true), errors.ErrNotFound)
}
