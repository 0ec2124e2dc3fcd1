package auth_test

import (
	"testing"

	"github.com/jrsteele09/go-edoctorat/auth"
	"github.com/jrsteele09/go-edoctorat/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{"a@b.ma", " y.amrani@etu.ma ", "first.last+tag@uae.ac.ma"}
	for _, email := range valid {
		require.NoError(t, auth.ValidateEmail(email), email)
	}

	invalid := []string{"", "plain", "a@b", "Name <a@b.ma>", "a@@b.ma"}
	for _, email := range invalid {
		require.ErrorIs(t, auth.ValidateEmail(email), errors.ErrValidation, email)
	}
}

func TestRegistration_Validate(t *testing.T) {
	reg := auth.Registration{Nom: "Berrada", Prenom: "Omar", Email: "o@etu.ma", Password: "abc", ConfirmPassword: "abc"}
	require.NoError(t, reg.Validate())

	tests := []struct {
		name  string
		edit  func(*auth.Registration)
		field string
	}{
		{"missing nom", func(r *auth.Registration) { r.Nom = " " }, "nom"},
		{"missing prenom", func(r *auth.Registration) { r.Prenom = "" }, "prenom"},
		{"bad email", func(r *auth.Registration) { r.Email = "o@" }, "email"},
		{"short password", func(r *auth.Registration) { r.Password, r.ConfirmPassword = "ab", "ab" }, "password"},
		{"mismatch", func(r *auth.Registration) { r.ConfirmPassword = "abd" }, "confirmPassword"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := reg
			tt.edit(&r)
			var validationErr *errors.ValidationError
			require.ErrorAs(t, r.Validate(), &validationErr)
			require.Equal(t, tt.field, validationErr.Field)
		})
	}
}

func TestPasswordReset_Validate(t *testing.T) {
	require.ErrorIs(t, auth.PasswordReset{Password: "abc", ConfirmPassword: "abc"}.Validate(), errors.ErrValidation)
	require.NoError(t, auth.PasswordReset{Token: "t", Password: "abc", ConfirmPassword: "abc"}.Validate())
}
