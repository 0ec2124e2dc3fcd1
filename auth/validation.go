package auth

import (
	"net/mail"
	"strings"

	"github.com/jrsteele09/go-edoctorat/internal/errors"
)

// MinPasswordLength is the shortest password the backend accepts.
const MinPasswordLength = 3

// ValidateCredentials checks the login form before it is sent.
func ValidateCredentials(email, password string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if password == "" {
		return &errors.ValidationError{Field: "password", Message: "password is required"}
	}
	return nil
}

// ValidateEmail requires a single well-formed address.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &errors.ValidationError{Field: "email", Message: "email is required"}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return &errors.ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks the length rule and that the confirmation matches.
func ValidatePassword(password, confirm string) error {
	if password == "" {
		return &errors.ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < MinPasswordLength {
		return &errors.ValidationError{Field: "password", Message: "password must be at least 3 characters long"}
	}
	if password != confirm {
		return &errors.ValidationError{Field: "confirmPassword", Message: "passwords do not match"}
	}
	return nil
}

// Validate checks the registration form before it is sent.
func (r Registration) Validate() error {
	if strings.TrimSpace(r.Nom) == "" {
		return &errors.ValidationError{Field: "nom", Message: "last name is required"}
	}
	if strings.TrimSpace(r.Prenom) == "" {
		return &errors.ValidationError{Field: "prenom", Message: "first name is required"}
	}
	if err := ValidateEmail(r.Email); err != nil {
		return err
	}
	return ValidatePassword(r.Password, r.ConfirmPassword)
}

// Validate checks the reset form before it is sent.
func (p PasswordReset) Validate() error {
	if strings.TrimSpace(p.Token) == "" {
		return &errors.ValidationError{Field: "token", Message: "reset token is missing"}
	}
	return ValidatePassword(p.Password, p.ConfirmPassword)
}
