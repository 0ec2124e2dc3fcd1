package users

import (
	"slices"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is a portal account as the backend stores it.
type User struct {
	ID           string    `json:"id,omitempty"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"` // never serialize
	Nom          string    `json:"nom,omitempty"`
	Prenom       string    `json:"prenom,omitempty"`
	DateJoined   time.Time `json:"date_joined,omitempty"`
	LastLogin    time.Time `json:"last_login,omitempty"`

	// Roles are portal roles such as "candidat" or "directeur_labo".
	Roles []string `json:"roles,omitempty"`
	// ProfesseurID links faculty accounts to their professor record.
	ProfesseurID int64 `json:"professeur_id,omitempty"`
	// LaboratoireID is set for lab directors.
	LaboratoireID int64 `json:"laboratoire_id,omitempty"`

	Verified bool `json:"verified,omitempty"` // Verified, has the user confirmed the e-mail address
	Blocked  bool `json:"blocked,omitempty"`  // Blocked, has the user been blocked from logging in
	LoggedIn bool `json:"loggedIn,omitempty"`
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// SetPassword replaces the stored hash.
func (u *User) SetPassword(password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

// CheckPassword checks a password against the user's hash
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.PasswordHash)
}

func (u *User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

// IsFaculty reports whether the account may use Google sign-in.
func (u *User) IsFaculty() bool {
	return u.ProfesseurID != 0
}
