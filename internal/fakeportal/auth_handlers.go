package fakeportal

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-edoctorat/portal"
	"github.com/jrsteele09/go-edoctorat/roles"
	tokenjwt "github.com/jrsteele09/go-edoctorat/token/jwt"
	"github.com/jrsteele09/go-edoctorat/users"
	"github.com/rs/zerolog/log"
)

// EmailNotVerified is the error code of a login refused until the address is confirmed.
const EmailNotVerified = "EMAIL_NOT_VERIFIED"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Access  string   `json:"access"`
	Refresh string   `json:"refresh"`
	Role    string   `json:"role"`
	Groups  []string `json:"groups"`
	Email   string   `json:"email"`
}

func (p *Portal) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeBody(r, &req); err != nil || req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "Bad Request", "Email and password are required")
			return
		}

		user, err := p.users.GetByEmail(req.Email)
		if err != nil || !user.CheckPassword(req.Password) {
			writeError(w, http.StatusUnauthorized, "Unauthorized", "Invalid credentials")
			return
		}
		if user.Blocked {
			writeError(w, http.StatusForbidden, "Forbidden", "Account is blocked")
			return
		}
		if !user.Verified {
			writeError(w, http.StatusForbidden, EmailNotVerified, "Please verify your email address before logging in")
			return
		}

		access, refresh, err := p.tokenPair(user)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
			return
		}
		p.markLoggedIn(user, true)
		writeJSON(w, http.StatusOK, loginResponse{
			Access:  access,
			Refresh: refresh,
			Role:    roles.Primary(user.Roles),
			Groups:  user.Roles,
			Email:   user.Email,
		})
	}
}

type googleLoginResponse struct {
	Email          string   `json:"email"`
	Nom            string   `json:"nom"`
	Prenom         string   `json:"prenom"`
	Groups         []string `json:"groups"`
	NombreProposer int      `json:"nombreProposer"`
	NombreEncadrer int      `json:"nombreEncadrer"`
	Access         string   `json:"access"`
	Refresh        string   `json:"refresh"`
}

// GoogleLoginHandler accepts an ID token of the identity provider for
// faculty accounts only.
func (p *Portal) GoogleLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Token string `json:"token"`
		}
		if err := decodeBody(r, &req); err != nil || req.Token == "" {
			writeError(w, http.StatusBadRequest, "Bad Request", "Token is required")
			return
		}
		if p.idp == nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized", "Google sign-in is not available")
			return
		}

		email, err := p.idp.verify(req.Token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized", "Invalid Google token")
			return
		}
		user, err := p.users.GetByEmail(email)
		if err != nil || !user.IsFaculty() {
			writeError(w, http.StatusForbidden, "Forbidden", "Only professors can sign in with Google")
			return
		}

		access, refresh, err := p.tokenPair(user)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
			return
		}
		p.markLoggedIn(user, true)
		writeJSON(w, http.StatusOK, googleLoginResponse{
			Email:   user.Email,
			Nom:     user.Nom,
			Prenom:  user.Prenom,
			Groups:  user.Roles,
			Access:  access,
			Refresh: refresh,
		})
	}
}

func (p *Portal) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.refreshCalls.Add(1)
		if d := time.Duration(p.refreshDelay.Load()); d > 0 {
			select {
			case <-time.After(d):
			case <-r.Context().Done():
				return
			}
		}
		if p.refreshFailure.Load() {
			writeError(w, http.StatusUnauthorized, "Unauthorized", "Refresh token rejected")
			return
		}

		var req struct {
			Refresh string `json:"refresh"`
		}
		if err := decodeBody(r, &req); err != nil || req.Refresh == "" {
			writeError(w, http.StatusBadRequest, "Bad Request", "Refresh token is required")
			return
		}
		subject, tokenType, err := p.issuer.Verify(req.Refresh)
		if err != nil || tokenType != "refresh" || p.isRevoked(req.Refresh) {
			writeError(w, http.StatusUnauthorized, "Unauthorized", "Invalid refresh token")
			return
		}
		user, err := p.users.GetByID(subject)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized", "Unknown user")
			return
		}

		sub := tokenjwt.Subject{ID: user.ID, Email: user.Email, Roles: user.Roles}
		access, err := p.issuer.AccessToken(sub)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
			return
		}
		resp := map[string]string{"access": access}
		if p.rotate {
			refresh, err := p.issuer.RefreshToken(sub)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
				return
			}
			p.revoke(req.Refresh)
			resp["refresh"] = refresh
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// LogoutHandler revokes the bearer used to call it.
func (p *Portal) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.logoutCalls.Add(1)
		if raw, ok := r.Context().Value(ContextKeyToken).(string); ok {
			p.revoke(raw)
		}
		if user := currentUser(r); user != nil {
			p.markLoggedIn(user, false)
		}
		writeJSON(w, http.StatusOK, message("Logged out successfully"))
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nom      string `json:"nom"`
	Prenom   string `json:"prenom"`
}

func (p *Portal) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := decodeBody(r, &req); err != nil || req.Email == "" || req.Password == "" || req.Nom == "" || req.Prenom == "" {
			writeError(w, http.StatusBadRequest, "All fields are required", "")
			return
		}
		if _, err := p.users.GetByEmail(req.Email); err == nil {
			writeError(w, http.StatusBadRequest, "An account with this email already exists", "")
			return
		}
		if _, err := p.AddUser(users.User{
			Email:  strings.TrimSpace(req.Email),
			Nom:    req.Nom,
			Prenom: req.Prenom,
			Roles:  []string{roles.Candidat},
		}, req.Password); err != nil {
			writeError(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
			return
		}
		p.issueToken(p.verifications, strings.TrimSpace(req.Email))
		writeJSON(w, http.StatusCreated, message("Registration successful. Check your email to verify your account."))
	}
}

func (p *Portal) VerifyEmailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Token string `json:"token"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Bad Request", "Token is required")
			return
		}
		email, ok := p.consumeToken(p.verifications, req.Token)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid or expired verification token", "")
			return
		}
		if err := p.users.SetVerified(email, true); err != nil {
			writeError(w, http.StatusNotFound, "Not Found", "Unknown account")
			return
		}
		writeJSON(w, http.StatusOK, message("Email verified successfully"))
	}
}

// ResendVerificationHandler answers the same way whether or not the account
// exists.
func (p *Portal) ResendVerificationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
		}
		if err := decodeBody(r, &req); err != nil || req.Email == "" {
			writeError(w, http.StatusBadRequest, "Bad Request", "Email is required")
			return
		}
		if user, err := p.users.GetByEmail(req.Email); err == nil && !user.Verified {
			p.issueToken(p.verifications, user.Email)
		}
		writeJSON(w, http.StatusOK, message("If the account exists, a verification email has been sent"))
	}
}

func (p *Portal) RequestPasswordResetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
		}
		if err := decodeBody(r, &req); err != nil || req.Email == "" {
			writeError(w, http.StatusBadRequest, "Bad Request", "Email is required")
			return
		}
		if user, err := p.users.GetByEmail(req.Email); err == nil {
			p.issueToken(p.resets, user.Email)
		}
		writeJSON(w, http.StatusOK, message("If the account exists, a password reset link has been sent"))
	}
}

func (p *Portal) PerformPasswordResetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Token    string `json:"token"`
			Password string `json:"password"`
		}
		if err := decodeBody(r, &req); err != nil || req.Password == "" {
			writeError(w, http.StatusBadRequest, "Bad Request", "Password is required")
			return
		}
		email, ok := p.consumeToken(p.resets, req.Token)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid or expired reset token", "")
			return
		}
		user, err := p.users.GetByEmail(email)
		if err != nil {
			writeError(w, http.StatusNotFound, "Not Found", "Unknown account")
			return
		}
		if err := user.SetPassword(req.Password); err != nil {
			writeError(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
			return
		}
		if err := p.users.Upsert(user); err != nil {
			writeError(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, message("Password has been reset"))
	}
}

func (p *Portal) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, userInfo(currentUser(r)))
	}
}

// UserInfoHandler serves the header profile for one of the caller's roles.
func (p *Portal) UserInfoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		if !p.guard.HasRole(user.Roles, r.PathValue("role")) {
			writeError(w, http.StatusForbidden, "Forbidden", "Role not held by the current user")
			return
		}
		writeJSON(w, http.StatusOK, userInfo(user))
	}
}

func userInfo(u *users.User) portal.UserInfo {
	return portal.UserInfo{Nom: u.Nom, Prenom: u.Prenom, Email: u.Email, Groups: u.Roles}
}

func (p *Portal) tokenPair(user *users.User) (string, string, error) {
	sub := tokenjwt.Subject{ID: user.ID, Email: user.Email, Roles: user.Roles}
	access, err := p.issuer.AccessToken(sub)
	if err != nil {
		return "", "", err
	}
	refresh, err := p.issuer.RefreshToken(sub)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (p *Portal) markLoggedIn(user *users.User, loggedIn bool) {
	if err := p.users.SetLoggedIn(user.Email, loggedIn); err != nil {
		log.Warn().Err(err).Str("email", user.Email).Msg("failed to update login state")
	}
}

func (p *Portal) revoke(raw string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.revoked[raw] = struct{}{}
}

func (p *Portal) issueToken(tokens map[string]string, email string) string {
	tok := uuid.NewString()
	p.mu.Lock()
	defer p.mu.Unlock()
	for existing, owner := range tokens {
		if owner == email {
			delete(tokens, existing)
		}
	}
	tokens[tok] = email
	return tok
}

func (p *Portal) consumeToken(tokens map[string]string, tok string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	email, ok := tokens[tok]
	if ok {
		delete(tokens, tok)
	}
	return email, ok
}
