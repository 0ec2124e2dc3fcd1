package auth

// Credentials is the body of the unified login endpoint.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is the answer of a successful login. Role and Groups echo what the
// backend resolved for the user; the access token stays authoritative.
type Session struct {
	Access  string   `json:"access"`
	Refresh string   `json:"refresh"`
	Role    string   `json:"role,omitempty"`
	Groups  []string `json:"groups,omitempty"`
	Email   string   `json:"email,omitempty"`

	// Profile is filled by Google sign-in, which answers with the professor's record.
	Profile *Profile `json:"-"`
}

// Profile is the professor record returned by Google sign-in.
type Profile struct {
	Email          string   `json:"email"`
	Nom            string   `json:"nom"`
	Prenom         string   `json:"prenom"`
	PathPhoto      string   `json:"pathPhoto,omitempty"`
	Grade          string   `json:"grade,omitempty"`
	Groups         []string `json:"groups,omitempty"`
	NombreProposer int      `json:"nombreProposer,omitempty"`
	NombreEncadrer int      `json:"nombreEncadrer,omitempty"`
}

// googleResponse flattens the profile and token pair of the Google endpoint.
type googleResponse struct {
	Profile
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Registration is the candidate pre-registration form.
type Registration struct {
	Nom             string `json:"nom"`
	Prenom          string `json:"prenom"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
}

// PasswordReset completes a reset started by RequestPasswordReset.
type PasswordReset struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

type emailRequest struct {
	Email string `json:"email"`
}

// Message is the acknowledgement returned by the verification and reset endpoints.
type Message struct {
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

func (m Message) String() string {
	if m.Message != "" {
		return m.Message
	}
	return m.Detail
}
