package config

// Endpoint paths default to the routes of the portal backend. Each one can be
// overridden through the environment when the backend is mounted elsewhere.
type Endpoints struct{}

var _ EndpointConfig = Endpoints{}

func (Endpoints) GetLoginEndpoint() string {
	return GetEnv("UNIFIED_LOGIN_ENDPOINT", "/api/login")
}

func (Endpoints) GetGoogleLoginEndpoint() string {
	return GetEnv("GOOGLE_OAUTH_ENDPOINT", "/api/verify-is-prof/")
}

func (Endpoints) GetRefreshEndpoint() string {
	return GetEnv("REFRESH_TOKEN_ENDPOINT", "/api/token/refresh/")
}

func (Endpoints) GetLogoutEndpoint() string {
	return GetEnv("LOGOUT_ENDPOINT", "/api/logout")
}

func (Endpoints) GetRegisterCandidatEndpoint() string {
	return GetEnv("REGISTER_CANDIDAT_ENDPOINT", "/api/register/candidat/")
}

func (Endpoints) GetVerifyEmailEndpoint() string {
	return GetEnv("VERIFY_EMAIL_ENDPOINT", "/api/verify-email/")
}

func (Endpoints) GetResendVerificationEndpoint() string {
	return GetEnv("RESEND_VERIFICATION_ENDPOINT", "/api/resend-verification/")
}

func (Endpoints) GetRequestPasswordResetEndpoint() string {
	return GetEnv("REQUEST_PASSWORD_RESET_ENDPOINT", "/api/request-password-reset/")
}

func (Endpoints) GetPerformPasswordResetEndpoint() string {
	return GetEnv("PERFORM_PASSWORD_RESET_ENDPOINT", "/api/perform-password-reset/")
}

func (Endpoints) GetCurrentUserEndpoint() string {
	return GetEnv("CURRENT_USER_ENDPOINT", "/api/user/me")
}
