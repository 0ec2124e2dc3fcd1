package oidclogin

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/jrsteele09/go-edoctorat/internal/errors"
)

type callbackResult struct {
	code string
	err  error
}

const (
	pageSuccess = "Signed in. You can close this window and return to the terminal."
	pageFailure = "Sign-in failed. Return to the terminal for details."
)

// CallbackHandler receives the provider's redirect, checks state and hands
// the authorization code to the waiting flow. Only the first valid redirect
// is delivered.
func CallbackHandler(expectedState string, results chan<- callbackResult) http.HandlerFunc {
	var once sync.Once
	deliver := func(res callbackResult) {
		once.Do(func() {
			results <- res
		})
	}

	return func(w http.ResponseWriter, r *http.Request) {
		state := r.FormValue("state")
		code := r.FormValue("code")
		errorParam := r.FormValue("error")
		errorDesc := r.FormValue("error_description")

		// A redirect carrying someone else's state is ignored rather than
		// ending the flow.
		if state != expectedState {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		// Check for authorization errors
		if errorParam != "" {
			deliver(callbackResult{err: &errors.AuthError{
				Reason:  errors.ErrOAuthRejected,
				Message: fmt.Sprintf("authorization failed: %s %s", errorParam, errorDesc),
			}})
			http.Error(w, pageFailure, http.StatusBadRequest)
			return
		}
		if code == "" {
			deliver(callbackResult{err: errors.Wrapf(errors.ErrOAuthRejected, "missing code parameter")})
			http.Error(w, pageFailure, http.StatusBadRequest)
			return
		}

		deliver(callbackResult{code: code})
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = fmt.Fprintln(w, pageSuccess)
	}
}
