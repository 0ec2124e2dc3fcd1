package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jrsteele09/go-edoctorat/auth"
	"github.com/jrsteele09/go-edoctorat/roles"
	"github.com/jrsteele09/go-edoctorat/token/store"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func (a *App) authCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in, sign out and manage the account",
	}
	cmd.AddCommand(
		a.loginCommand(),
		a.googleCommand(),
		a.logoutCommand(),
		a.statusCommand(),
		a.watchCommand(),
		a.registerCommand(),
		a.verifyEmailCommand(),
		a.resendVerificationCommand(),
		a.forgotPasswordCommand(),
		a.resetPasswordCommand(),
	)
	return cmd
}

type loginResult struct {
	Email     string   `json:"email,omitempty"`
	Role      string   `json:"role,omitempty"`
	Groups    []string `json:"groups,omitempty"`
	Dashboard string   `json:"dashboard"`
}

func (a *App) loginCommand() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login [email]",
		Short: "Sign in with e-mail and password",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var email string
			if len(args) > 0 {
				email = args[0]
			}
			email, err := a.prompt("Email", email)
			if err != nil {
				return err
			}
			password, err := a.promptPassword("Password", password)
			if err != nil {
				return err
			}

			session, err := a.auth.Login(ctx, email, password)
			if err != nil {
				return err
			}
			return a.renderLogin(ctx, loginResult{Email: session.Email, Role: session.Role, Groups: session.Groups})
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password (for non-interactive use)")
	return cmd
}

func (a *App) googleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "google",
		Short: "Sign in with a Google faculty account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			idToken, err := a.googleToken(ctx)
			if err != nil {
				return err
			}
			session, err := a.auth.GoogleLogin(ctx, idToken)
			if err != nil {
				return err
			}
			return a.renderLogin(ctx, loginResult{Email: session.Email, Groups: session.Groups})
		},
	}
}

// renderLogin reports where the user lands. The role is read back from the
// stored token, which stays authoritative over the login answer.
func (a *App) renderLogin(ctx context.Context, res loginResult) error {
	if role, err := a.gate.PrimaryRole(ctx); err == nil && role != "" {
		res.Role = role
	}
	res.Dashboard = roles.DashboardFor(res.Role)
	return a.render(res, func(w io.Writer) {
		fmt.Fprintf(w, "Signed in as %s (%s)\n", emptyOr(res.Email), emptyOr(res.Role))
		fmt.Fprintf(w, "Dashboard: %s\n", res.Dashboard)
	})
}

func (a *App) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.gate.Logout(cmd.Context()); err != nil {
				return err
			}
			return a.message("Signed out.")
		},
	}
}

type statusResult struct {
	Authenticated bool       `json:"authenticated"`
	Email         string     `json:"email,omitempty"`
	Roles         []string   `json:"roles,omitempty"`
	PrimaryRole   string     `json:"primaryRole,omitempty"`
	Dashboard     string     `json:"dashboard"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	CanRefresh    bool       `json:"canRefresh"`
}

func (a *App) status(ctx context.Context) statusResult {
	res := statusResult{
		Authenticated: a.gate.IsAuthenticated(ctx),
		Dashboard:     a.gate.Dashboard(ctx),
	}
	if refresh, ok := a.tokens.Get(store.RefreshTokenKey); ok && refresh != "" {
		res.CanRefresh = true
	}
	if expiry, err := a.gate.Expiry(ctx); err == nil && !expiry.IsZero() {
		res.ExpiresAt = &expiry
	}
	if !res.Authenticated {
		return res
	}
	res.Roles, _ = a.gate.Roles(ctx)
	res.PrimaryRole, _ = a.gate.PrimaryRole(ctx)
	if info, err := a.portal.Account.Me(ctx); err == nil {
		res.Email = info.Email
	} else {
		log.Debug().Err(err).Msg("profile unavailable")
	}
	return res
}

func (a *App) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.status(cmd.Context())
			return a.render(res, func(w io.Writer) {
				a.printStatus(w, res)
			})
		},
	}
}

func (a *App) printStatus(w io.Writer, res statusResult) {
	switch {
	case res.Authenticated:
		fmt.Fprintf(w, "Signed in as %s (%s)\n", emptyOr(res.Email), emptyOr(res.PrimaryRole))
		fmt.Fprintf(w, "Roles: %v\n", res.Roles)
		if res.ExpiresAt != nil {
			fmt.Fprintf(w, "Access token valid for %v\n", time.Until(*res.ExpiresAt).Round(time.Second))
		}
	case res.CanRefresh:
		fmt.Fprintln(w, "Access token expired; it will be refreshed on the next request.")
	default:
		fmt.Fprintln(w, "Not signed in. Run 'auth login' to sign in.")
	}
	fmt.Fprintf(w, "Dashboard: %s\n", res.Dashboard)
}

// watchCommand follows the session as other processes sign in and out.
func (a *App) watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print the session state whenever it changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if file, ok := a.tokens.(*store.File); ok {
				if err := file.Watch(); err != nil {
					return err
				}
				defer file.Close()
			}
			changes, unsubscribe := a.tokens.Subscribe()
			defer unsubscribe()

			show := func() error {
				res := a.status(ctx)
				return a.render(res, func(w io.Writer) {
					fmt.Fprintf(w, "[%s] ", time.Now().Format("15:04:05"))
					a.printStatus(w, res)
				})
			}
			if err := show(); err != nil {
				return err
			}
			for {
				select {
				case <-ctx.Done():
					return nil
				case _, ok := <-changes:
					if !ok {
						return nil
					}
					if err := show(); err != nil {
						return err
					}
				}
			}
		},
	}
}

func (a *App) registerCommand() *cobra.Command {
	var reg auth.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a candidate account",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if reg.Nom, err = a.prompt("Nom", reg.Nom); err != nil {
				return err
			}
			if reg.Prenom, err = a.prompt("Prenom", reg.Prenom); err != nil {
				return err
			}
			if reg.Email, err = a.prompt("Email", reg.Email); err != nil {
				return err
			}
			if reg.Password, err = a.promptPassword("Password", reg.Password); err != nil {
				return err
			}
			if reg.ConfirmPassword, err = a.promptPassword("Confirm password", reg.ConfirmPassword); err != nil {
				return err
			}
			msg, err := a.auth.RegisterCandidat(cmd.Context(), reg)
			if err != nil {
				return err
			}
			return a.message("%s", valueOr(msg.String(), "Account created. Check your inbox to verify your e-mail."))
		},
	}
	cmd.Flags().StringVar(&reg.Nom, "nom", "", "last name")
	cmd.Flags().StringVar(&reg.Prenom, "prenom", "", "first name")
	cmd.Flags().StringVar(&reg.Email, "email", "", "e-mail address")
	cmd.Flags().StringVar(&reg.Password, "password", "", "password (for non-interactive use)")
	cmd.Flags().StringVar(&reg.ConfirmPassword, "confirm-password", "", "password confirmation (for non-interactive use)")
	return cmd
}

func (a *App) verifyEmailCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify-email <token>",
		Short: "Confirm an e-mail address with the token from the verification link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := a.auth.VerifyEmail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.message("%s", valueOr(msg.String(), "E-mail verified. You can now sign in."))
		},
	}
}

func (a *App) resendVerificationCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resend-verification <email>",
		Short: "Send the verification e-mail again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := a.auth.ResendVerification(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.message("%s", valueOr(msg.String(), "Verification e-mail sent."))
		},
	}
}

func (a *App) forgotPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "forgot-password <email>",
		Short: "Request a password reset link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := a.auth.RequestPasswordReset(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.message("%s", valueOr(msg.String(), "If the account exists, a reset link has been sent."))
		},
	}
}

func (a *App) resetPasswordCommand() *cobra.Command {
	var reset auth.PasswordReset
	cmd := &cobra.Command{
		Use:   "reset-password <token>",
		Short: "Choose a new password with the token from the reset link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reset.Token = args[0]
			var err error
			if reset.Password, err = a.promptPassword("New password", reset.Password); err != nil {
				return err
			}
			if reset.ConfirmPassword, err = a.promptPassword("Confirm password", reset.ConfirmPassword); err != nil {
				return err
			}
			msg, err := a.auth.PerformPasswordReset(cmd.Context(), reset)
			if err != nil {
				return err
			}
			return a.message("%s", valueOr(msg.String(), "Password changed. You can now sign in."))
		},
	}
	cmd.Flags().StringVar(&reset.Password, "password", "", "new password (for non-interactive use)")
	cmd.Flags().StringVar(&reset.ConfirmPassword, "confirm-password", "", "password confirmation (for non-interactive use)")
	return cmd
}
