package cli

import (
	"context"
	"fmt"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-edoctorat/internal/errors"
	"github.com/spf13/cobra"
)

// Command builds the command tree.
func (a *App) Command() *cobra.Command {
	var output string
	root := &cobra.Command{
		Use:   "edoctorat",
		Short: "Command-line client for the e-Doctorat portal",
		Long: `A command-line client for the e-Doctorat doctoral admissions portal.
Sign in once with 'auth login'; the session is kept in the session file and
refreshed automatically while the refresh token is valid.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			format, err := ParseFormat(output)
			if err != nil {
				return err
			}
			a.format = format
			return a.setup()
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetIn(a.stdin)

	root.PersistentFlags().StringVar(&a.baseURL, "base-url", "", "portal base URL (default API_BASE_URL)")
	root.PersistentFlags().StringVar(&a.sessionFile, "session-file", "", "where the session tokens are kept (default SESSION_FILE)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (default LOG_LEVEL)")
	addFormatFlag(root, &output)

	root.AddCommand(
		a.versionCommand(),
		a.authCommand(),
		a.dashboardCommand(),
		a.meCommand(),
		a.candidatCommand(),
		a.professeurCommand(),
		a.laboCommand(),
		a.poleCommand(),
		a.cedCommand(),
		a.scolariteCommand(),
	)
	return root
}

// Execute runs the command line and prints failures the way the portal
// shows them to users.
func (a *App) Execute(ctx context.Context, args []string) error {
	root := a.Command()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(a.stderr, "Error:", errors.FriendlyMessage(err))
	}
	return err
}

func (a *App) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			banner := figure.NewFigure(a.cfg.GetAppName(), "cybermedium", true)
			fmt.Fprintln(a.stdout, banner.String())
			fmt.Fprintf(a.stdout, "version %s\n", a.version)
			return nil
		},
	}
}
