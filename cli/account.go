package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jrsteele09/go-edoctorat/internal/errors"
	"github.com/jrsteele09/go-edoctorat/portal"
	"github.com/spf13/cobra"
)

func (a *App) dashboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the landing page of the current user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := a.gate.AccessToken(ctx); err != nil {
				return err
			}
			role, err := a.gate.PrimaryRole(ctx)
			if err != nil {
				return err
			}
			res := map[string]string{"role": role, "dashboard": a.gate.Dashboard(ctx)}
			return a.render(res, func(w io.Writer) {
				fmt.Fprintln(w, res["dashboard"])
			})
		},
	}
}

func (a *App) meCommand() *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "me",
		Short: "Show the profile of the current user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := a.gate.AccessToken(ctx); err != nil {
				return err
			}
			var info *portal.UserInfo
			var err error
			if role != "" {
				info, err = a.portal.Account.UserInfo(ctx, role)
			} else {
				info, err = a.portal.Account.Me(ctx)
			}
			if err != nil {
				return errors.Wrapf(err, "failed to load profile")
			}
			return a.render(info, func(w io.Writer) {
				fmt.Fprintf(w, "%s %s <%s>\n", info.Prenom, info.Nom, info.Email)
				if len(info.Groups) > 0 {
					fmt.Fprintf(w, "Roles: %s\n", strings.Join(info.Groups, ", "))
				}
			})
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "show the profile as seen by one of your roles")
	return cmd
}
