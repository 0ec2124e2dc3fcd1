package cli

import (
	"fmt"
	"io"

	"github.com/jrsteele09/go-edoctorat/api"
	"github.com/jrsteele09/go-edoctorat/internal/utils"
	"github.com/jrsteele09/go-edoctorat/portal"
	"github.com/jrsteele09/go-edoctorat/roles"
	"github.com/spf13/cobra"
)

func (a *App) scolariteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "scolarite",
		Short:             "Registrar dashboard",
		PersistentPreRunE: a.areaGuard(roles.ScolariteDashboard),
	}

	var page api.Pagination
	dossiers := &cobra.Command{
		Use:   "dossiers",
		Short: "List the dossiers to review",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.portal.Scolarite.Dossiers(cmd.Context(), page)
			if err != nil {
				return err
			}
			return a.render(res, func(w io.Writer) { printCandidats(w, res.Results) })
		},
	}
	addPageFlags(dossiers, &page)

	var comment string
	decide := func(use, short string, etat int) *cobra.Command {
		c := &cobra.Command{
			Use:   use + " <candidat-id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				updated, err := a.portal.Scolarite.UpdateDossier(cmd.Context(), id, portal.DossierUpdate{
					EtatDossier:          utils.Ptr(etat),
					CommentaireScolarite: comment,
				})
				if err != nil {
					return err
				}
				return a.render(updated, func(w io.Writer) {
					fmt.Fprintf(w, "Dossier %d: %s\n", id, dossierState(updated.EtatDossier))
				})
			},
		}
		c.Flags().StringVar(&comment, "comment", "", "comment shown to the candidate")
		return c
	}

	cmd.AddCommand(
		dossiers,
		decide("valider", "Accept a dossier", portal.DossierValid),
		decide("rejeter", "Reject a dossier (a comment is required)", portal.DossierRejected),
	)
	return cmd
}
