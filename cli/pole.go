package cli

import (
	"context"
	"io"

	"github.com/jrsteele09/go-edoctorat/api"
	"github.com/jrsteele09/go-edoctorat/portal"
	"github.com/jrsteele09/go-edoctorat/roles"
	"github.com/spf13/cobra"
)

func (a *App) poleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "pole",
		Short:             "Pole director dashboard",
		PersistentPreRunE: a.areaGuard(roles.PoleDashboard),
	}

	var candidatsPage, sujetsPage, commissionsPage, inscriptionsPage api.Pagination
	candidats := &cobra.Command{
		Use:   "candidats",
		Short: "List the candidates of the pole",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.portal.Pole.Candidats(cmd.Context(), candidatsPage)
			if err != nil {
				return err
			}
			return a.render(res, func(w io.Writer) { printCandidats(w, res.Results) })
		},
	}
	addPageFlags(candidats, &candidatsPage)

	sujets := &cobra.Command{
		Use:   "sujets",
		Short: "List the subjects of the pole",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.portal.Pole.Sujets(cmd.Context(), sujetsPage)
			if err != nil {
				return err
			}
			return a.render(res, func(w io.Writer) { printSujets(w, res.Results) })
		},
	}
	addPageFlags(sujets, &sujetsPage)

	commissions := &cobra.Command{
		Use:   "commissions",
		Short: "List the commissions of the pole",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.portal.Pole.Commissions(cmd.Context(), commissionsPage)
			if err != nil {
				return err
			}
			return a.render(res, func(w io.Writer) { printCommissions(w, res.Results) })
		},
	}
	addPageFlags(commissions, &commissionsPage)

	inscriptions := &cobra.Command{
		Use:   "inscriptions",
		Short: "List the enrolments of the pole",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.portal.Pole.Inscriptions(cmd.Context(), inscriptionsPage)
			if err != nil {
				return err
			}
			return a.render(res, func(w io.Writer) { printInscriptions(w, res.Results) })
		},
	}
	addPageFlags(inscriptions, &inscriptionsPage)

	publier := &cobra.Command{
		Use:   "publier",
		Short: "Publish subjects and result lists",
	}
	publier.AddCommand(
		a.publishCommand("sujets", "Publish the subjects", (*portal.Pole).PublierSujets),
		a.publishCommand("liste-principale", "Publish the main list", (*portal.Pole).PublierListePrincipale),
		a.publishCommand("liste-attente", "Publish the waiting list", (*portal.Pole).PublierListeAttente),
	)

	cmd.AddCommand(
		candidats,
		sujets,
		commissions,
		inscriptions,
		publier,
		&cobra.Command{
			Use:   "calendrier",
			Short: "Show the campaign calendar",
			RunE: func(cmd *cobra.Command, args []string) error {
				res, err := a.portal.Pole.Calendrier(cmd.Context())
				if err != nil {
					return err
				}
				return a.render(res, func(w io.Writer) { printCalendrier(w, res) })
			},
		},
	)
	return cmd
}

// publishCommand wraps one publication call. The client only exists once
// the command runs, so publish is a method expression.
func (a *App) publishCommand(use, short string, publish func(*portal.Pole, context.Context) (*portal.Message, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := publish(a.portal.Pole, cmd.Context())
			if err != nil {
				return err
			}
			text := msg.Message
			if text == "" {
				text = msg.Detail
			}
			return a.message("%s", valueOr(text, "Published."))
		},
	}
}
