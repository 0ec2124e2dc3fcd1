package cli

import (
	"fmt"
	"io"

	"github.com/jrsteele09/go-edoctorat/api"
	"github.com/jrsteele09/go-edoctorat/portal"
	"github.com/jrsteele09/go-edoctorat/roles"
	"github.com/spf13/cobra"
)

func (a *App) professeurCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "professeur",
		Short:             "Professor dashboard",
		PersistentPreRunE: a.areaGuard(roles.ProfesseurDashboard),
	}

	var resultatsPage, candidatsPage, inscritsPage api.Pagination
	resultats := &cobra.Command{
		Use:   "resultats",
		Short: "List the results of your candidates",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.portal.Professeurs.Resultats(cmd.Context(), resultatsPage)
			if err != nil {
				return err
			}
			return a.render(res, func(w io.Writer) { printExaminers(w, res.Results) })
		},
	}
	addPageFlags(resultats, &resultatsPage)

	candidats := &cobra.Command{
		Use:   "candidats",
		Short: "List the applications to your subjects",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.portal.Professeurs.Candidats(cmd.Context(), candidatsPage)
			if err != nil {
				return err
			}
			return a.render(res, func(w io.Writer) {
				table(w, "ID\tCANDIDAT\tSUJET\tETAT", func(w io.Writer) {
					for _, p := range res.Results {
						name := "-"
						if p.Candidat != nil {
							name = p.Candidat.Prenom + " " + p.Candidat.Nom
						}
						fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.ID, name, sujetTitre(p.Sujet), emptyOr(p.Etat))
					}
				})
			})
		},
	}
	addPageFlags(candidats, &candidatsPage)

	inscrits := &cobra.Command{
		Use:   "inscrits",
		Short: "List the enrolled doctoral students you supervise",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.portal.Professeurs.Inscrits(cmd.Context(), inscritsPage)
			if err != nil {
				return err
			}
			return a.render(res, func(w io.Writer) { printInscriptions(w, res.Results) })
		},
	}
	addPageFlags(inscrits, &inscritsPage)

	cmd.AddCommand(
		a.professeurSujetsCommand(),
		&cobra.Command{
			Use:   "commissions",
			Short: "List the commissions you sit on",
			RunE: func(cmd *cobra.Command, args []string) error {
				res, err := a.portal.Professeurs.Commissions(cmd.Context())
				if err != nil {
					return err
				}
				return a.render(res, func(w io.Writer) { printCommissions(w, res.Results) })
			},
		},
		&cobra.Command{
			Use:   "calendrier",
			Short: "Show the campaign calendar",
			RunE: func(cmd *cobra.Command, args []string) error {
				res, err := a.portal.Professeurs.Calendrier(cmd.Context())
				if err != nil {
					return err
				}
				return a.render(res, func(w io.Writer) { printCalendrier(w, res) })
			},
		},
		resultats,
		candidats,
		inscrits,
	)
	return cmd
}

func (a *App) professeurSujetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sujets",
		Short: "List your thesis subjects",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.portal.Professeurs.Sujets(cmd.Context())
			if err != nil {
				return err
			}
			return a.render(res, func(w io.Writer) { printSujets(w, res.Results) })
		},
	}

	var in portal.SujetInput
	var coDirecteur int64
	create := &cobra.Command{
		Use:   "create",
		Short: "Propose a new subject",
		RunE: func(cmd *cobra.Command, args []string) error {
			if coDirecteur > 0 {
				in.CoDirecteurID = &coDirecteur
			}
			s, err := a.portal.Professeurs.CreateSujet(cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.render(s, func(w io.Writer) {
				fmt.Fprintf(w, "Subject %d created.\n", s.ID)
			})
		},
	}
	create.Flags().StringVar(&in.Titre, "titre", "", "title")
	create.Flags().StringVar(&in.Description, "description", "", "description")
	create.Flags().Int64Var(&in.FormationDoctoraleID, "formation", 0, "doctoral programme id")
	create.Flags().Int64Var(&coDirecteur, "co-directeur", 0, "co-supervisor professor id")
	_ = create.MarkFlagRequired("titre")
	_ = create.MarkFlagRequired("formation")

	remove := &cobra.Command{
		Use:   "delete <sujet-id>",
		Short: "Delete one of your subjects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.portal.Professeurs.DeleteSujet(cmd.Context(), id); err != nil {
				return err
			}
			return a.message("Subject %d deleted.", id)
		},
	}

	cmd.AddCommand(create, remove)
	return cmd
}
