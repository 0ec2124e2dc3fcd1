package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jrsteele09/go-edoctorat/api"
	"github.com/jrsteele09/go-edoctorat/portal"
	"github.com/jrsteele09/go-edoctorat/roles"
	"github.com/spf13/cobra"
)

func (a *App) candidatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "candidat",
		Short: "Candidate dashboard",
		PersistentPreRunE: a.areaGuard(roles.CandidatDashboard),
	}

	var page api.Pagination
	sujets := &cobra.Command{
		Use:   "sujets",
		Short: "List the published thesis subjects",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.portal.Candidats.PublishedSubjects(cmd.Context(), page)
			if err != nil {
				return err
			}
			return a.render(res, func(w io.Writer) { printSujets(w, res.Results) })
		},
	}
	addPageFlags(sujets, &page)

	cmd.AddCommand(
		&cobra.Command{
			Use:   "info",
			Short: "Show your dossier",
			RunE: func(cmd *cobra.Command, args []string) error {
				info, err := a.portal.Candidats.Info(cmd.Context())
				if err != nil {
					return err
				}
				return a.render(info, func(w io.Writer) {
					fmt.Fprintf(w, "%s %s (CNE %s)\n", info.Prenom, info.Nom, emptyOr(info.CNE))
					fmt.Fprintf(w, "Dossier: %s\n", dossierState(info.EtatDossier))
					if info.CommentaireScolarite != "" {
						fmt.Fprintf(w, "Comment: %s\n", info.CommentaireScolarite)
					}
				})
			},
		},
		&cobra.Command{
			Use:   "parcours",
			Short: "List your diplomas",
			RunE: func(cmd *cobra.Command, args []string) error {
				res, err := a.portal.Candidats.Parcours(cmd.Context())
				if err != nil {
					return err
				}
				return a.render(res, func(w io.Writer) {
					table(w, "ID\tTYPE\tINTITULE\tMENTION\tETABLISSEMENT", func(w io.Writer) {
						for _, d := range res.Results {
							fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", d.ID, d.Type, d.Intitule, emptyOr(d.Mention), emptyOr(d.Etablissement))
						}
					})
				})
			},
		},
		&cobra.Command{
			Use:   "postulations",
			Short: "List your applications",
			RunE: func(cmd *cobra.Command, args []string) error {
				res, err := a.portal.Candidats.Postulations(cmd.Context())
				if err != nil {
					return err
				}
				return a.render(res, func(w io.Writer) {
					table(w, "ID\tSUJET\tETAT", func(w io.Writer) {
						for _, p := range res.Results {
							fmt.Fprintf(w, "%d\t%s\t%s\n", p.ID, sujetTitre(p.Sujet), emptyOr(p.Etat))
						}
					})
				})
			},
		},
		&cobra.Command{
			Use:   "postuler <sujet-id>",
			Short: "Apply to a subject",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				p, err := a.portal.Candidats.Postuler(cmd.Context(), id)
				if err != nil {
					return err
				}
				return a.render(p, func(w io.Writer) {
					fmt.Fprintf(w, "Application %d recorded.\n", p.ID)
				})
			},
		},
		&cobra.Command{
			Use:   "retirer <postulation-id>",
			Short: "Withdraw an application",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				if err := a.portal.Candidats.RetirerPostulation(cmd.Context(), id); err != nil {
					return err
				}
				return a.message("Application %d withdrawn.", id)
			},
		},
		&cobra.Command{
			Use:   "notifications",
			Short: "List convocations and results",
			RunE: func(cmd *cobra.Command, args []string) error {
				res, err := a.portal.Candidats.Notifications(cmd.Context())
				if err != nil {
					return err
				}
				return a.render(res, func(w io.Writer) {
					table(w, "ID\tTYPE\tSUJET\tCOMMISSION", func(w io.Writer) {
						for _, n := range res.Results {
							when := "-"
							if n.Commission != nil {
								when = n.Commission.DateCommission + " " + n.Commission.Heure + " " + n.Commission.Lieu
							}
							fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", n.ID, emptyOr(n.Type), sujetTitre(n.Sujet), when)
						}
					})
				})
			},
		},
		sujets,
	)
	return cmd
}

// areaGuard runs the root setup, then checks the dashboard area.
func (a *App) areaGuard(dashboard string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if root := cmd.Root(); root.PersistentPreRunE != nil {
			if err := root.PersistentPreRunE(cmd, args); err != nil {
				return err
			}
		}
		return a.requireArea(cmd.Context(), dashboard)
	}
}

func addPageFlags(cmd *cobra.Command, page *api.Pagination) {
	cmd.Flags().IntVar(&page.Limit, "limit", 0, "page size")
	cmd.Flags().IntVar(&page.Offset, "offset", 0, "index of the first result")
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id: %q", s)
	}
	return id, nil
}

func sujetTitre(s *portal.Sujet) string {
	if s == nil {
		return "-"
	}
	return s.Titre
}

func professeurName(p *portal.Professeur) string {
	if p == nil {
		return "-"
	}
	return p.FullName()
}

func printSujets(w io.Writer, sujets []portal.Sujet) {
	table(w, "ID\tTITRE\tDIRECTEUR\tCO-DIRECTEUR\tPUBLIE", func(w io.Writer) {
		for _, s := range sujets {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", s.ID, s.Titre, professeurName(s.Professeur), professeurName(s.CoDirecteur), yesNo(s.Publier))
		}
	})
}

func printCandidats(w io.Writer, candidats []portal.Candidat) {
	table(w, "ID\tCNE\tNOM\tPRENOM\tEMAIL\tDOSSIER", func(w io.Writer) {
		for _, c := range candidats {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", c.ID, emptyOr(c.CNE), c.Nom, c.Prenom, emptyOr(c.Email), dossierState(c.EtatDossier))
		}
	})
}

func printCommissions(w io.Writer, commissions []portal.Commission) {
	table(w, "ID\tDATE\tHEURE\tLIEU\tVALIDEE", func(w io.Writer) {
		for _, c := range commissions {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", c.ID, c.DateCommission, c.Heure, c.Lieu, yesNo(c.Valider))
		}
	})
}

func printExaminers(w io.Writer, examiners []portal.Examiner) {
	table(w, "ID\tCNE\tSUJET\tDOSSIER\tENTRETIEN\tDECISION\tVALIDE", func(w io.Writer) {
		for _, e := range examiners {
			fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%.2f\t%s\t%s\n", e.ID, emptyOr(e.CNE), sujetTitre(e.Sujet), e.NoteDossier, e.NoteEntretien, emptyOr(e.Decision), yesNo(e.Valider))
		}
	})
}

func printInscriptions(w io.Writer, inscriptions []portal.Inscription) {
	table(w, "ID\tCANDIDAT\tSUJET\tVALIDEE", func(w io.Writer) {
		for _, i := range inscriptions {
			name := "-"
			if i.Candidat != nil {
				name = i.Candidat.Prenom + " " + i.Candidat.Nom
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i.ID, name, sujetTitre(i.Sujet), yesNo(i.Valider))
		}
	})
}

func printCalendrier(w io.Writer, entries []portal.Calendrier) {
	table(w, "ACTION\tDEBUT\tFIN\tPOUR", func(w io.Writer) {
		for _, c := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Action, c.DateDebut, c.DateFin, c.Pour)
		}
	})
}

func dossierState(etat *int) string {
	if etat == nil {
		return "-"
	}
	switch *etat {
	case portal.DossierValid:
		return "valide"
	case portal.DossierRejected:
		return "rejete"
	}
	return "en attente"
}
