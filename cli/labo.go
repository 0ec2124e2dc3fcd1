package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jrsteele09/go-edoctorat/api"
	"github.com/jrsteele09/go-edoctorat/commission"
	"github.com/jrsteele09/go-edoctorat/internal/utils"
	"github.com/jrsteele09/go-edoctorat/portal"
	"github.com/jrsteele09/go-edoctorat/roles"
	"github.com/spf13/cobra"
)

func (a *App) laboCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "labo",
		Short:             "Lab director dashboard",
		PersistentPreRunE: a.areaGuard(roles.LaboDashboard),
	}

	var resultatsPage api.Pagination
	resultats := &cobra.Command{
		Use:   "resultats",
		Short: "List the results of the lab's candidates",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.portal.Labo.Resultats(cmd.Context(), resultatsPage)
			if err != nil {
				return err
			}
			return a.render(res, func(w io.Writer) { printExaminers(w, res.Results) })
		},
	}
	addPageFlags(resultats, &resultatsPage)

	var decision string
	var refuse bool
	valider := &cobra.Command{
		Use:   "valider-resultat <examiner-id>",
		Short: "Validate or refuse a result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := a.portal.Labo.ValidateExaminer(cmd.Context(), id, portal.ExaminerValidation{
				Valider:  utils.Ptr(!refuse),
				Decision: decision,
			})
			if err != nil {
				return err
			}
			return a.render(e, func(w io.Writer) {
				fmt.Fprintf(w, "Result %d: valide=%s decision=%s\n", e.ID, yesNo(e.Valider), emptyOr(e.Decision))
			})
		},
	}
	valider.Flags().StringVar(&decision, "decision", "", "decision to record")
	valider.Flags().BoolVar(&refuse, "refuse", false, "refuse instead of validating")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "info",
			Short: "Show the lab and its director",
			RunE: func(cmd *cobra.Command, args []string) error {
				d, err := a.portal.Labo.Directeur(cmd.Context())
				if err != nil {
					return err
				}
				return a.render(d, func(w io.Writer) {
					fmt.Fprintf(w, "%s (%d)\n", emptyOr(d.LaboratoireNom), d.LaboratoireID)
					fmt.Fprintf(w, "Directeur: %s %s <%s>\n", d.Prenom, d.Nom, d.Email)
				})
			},
		},
		&cobra.Command{
			Use:   "professeurs",
			Short: "List the lab's professors",
			RunE: func(cmd *cobra.Command, args []string) error {
				res, err := a.portal.Labo.Professeurs(cmd.Context())
				if err != nil {
					return err
				}
				return a.render(res, func(w io.Writer) { printProfesseurs(w, res.Results) })
			},
		},
		&cobra.Command{
			Use:   "sujets",
			Short: "List the lab's subjects",
			RunE: func(cmd *cobra.Command, args []string) error {
				res, err := a.portal.Labo.Sujets(cmd.Context())
				if err != nil {
					return err
				}
				return a.render(res, func(w io.Writer) { printSujets(w, res.Results) })
			},
		},
		&cobra.Command{
			Use:   "candidats",
			Short: "List the applications to the lab's subjects",
			RunE: func(cmd *cobra.Command, args []string) error {
				res, err := a.portal.Labo.CandidatsJoined(cmd.Context())
				if err != nil {
					return err
				}
				return a.render(res, func(w io.Writer) {
					table(w, "CNE\tNOM\tPRENOM\tSUJET\tDIRECTEUR\tFORMATION", func(w io.Writer) {
						for _, p := range res {
							fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s %s\t%s\n", p.CNE, p.Nom, p.Prenom, p.SujetPostule, p.DirecteurPrenom, p.DirecteurNom, p.FormationDoctorale)
						}
					})
				})
			},
		},
		a.laboCommissionCommand(),
		resultats,
		valider,
	)
	return cmd
}

func (a *App) laboCommissionCommand() *cobra.Command {
	var page api.Pagination
	cmd := &cobra.Command{
		Use:   "commission",
		Short: "List the lab's commissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.portal.Labo.Commissions(cmd.Context(), page)
			if err != nil {
				return err
			}
			return a.render(res, func(w io.Writer) { printCommissions(w, res.Results) })
		},
	}
	addPageFlags(cmd, &page)

	cmd.AddCommand(
		a.commissionCreateCommand(),
		&cobra.Command{
			Use:   "valider <commission-id>",
			Short: "Validate a commission",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				if _, err := a.portal.Labo.ValidateCommission(cmd.Context(), id, true); err != nil {
					return err
				}
				return a.message("Commission %d validated.", id)
			},
		},
		&cobra.Command{
			Use:   "convoquer <commission-id>",
			Short: "Send the convocations of a commission",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				if err := a.portal.Labo.Convoquer(cmd.Context(), id); err != nil {
					return err
				}
				return a.message("Candidates of commission %d convoked.", id)
			},
		},
		&cobra.Command{
			Use:   "delete <commission-id>",
			Short: "Delete a commission",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				if err := a.portal.Labo.DeleteCommission(cmd.Context(), id); err != nil {
					return err
				}
				return a.message("Commission %d deleted.", id)
			},
		},
	)
	return cmd
}

// commissionCreateCommand drives the four-step wizard. Selections given as
// flags skip the matching prompt but are still checked against the listing.
func (a *App) commissionCreateCommand() *cobra.Command {
	var details commission.Details
	var professeurs, sujets []int64
	var candidats []string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a commission with its panel, subjects and candidates",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w := commission.New(a.portal.Labo)

			var err error
			if details.DateCommission, err = a.prompt("Date (YYYY-MM-DD)", details.DateCommission); err != nil {
				return err
			}
			if details.Heure, err = a.prompt("Heure (HH:MM)", details.Heure); err != nil {
				return err
			}
			if details.Lieu, err = a.prompt("Lieu", details.Lieu); err != nil {
				return err
			}
			w.SetDetails(details)
			if err := w.Next(); err != nil {
				return err
			}

			if len(professeurs) == 0 {
				if professeurs, err = a.chooseProfesseurs(ctx, w); err != nil {
					return err
				}
			}
			w.SelectProfesseurs(professeurs)
			if err := w.Next(); err != nil {
				return err
			}

			if sujets, err = a.chooseSujets(ctx, w, sujets); err != nil {
				return err
			}
			w.SelectSujets(sujets)
			if err := w.Next(); err != nil {
				return err
			}

			if candidats, err = a.chooseCandidats(ctx, w, candidats); err != nil {
				return err
			}
			w.SelectCandidats(candidats)

			created, err := w.Submit(ctx)
			if err != nil {
				return err
			}
			return a.render(created, func(w io.Writer) {
				fmt.Fprintf(w, "Commission %d created for %s %s, %s.\n", created.ID, created.DateCommission, created.Heure, created.Lieu)
			})
		},
	}
	cmd.Flags().StringVar(&details.DateCommission, "date", "", "date of the commission")
	cmd.Flags().StringVar(&details.Heure, "heure", "", "time of the commission")
	cmd.Flags().StringVar(&details.Lieu, "lieu", "", "room")
	cmd.Flags().Int64SliceVar(&professeurs, "professeurs", nil, "panel professor ids")
	cmd.Flags().Int64SliceVar(&sujets, "sujets", nil, "subject ids")
	cmd.Flags().StringSliceVar(&candidats, "candidats", nil, "candidate CNEs")
	return cmd
}

func (a *App) chooseProfesseurs(ctx context.Context, w *commission.Wizard) ([]int64, error) {
	profs, err := w.Professeurs(ctx)
	if err != nil {
		return nil, err
	}
	printProfesseurs(a.stderr, profs)
	return a.promptIDs("Professeurs (ids, comma separated)")
}

// chooseSujets loads the offered subjects and prompts only when none were given.
func (a *App) chooseSujets(ctx context.Context, w *commission.Wizard, given []int64) ([]int64, error) {
	list, err := w.Sujets(ctx)
	if err != nil {
		return nil, err
	}
	if len(given) > 0 {
		return given, nil
	}
	printSujets(a.stderr, list)
	return a.promptIDs("Sujets (ids, comma separated)")
}

func (a *App) chooseCandidats(ctx context.Context, w *commission.Wizard, given []string) ([]string, error) {
	list, err := w.Candidats(ctx)
	if err != nil {
		return nil, err
	}
	if len(given) > 0 {
		return given, nil
	}
	table(a.stderr, "CNE\tNOM\tPRENOM\tSUJET", func(out io.Writer) {
		for _, c := range list {
			fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", c.CNE, c.Nom, c.Prenom, c.SujetTitre)
		}
	})
	line, err := a.prompt("Candidats (CNEs, comma separated, empty for all)", "")
	if err != nil {
		return nil, err
	}
	if line == "" {
		cnes := make([]string, 0, len(list))
		for _, c := range list {
			cnes = append(cnes, c.CNE)
		}
		return cnes, nil
	}
	return splitList(line), nil
}

func (a *App) promptIDs(label string) ([]int64, error) {
	line, err := a.prompt(label, "")
	if err != nil {
		return nil, err
	}
	var ids []int64
	for _, field := range splitList(line) {
		id, err := parseID(field)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func splitList(line string) []string {
	var out []string
	for _, field := range strings.Split(line, ",") {
		if field = strings.TrimSpace(field); field != "" {
			out = append(out, field)
		}
	}
	return out
}

func printProfesseurs(w io.Writer, profs []portal.Professeur) {
	table(w, "ID\tNOM\tGRADE\tEMAIL", func(w io.Writer) {
		for _, p := range profs {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.ID, p.FullName(), emptyOr(p.Grade), emptyOr(p.Email))
		}
	})
}
