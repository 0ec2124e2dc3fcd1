package cli

import (
	"fmt"
	"io"
	"mime"
	"os"

	"github.com/jrsteele09/go-edoctorat/api"
	"github.com/jrsteele09/go-edoctorat/roles"
	"github.com/spf13/cobra"
)

func (a *App) cedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "ced",
		Short:             "CED director dashboard",
		PersistentPreRunE: a.areaGuard(roles.CEDDashboard),
	}

	var candidatsPage, sujetsPage, resultatsPage, commissionsPage, inscriptionsPage api.Pagination
	candidats := &cobra.Command{
		Use:   "candidats",
		Short: "List the candidates of the centre",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.portal.CED.Candidats(cmd.Context(), candidatsPage)
			if err != nil {
				return err
			}
			return a.render(res, func(w io.Writer) { printCandidats(w, res.Results) })
		},
	}
	addPageFlags(candidats, &candidatsPage)

	sujets := &cobra.Command{
		Use:   "sujets",
		Short: "List the subjects of the centre",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.portal.CED.Sujets(cmd.Context(), sujetsPage)
			if err != nil {
				return err
			}
			return a.render(res, func(w io.Writer) { printSujets(w, res.Results) })
		},
	}
	addPageFlags(sujets, &sujetsPage)

	resultats := &cobra.Command{
		Use:   "resultats",
		Short: "List the results of the centre",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.portal.CED.Resultats(cmd.Context(), resultatsPage)
			if err != nil {
				return err
			}
			return a.render(res, func(w io.Writer) { printExaminers(w, res.Results) })
		},
	}
	addPageFlags(resultats, &resultatsPage)

	commissions := &cobra.Command{
		Use:   "commissions",
		Short: "List the commissions of the centre",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.portal.CED.Commissions(cmd.Context(), commissionsPage)
			if err != nil {
				return err
			}
			return a.render(res, func(w io.Writer) { printCommissions(w, res.Results) })
		},
	}
	addPageFlags(commissions, &commissionsPage)

	inscriptions := &cobra.Command{
		Use:   "inscriptions",
		Short: "List the enrolments of the centre",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.portal.CED.Inscriptions(cmd.Context(), inscriptionsPage)
			if err != nil {
				return err
			}
			return a.render(res, func(w io.Writer) { printInscriptions(w, res.Results) })
		},
	}
	addPageFlags(inscriptions, &inscriptionsPage)

	var outFile string
	rapport := &cobra.Command{
		Use:   "rapport",
		Short: "Download the registration report",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.portal.CED.DownloadRegistrationReport(cmd.Context())
			if err != nil {
				return err
			}
			if outFile == "" {
				outFile = "rapport-inscription" + extensionFor(report.ContentType)
			}
			if err := os.WriteFile(outFile, report.Data, 0o644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			return a.message("Report saved to %s (%d bytes).", outFile, len(report.Data))
		},
	}
	rapport.Flags().StringVar(&outFile, "out", "", "destination file")

	cmd.AddCommand(candidats, sujets, resultats, commissions, inscriptions, rapport)
	return cmd
}

func extensionFor(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ".bin"
	}
	switch mediaType {
	case "application/pdf":
		return ".pdf"
	case "text/csv":
		return ".csv"
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return ".xlsx"
	}
	return ".bin"
}
