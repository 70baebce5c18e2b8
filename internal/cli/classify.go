package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/hsclassify/internal/core"
	"github.com/JonMunkholm/hsclassify/internal/hscode"
)

func classifyCmd(factory serviceFactory) *cobra.Command {
	var country string

	cmd := &cobra.Command{
		Use:   "classify <description>",
		Short: "Classify one product description",
		Long: `Ask the model for the tariff code of a product and print it formatted
for the jurisdiction.

Examples:
  hscode classify "men's cotton t-shirt" --country US
  hscode classify frozen shrimp -c EU`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := factory(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			c, err := svc.Classify(cmd.Context(), strings.Join(args, " "), hscode.Jurisdiction(country))
			if err != nil {
				return userError(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, c.Code)
			if !c.Matched {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s answer had no well-formed code (%q), confidence %.1f\n",
					warnLabel("LOW"), c.Raw, c.Confidence)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&country, "country", "c", "", "jurisdiction ID (e.g. US, EU, JP)")

	return cmd
}

func batchCmd(factory serviceFactory) *cobra.Command {
	var (
		country string
		out     string
	)

	cmd := &cobra.Command{
		Use:   "batch <file.xlsx>",
		Short: "Classify every row of a workbook",
		Long: `Read product descriptions from the active sheet of an .xlsx workbook
(column titled "Description", else the first column) and write a copy with
HSC Code, Confidence and Status columns appended.

Examples:
  hscode batch products.xlsx --country US
  hscode batch products.xlsx -c MX -o classified.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if out == "" {
				out = strings.TrimSuffix(path, filepath.Ext(path)) + "_hsc.xlsx"
			}

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			wb, err := core.ParseWorkbook(filepath.Base(path), f, 0)
			if err != nil {
				return userError(err)
			}

			svc, cleanup, err := factory(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			report, err := svc.ClassifyWorkbook(cmd.Context(), wb, hscode.Jurisdiction(country))
			if err != nil {
				return userError(err)
			}

			data, err := core.AnnotateWorkbook(wb, report)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}

			printReport(cmd, report)
			fmt.Fprintf(cmd.OutOrStdout(), "\nWrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&country, "country", "c", "", "jurisdiction ID (e.g. US, EU, JP)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output workbook (default: <file>_hsc.xlsx)")

	return cmd
}

func printReport(cmd *cobra.Command, report *core.BatchReport) {
	w := cmd.OutOrStdout()
	for _, r := range report.Rows {
		switch r.Status {
		case core.StatusOK:
			fmt.Fprintf(w, "%4d  %s  %-14s %s\n", r.Index+2, okLabel("OK  "), r.Code, r.Description)
		case core.StatusSkipped:
			fmt.Fprintf(w, "%4d  %s  %-14s %s\n", r.Index+2, warnLabel("SKIP"), "-", "(blank)")
		default:
			fmt.Fprintf(w, "%4d  %s  %-14s %s\n", r.Index+2, failLabel("FAIL"), "-", r.Description)
		}
	}
	fmt.Fprintf(w, "\nProcessed %d rows: %s ok, %s failed, %s skipped\n",
		report.TotalProcessed,
		okLabel(report.Successful),
		failLabel(report.Failed),
		warnLabel(report.Skipped),
	)
}
