package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/hsclassify/internal/hscode"
)

func formatCmd() *cobra.Command {
	var (
		country string
		lengths []string
	)

	cmd := &cobra.Command{
		Use:   "format <code>",
		Short: "Format a raw code for a jurisdiction",
		Long: `Strip every non-digit, fit the digits to the jurisdiction's code length
and group them with dots. No model call is made.

Examples:
  hscode format 610910 --country US     # 6109.10.00.00
  hscode format "8471.30.01"            # 8471.30.01
  hscode format 1234 -c JP -l JP=6      # 12.34.00`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := tableFromLengths(lengths)
			if err != nil {
				return err
			}
			f := hscode.NewFormatter(table)
			fmt.Fprintln(cmd.OutOrStdout(), f.Format(strings.Join(args, " "), hscode.Jurisdiction(country)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&country, "country", "c", "", "jurisdiction ID (e.g. US, EU, JP)")
	cmd.Flags().StringSliceVarP(&lengths, "lengths", "l", nil, "override code lengths, e.g. US=8,JP=9")

	return cmd
}

func jurisdictionsCmd() *cobra.Command {
	var lengths []string

	cmd := &cobra.Command{
		Use:     "jurisdictions",
		Aliases: []string{"countries"},
		Short:   "List known jurisdictions and their code lengths",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := tableFromLengths(lengths)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDIGITS\tSCHEDULE")
			for _, e := range table.Entries() {
				fmt.Fprintf(w, "%s\t%d\t%s\n", e.ID, e.Length, e.Label)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringSliceVarP(&lengths, "lengths", "l", nil, "override code lengths, e.g. US=8,JP=9")

	return cmd
}
