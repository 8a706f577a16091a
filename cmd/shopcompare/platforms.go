package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/windoze95/shopcompare-api/internal/platform"
)

func newPlatformsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "platforms",
		Short: "List supported marketplaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOutput, _ := cmd.Flags().GetBool("json")
			platforms := platform.All()

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string][]platform.Info{"platforms": platforms})
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tNAME\tBRAND")
			for _, p := range platforms {
				fmt.Fprintf(w, "%s\t%s\t%s\n", p.Code, p.Name, p.Brand)
			}
			return w.Flush()
		},
	}

	cmd.Flags().Bool("json", false, "Output in JSON format")
	return cmd
}
