package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCmd(newApp appFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent searches",
		Long:  `Show the most recent search terms, newest first.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOutput, _ := cmd.Flags().GetBool("json")

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			terms := a.History.Terms()
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string][]string{"history": terms})
			}

			if len(terms) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No searches yet.")
				return nil
			}
			for i, term := range terms {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, term)
			}
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "Output in JSON format")
	return cmd
}
