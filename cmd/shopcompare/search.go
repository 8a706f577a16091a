package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSearchCmd(newApp appFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>...",
		Short: "Search for a product",
		Long: `Search for a product and print matching listings sorted by price.
Multiple arguments are joined with spaces.

Examples:
  shopcompare search 垃圾桶
  shopcompare search --ai 保溫瓶 500ml
  shopcompare search --json 水壺`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			aiMode, _ := cmd.Flags().GetBool("ai")
			jsonOutput, _ := cmd.Flags().GetBool("json")

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			result := a.Search.Search(cmd.Context(), strings.Join(args, " "), aiMode)

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), result)
			}

			if result.ErrorMessage != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), result.ErrorMessage)
			}
			if aiMode && !a.AI.Available() {
				fmt.Fprintln(cmd.ErrOrStderr(), "No AI credential configured; showing sample catalog results.")
			}
			if len(result.Items) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No products found for '%s'.\n", result.Term)
				return nil
			}
			return printProducts(cmd.OutOrStdout(), result.Items)
		},
	}

	cmd.Flags().Bool("ai", false, "Ask the configured AI model for listings")
	cmd.Flags().Bool("json", false, "Output in JSON format")
	return cmd
}
