package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/windoze95/shopcompare-api/internal/app"
	"github.com/windoze95/shopcompare-api/internal/config"
	"github.com/windoze95/shopcompare-api/internal/logger"
)

// appFactory builds the App for a command. Tests replace it.
type appFactory func(ctx context.Context) (*app.App, error)

func main() {
	logger.Init(os.Getenv("SHOPCOMPARE_DEBUG") != "")
	defer logger.Sync()

	if err := newRootCmd(appFromEnv).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// appFromEnv loads configuration from the environment, the same way the
// API server does.
func appFromEnv(ctx context.Context) (*app.App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.CheckConfigEnvFields(); err != nil {
		return nil, err
	}
	return app.New(ctx, cfg)
}

func newRootCmd(newApp appFactory) *cobra.Command {
	root := &cobra.Command{
		Use:   "shopcompare",
		Short: "Compare product prices across Taiwanese marketplaces",
		Long: `shopcompare searches momo, PChome, Shopee and Coupang listings for a
product keyword and prints them sorted by price, with a link to each
marketplace's search page.

With an AI credential configured (AI_API_KEY, GOOGLE_API_KEY,
ANTHROPIC_API_KEY or OPENAI_API_KEY) searches use a generative model;
otherwise the built-in sample catalog is searched.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newSearchCmd(newApp),
		newHistoryCmd(newApp),
		newPlatformsCmd(),
	)
	return root
}
