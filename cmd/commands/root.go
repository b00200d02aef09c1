package commands

// Root command for Cobra CLI
// Running it without a subcommand renders the chart, same as "render"
// Registers subcommands (render, data, publish) and the shared flags

import (
	"fmt"

	"sales-chart/internal/features/charts"
	"sales-chart/internal/infra/config"
	logging "sales-chart/internal/infra/log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sales-chart",
		Short: "Generate synthetic monthly sales and render them as a line chart",
		Long: `sales-chart generates seeded synthetic monthly revenue for a few product categories
and renders it as a styled multi-series line chart to a PNG file. The chart can also be
delivered to a Telegram chat.`,
		Version:       "1.0.0",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRender,
	}

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Config file (default ./config.yaml)")
	pf.String("log-dir", "logs", "Directory for app.log (env: SALESCHART_APP_LOG_DIR)")
	pf.StringP("output", "o", "chart.png", "Output PNG path (env: SALESCHART_CHART_OUTPUT)")
	pf.String("engine", charts.EngineGG, "Rendering engine: gg or gochart (env: SALESCHART_CHART_ENGINE)")
	pf.String("style", "whitegrid", "Style: whitegrid, darkgrid, white, dark, ticks")
	pf.String("context", "talk", "Scaling context: paper, notebook, talk, poster")
	pf.String("palette", "tab10", "Palette: tab10, deep, muted, colorblind")
	pf.String("title", "", "Chart title")
	pf.Float64("dpi", 64, "Pixels per inch")
	pf.Int64("seed", 42, "Random seed (env: SALESCHART_DATA_SEED)")
	pf.Int("periods", 12, "Number of months")
	pf.String("start", "2023-01-01", "First month, YYYY-MM-DD")
	pf.String("categories", "", "Comma-separated category labels")
	pf.String("caption", "", "Telegram caption, HTML (env: SALESCHART_TELEGRAM_CAPTION)")

	rootCmd.Flags().Bool("publish", false, "Also send the chart to Telegram")

	rootCmd.AddCommand(newRenderCmd())
	rootCmd.AddCommand(newDataCmd())
	rootCmd.AddCommand(newPublishCmd())

	return rootCmd
}

func Execute() error {
	return newRootCmd().Execute()
}

// setup loads the configuration for cmd and starts logging.
// Callers must defer logging.Sync.
func setup(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logging.Init(cfg.App.LogDir); err != nil {
		return nil, fmt.Errorf("failed to init logging: %w", err)
	}
	logging.LogDebug("Config loaded",
		zap.String("command", cmd.Name()),
		zap.String("output", cfg.Chart.Output),
		zap.String("engine", cfg.Chart.Engine),
		zap.Int64("seed", cfg.Data.Seed))
	return cfg, nil
}
