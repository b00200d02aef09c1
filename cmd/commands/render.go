package commands

// Command to generate the synthetic table and render it to a PNG
// With --publish the saved chart is also sent to Telegram

import (
	"fmt"

	"sales-chart/internal/features/charts"
	"sales-chart/internal/features/sales"
	"sales-chart/internal/infra/config"
	logging "sales-chart/internal/infra/log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Generate the data and render the chart (default command)",
		Long:  `Generate synthetic monthly revenue, draw one line per category and save the chart as a PNG.`,
		Args:  cobra.NoArgs,
		RunE:  runRender,
	}
	cmd.Flags().Bool("publish", false, "Also send the chart to Telegram")
	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logging.Sync()

	path, err := renderChart(cfg)
	if err != nil {
		logging.LogError("Failed to render chart", zap.Error(err))
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)

	publish, _ := cmd.Flags().GetBool("publish")
	if !publish {
		return nil
	}
	return publishChart(cmd.Context(), cfg, path)
}

func generate(cfg *config.Config) (sales.Table, sales.Params, error) {
	params, err := cfg.Data.Params()
	if err != nil {
		return sales.Table{}, sales.Params{}, err
	}
	table, err := sales.Generate(params)
	if err != nil {
		return sales.Table{}, sales.Params{}, err
	}
	logging.LogInfo("Sales data generated",
		zap.Int("rows", table.Len()),
		zap.Strings("categories", table.Categories()),
		zap.Uint32("seed", params.Seed))
	return table, params, nil
}

func renderChart(cfg *config.Config) (string, error) {
	table, _, err := generate(cfg)
	if err != nil {
		return "", err
	}

	renderer, err := charts.New(cfg.Chart.Engine)
	if err != nil {
		return "", err
	}

	path := cfg.Chart.Output
	if err := charts.Save(path, renderer, table.Series(), cfg.Chart.Options()); err != nil {
		return "", err
	}
	logging.LogSuccess("Chart rendered",
		zap.String("path", path),
		zap.String("engine", cfg.Chart.Engine))
	return path, nil
}
