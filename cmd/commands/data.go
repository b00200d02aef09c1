package commands

// Command to print the generated table or save it as JSON

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"sales-chart/internal/features/sales"
	"sales-chart/internal/infra/fs"
	logging "sales-chart/internal/infra/log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

func newDataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Print the generated sales table",
		Long:  `Generate the synthetic sales table and print it as text or JSON, or save it with --out.`,
		Args:  cobra.NoArgs,
		RunE:  runData,
	}
	cmd.Flags().String("format", formatTable, "Output format: table or json")
	cmd.Flags().String("out", "", "Save the table as JSON to this file instead of printing")
	return cmd
}

func runData(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")
	if format != formatTable && format != formatJSON {
		return fmt.Errorf("unknown format %q (known: %s, %s)", format, formatTable, formatJSON)
	}

	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logging.Sync()

	table, params, err := generate(cfg)
	if err != nil {
		logging.LogError("Failed to generate data", zap.Error(err))
		return err
	}

	if out != "" {
		if err := fs.SaveJSON(out, table); err != nil {
			logging.LogError("Failed to save data", zap.String("path", out), zap.Error(err))
			return err
		}
		logging.LogSuccess("Sales data saved", zap.String("path", out), zap.Int("rows", table.Len()))
		return nil
	}

	if format == formatJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(table)
	}
	return writeTable(cmd.OutOrStdout(), table, sales.Trend(params))
}

// writeTable prints every row next to its noiseless baseline. Rows run month
// by month within each category, so row i belongs to month i % len(baseline).
func writeTable(w io.Writer, table sales.Table, baseline []float64) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Month\tCategory\tRevenue\tBaseline\t")
	for i, row := range table.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t\n",
			row.Month.Format("2006-01-02"), row.Category, row.Revenue, baseline[i%len(baseline)])
	}
	return tw.Flush()
}
