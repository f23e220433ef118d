package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/cpkdash/internal/analysis"
	"github.com/KaramelBytes/cpkdash/internal/chart"
	"github.com/KaramelBytes/cpkdash/internal/utils"
	"github.com/spf13/cobra"
)

var (
	viewName    string
	viewFormat  string
	viewOutput  string
	viewFilters filterFlags
)

var viewCmd = &cobra.Command{
	Use:   "view <file>",
	Short: "Filter a fleet table and render one dashboard view",
	Long: `Render one of the dashboard views over the filtered rows:

  fleet    mean CPK per fleet and the lowest CPK units
  box      CPK distribution per unit
  trend    mean CPK per date
  heatmap  mean CPK per unit and week
  scatter  mean CPK against total kilometers
  table    the filtered rows`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := analysis.ParseView(viewName)
		if err != nil {
			return err
		}
		sel, err := selectRows(args[0], &viewFilters)
		if err != nil {
			return err
		}
		proj, err := analysis.Build(v, sel.Table)
		if err != nil {
			return err
		}

		var out []byte
		switch strings.ToLower(viewFormat) {
		case "markdown", "md":
			var b strings.Builder
			b.WriteString("# " + v.Title() + "\n\n")
			if sel.Ranking != nil {
				b.WriteString(sel.Ranking.Markdown() + "\n")
			}
			b.WriteString(proj.Markdown())
			out = []byte(b.String())
		case "json":
			payload := map[string]any{"view": v, "title": v.Title(), "rows": sel.Table.Len(), "data": proj}
			if sel.Ranking != nil {
				payload["ranking"] = sel.Ranking
			}
			if out, err = utils.PrettyJSON(payload); err != nil {
				return err
			}
		case "png":
			if out, err = chart.Render(v, proj, currentConfig().ChartOptions()); err != nil {
				return err
			}
			if viewOutput == "" {
				viewOutput = filepath.Join(".", string(v)+".png")
			}
		default:
			return fmt.Errorf("unsupported --format: %s (use markdown|json|png)", viewFormat)
		}

		if viewOutput == "" {
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		}
		if err := utils.SafeWriteFile(viewOutput, out); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s view (%d rows) to %s\n", v, sel.Table.Len(), viewOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(viewCmd)
	viewCmd.Flags().StringVarP(&viewName, "view", "v", string(analysis.ViewFleet), "view: fleet|box|trend|heatmap|scatter|table")
	viewCmd.Flags().StringVarP(&viewFormat, "format", "f", "markdown", "output format: markdown|json|png")
	viewCmd.Flags().StringVarP(&viewOutput, "output", "o", "", "write to this path instead of stdout (png defaults to <view>.png)")
	viewFilters.register(viewCmd.Flags())
}
