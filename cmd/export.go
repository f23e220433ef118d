package cmd

import (
	"fmt"

	"github.com/KaramelBytes/cpkdash/internal/dataset"
	"github.com/KaramelBytes/cpkdash/internal/utils"
	"github.com/spf13/cobra"
)

var (
	exportOutput  string
	exportFilters filterFlags
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the filtered rows as CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sel, err := selectRows(args[0], &exportFilters)
		if err != nil {
			return err
		}
		b, err := sel.Table.CSV()
		if err != nil {
			return err
		}
		path := exportOutput
		if path == "" {
			path = currentConfig().ExportFilename
		}
		if path == "" {
			path = dataset.DefaultExportName
		}
		if path == "-" {
			_, err := cmd.OutOrStdout().Write(b)
			return err
		}
		if err := utils.SafeWriteFile(path, b); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d rows to %s\n", sel.Table.Len(), path)
		if sel.Ranking != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s: %d units ranked\n", sel.Ranking.Period, len(sel.Ranking.Units()))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "CSV path, '-' for stdout (default from config: TDR_datos_filtrados.csv)")
	exportFilters.register(exportCmd.Flags())
}
