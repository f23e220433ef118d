package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/cpkdash/internal/analysis"
	"github.com/KaramelBytes/cpkdash/internal/dataset"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <files...>",
	Short: "Show columns, missing values and filter options of fleet tables",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		out := cmd.OutOrStdout()
		var failed int
		for i, path := range files {
			if len(files) > 1 {
				fmt.Fprintf(out, "[%d/%d] %s\n", i+1, len(files), path)
			}
			tbl, err := loadTable(path)
			if err != nil {
				if len(files) == 1 {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ %s: %v\n", path, err)
				failed++
				continue
			}
			fmt.Fprint(out, summarize(tbl))
			fmt.Fprintln(out)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed to load", failed, len(files))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

// expandInputs resolves globs, keeps literal paths that exist and drops duplicates.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

func summarize(tbl *dataset.Table) string {
	var missDate, missCPK, missKm int
	for _, r := range tbl.Rows {
		if r.Date == nil {
			missDate++
		}
		if r.CPK == nil {
			missCPK++
		}
		if r.Km == nil {
			missKm++
		}
	}
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	b.WriteString(fmt.Sprintf("File: %s\n", tbl.Name))
	b.WriteString(fmt.Sprintf("Rows: %d\n", tbl.Len()))
	b.WriteString(fmt.Sprintf("Columns: %s\n", strings.Join(tbl.Columns, ", ")))
	b.WriteString(fmt.Sprintf("Missing or unreadable: %s %d, %s %d, %s %d\n\n",
		dataset.ColDate, missDate, dataset.ColCPK, missCPK, dataset.ColKm, missKm))
	b.WriteString(analysis.OptionsFor(tbl).Markdown())
	return b.String()
}
