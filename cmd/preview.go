package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/ews-cli/internal/report"
)

var (
	previewRows  int
	previewInput inputFlags
)

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Show the first rows of a dataset as loaded",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conf := currentConfig()
		t, err := previewInput.load(args[0], conf)
		if err != nil {
			return err
		}
		n := conf.PreviewRows
		if cmd.Flags().Changed("rows") {
			n = previewRows
		}
		head := t.Head(n)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Data Preview (Top %d Rows)\n", head.Len())
		report.Print(out, report.TableView{T: head}, 0)
		fmt.Fprintf(out, "%d rows, %d columns\n", t.Len(), len(t.Header))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().IntVarP(&previewRows, "rows", "n", 5, "number of rows to show (default from config preview_rows)")
	previewInput.register(previewCmd)
}
