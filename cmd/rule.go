package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/ews-cli/internal/config"
	"github.com/KaramelBytes/ews-cli/internal/logger"
	"github.com/KaramelBytes/ews-cli/internal/report"
	"github.com/KaramelBytes/ews-cli/internal/rules"
	"github.com/KaramelBytes/ews-cli/internal/utils"
)

type ruleFlags struct {
	input  inputFlags
	limit  int
	quiet  bool
	output string
	format string
	save   bool
}

// newRuleCmd builds the "ews <rule id> <file>" command for one catalog entry.
func newRuleCmd(def rules.Definition) *cobra.Command {
	f := &ruleFlags{}
	c := &cobra.Command{
		Use:   def.ID + " <file>",
		Short: fmt.Sprintf("Run %q over a CSV/TSV/XLSX extract", def.Title),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := currentConfig()
			t, err := f.input.load(args[0], conf)
			if err != nil {
				return err
			}
			res, err := newRunner(conf).Run(def.ID, t)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(res.Report.Records()) == 0 {
				logger.Warn("report has no rows", "rule", def.ID, "input_rows", res.Input)
			}
			if !f.quiet {
				limit := conf.DisplayLimit
				if cmd.Flags().Changed("limit") {
					limit = f.limit
				}
				fmt.Fprintf(out, "%s (%d rows)\n", def.Title, len(res.Report.Records()))
				report.Print(out, res.Report, limit)
			}

			path, format, err := f.destination(def, conf)
			if err != nil || path == "" {
				return err
			}
			if err := report.WriteFile(path, res.Report, format); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Fprintf(out, "✓ Wrote %s\n", path)
			return nil
		},
	}
	c.Flags().IntVar(&f.limit, "limit", 0, "rows to print (0 = all; default from config display_limit)")
	c.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "do not print the report table")
	c.Flags().StringVarP(&f.output, "output", "o", "", "write the report to this path (.xlsx or .csv)")
	c.Flags().StringVar(&f.format, "format", "", "output format: xlsx|csv (default from extension or config)")
	c.Flags().BoolVar(&f.save, "save", false, fmt.Sprintf("write %s.<format> into output_dir", def.OutputBase))
	f.input.register(c)
	return c
}

// destination resolves where the report goes. An empty path means print only.
func (f *ruleFlags) destination(def rules.Definition, conf *cfgpkg.Global) (string, report.Format, error) {
	fallback, err := report.ParseFormat(conf.OutputFormat)
	if err != nil {
		return "", "", err
	}
	if f.format != "" {
		if fallback, err = report.ParseFormat(f.format); err != nil {
			return "", "", err
		}
	}
	switch {
	case f.output != "":
		if f.format != "" {
			return f.output, fallback, nil
		}
		return f.output, report.FormatFromPath(f.output, fallback), nil
	case f.save:
		name := def.OutputBase + "." + string(fallback)
		return utils.UniquePath(filepath.Join(conf.OutputDir, name)), fallback, nil
	}
	return "", "", nil
}

func init() {
	for _, def := range rules.Catalog {
		rootCmd.AddCommand(newRuleCmd(def))
	}
}
