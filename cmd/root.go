package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/ews-cli/internal/config"
	"github.com/KaramelBytes/ews-cli/internal/logger"
	"github.com/KaramelBytes/ews-cli/internal/parser"
	"github.com/KaramelBytes/ews-cli/internal/rules"
	"github.com/KaramelBytes/ews-cli/internal/runner"
	"github.com/KaramelBytes/ews-cli/internal/table"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "ews",
	Short: "Fraud early-warning-signal rules over meeting and loan extracts",
	Long: `ews runs the fraud early-warning-signal rules over a CSV, TSV or XLSX extract:

  rule1  Unique Center Per BM Per Day
  rule2  Loan Status Funnel

Reports are printed as a table and can be saved as XLSX or CSV. "ews serve"
exposes the same rules over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.ews/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults so read-only commands keep working
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Default()
	}
	cfg = c

	lc := &logger.Config{Level: cfg.LogLevel, Output: os.Stderr, JSON: cfg.LogJSON}
	if debug {
		lc.Level = "debug"
	}
	logger.Init(lc)
}

// currentConfig returns the loaded configuration, or defaults when commands
// run without cobra initialization.
func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		return cfgpkg.Default()
	}
	return cfg
}

// Input flags shared by commands that read a dataset.
type inputFlags struct {
	encoding   string
	delimiter  string
	sheetName  string
	sheetIndex int
}

func (f *inputFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&f.encoding, "encoding", "", "CSV/TSV text encoding: latin1|utf8 (default from config)")
	c.Flags().StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab' (default by extension)")
	c.Flags().StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to read")
	c.Flags().IntVar(&f.sheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

func (f *inputFlags) options(c *cfgpkg.Global) (parser.Options, error) {
	opt := parser.Options{
		Encoding:   c.InputEncoding,
		SheetName:  f.sheetName,
		SheetIndex: f.sheetIndex,
	}
	if f.encoding != "" {
		opt.Encoding = f.encoding
	}
	switch f.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case ";":
		opt.Delimiter = ';'
	case "|":
		opt.Delimiter = '|'
	case "\t", "tab":
		opt.Delimiter = '\t'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", f.delimiter)
	}
	return opt, nil
}

func (f *inputFlags) load(path string, c *cfgpkg.Global) (table.Table, error) {
	opt, err := f.options(c)
	if err != nil {
		return table.Table{}, err
	}
	t, err := parser.ParseFile(path, opt)
	if err != nil {
		return table.Table{}, err
	}
	logger.Debug("loaded input", "path", path, "rows", t.Len(), "columns", len(t.Header))
	return t, nil
}

func newRunner(c *cfgpkg.Global) *runner.Runner {
	return runner.New(rules.New(rules.Options{DateLayouts: c.DateLayouts}), logger.Default())
}
