package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/ews-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set ews configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "output_dir: %s\n", c.OutputDir)
		fmt.Fprintf(out, "output_format: %s\n", c.OutputFormat)
		fmt.Fprintf(out, "display_limit: %d\n", c.DisplayLimit)
		fmt.Fprintf(out, "input_encoding: %s\n", c.InputEncoding)
		fmt.Fprintf(out, "preview_rows: %d\n", c.PreviewRows)
		if len(c.DateLayouts) > 0 {
			fmt.Fprintf(out, "date_layouts: %s\n", strings.Join(c.DateLayouts, "; "))
		}
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(out, "log_json: %t\n", c.LogJSON)
		fmt.Fprintf(out, "serve_addr: %s\n", c.ServeAddr)
		fmt.Fprintf(out, "max_upload_mb: %d\n", c.MaxUploadMB)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long: `Set a config value and save to disk.

date_layouts takes Go time layouts separated by ';' (empty value clears them).`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		next := *cfg
		switch key {
		case "output_dir":
			next.OutputDir = val
		case "output_format":
			next.OutputFormat = strings.ToLower(val)
		case "display_limit":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for display_limit: %w", err)
			}
			next.DisplayLimit = i
		case "input_encoding":
			next.InputEncoding = strings.ToLower(val)
		case "preview_rows":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for preview_rows: %w", err)
			}
			next.PreviewRows = i
		case "date_layouts":
			next.DateLayouts = nil
			for _, l := range strings.Split(val, ";") {
				if l = strings.TrimSpace(l); l != "" {
					next.DateLayouts = append(next.DateLayouts, l)
				}
			}
		case "log_level":
			next.LogLevel = strings.ToLower(val)
		case "log_json":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for log_json: %w", err)
			}
			next.LogJSON = b
		case "serve_addr":
			next.ServeAddr = val
		case "max_upload_mb":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for max_upload_mb: %w", err)
			}
			next.MaxUploadMB = i
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := next.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(&next, cfgFile); err != nil {
			return err
		}
		cfg = &next
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
