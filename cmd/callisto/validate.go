package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fieldstack/callisto/pkg/cli"
	"fieldstack/callisto/pkg/config"
	"fieldstack/callisto/pkg/governance/budget"
)

var validateFlags struct {
	showConfig bool
	format     string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load and validate a configuration file without starting the server.

The validate command checks that the configuration parses, that every
field passes validation, and that a configured pricing file loads. It
exits non-zero on the first problem it finds.

Examples:
  # Validate the default config file
  callisto validate

  # Validate a specific file
  callisto validate --config /etc/callisto/config.yaml

  # Print the effective configuration after defaulting
  callisto validate --show-config --format json`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateFlags.showConfig, "show-config", false, "print the effective configuration")
	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// A configured pricing file must parse even when the server would
	// only read it at startup.
	if cfg.Pricing.FilePath != "" {
		if _, err := budget.LoadRates(cfg.Pricing.FilePath); err != nil {
			return config.FieldError{Field: "pricing.file_path", Message: err.Error()}
		}
	}

	fmt.Println("✓ Configuration valid")

	if validateFlags.showConfig {
		formatter := cli.NewFormatter(cli.OutputFormat(validateFlags.format))
		if err := formatter.FormatTo(os.Stdout, cfg); err != nil {
			return cli.NewCommandError("validate", err)
		}
	}

	return nil
}
