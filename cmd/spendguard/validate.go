package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"expert-ai/spendguard/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validate a spendguard configuration file without running anything.

Examples:
  # Validate the default config file
  spendguard validate

  # Validate a specific file
  spendguard validate --config /etc/spendguard/spendguard.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithEnvOverrides(cfgFile)
	if err != nil {
		var verr config.ValidationError
		if errors.As(err, &verr) {
			fmt.Printf("✗ %s is invalid\n", cfgFile)
			for _, fe := range verr.Errors {
				fmt.Printf("  - %s\n", fe.Error())
			}
			return fmt.Errorf("%d validation error(s)", len(verr.Errors))
		}
		return err
	}

	fmt.Printf("✓ %s is valid\n", cfgFile)
	if verbose {
		fmt.Printf("  rules: %d\n", len(cfg.Policy.Rules))
		for _, r := range cfg.Policy.Rules {
			fmt.Printf("    - $%.2f / %s -> %s\n", r.Amount, r.Window.Std(), r.Action)
		}
		fmt.Printf("  audit backend: %s\n", cfg.Audit.Backend)
		fmt.Printf("  ledger retention: %s\n", cfg.Retention.LedgerRetention.Std())
	}
	return nil
}
