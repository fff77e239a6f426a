package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"invoicebridge/internal/config"
	"invoicebridge/internal/logger"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "invoicectl",
	Short: "Work with electronic supplier invoices from the command line",
	Long: `invoicectl reads electronic invoice bundles the same way the API does.

preview runs the full extraction, detection and validation pipeline against
an empty in-memory catalog and prints the result, so a bundle can be checked
before it is uploaded. token issues access tokens signed with the configured
secret.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logCfg := logger.DefaultConfig()
		logCfg.Level = cfg.Log.Level
		if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
			logCfg.Level = "error"
		}
		if err := logger.Setup(logCfg); err != nil {
			return err
		}
		appConfig = cfg
		return nil
	},
}

// appConfig is loaded before any subcommand runs.
var appConfig *config.Config

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Debug().Err(err).Msg("command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the invoicectl version",
	Args:  cobra.NoArgs,
	// Skips config loading.
	PersistentPreRun: func(*cobra.Command, []string) {},
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "invoicectl", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Only log errors")
	rootCmd.AddCommand(previewCmd, tokenCmd, versionCmd)
}
