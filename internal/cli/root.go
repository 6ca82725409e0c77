// Package cli implements the cmas command line.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/erazemk/cmas/internal/config"
)

// Version is set at build time via ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "cmas",
	Short: "Clinic Medication Availability System",
	Long: `cmas tracks clinic medication stock, records usage by staff and
sends low-stock SMS alerts to administrators.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./cmas.yaml or ~/.cmas/config.yaml)")
}

func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}
