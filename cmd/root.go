package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jjenkins/revera/internal/config"
	"github.com/jjenkins/revera/internal/obs"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "showroom",
	Short: "Revéra luxury car showroom",
	Long: `Showroom serves the Revéra buy and rent catalog, the about and contact
pages and the sign-in / sign-up flow backed by the external auth service.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		obs.InitLogger(cfg.LogLevel)
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
