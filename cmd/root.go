package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/legis-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "legis-cli",
	Short: "Legislative committee compliance checker",
	Long:  "Collects committee hearings and bills, resolves summary and vote evidence with confirmation, applies reporting-deadline and notice rules, writes per-committee artifacts.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
