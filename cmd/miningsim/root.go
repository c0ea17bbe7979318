package miningsim

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/shreekarashastry/miningsim/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "miningsim",
	Short: "Simulate proof-of-work mining strategies and measure profit shares",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return log.Configure(log.Config{
			Level:      viper.GetString("logLevel"),
			File:       viper.GetString("logFile"),
			MaxSizeMB:  viper.GetInt("logMaxSize"),
			MaxBackups: viper.GetInt("logMaxBackups"),
		})
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-file", "", "Also write logs to this file, rotated by size")
	rootCmd.PersistentFlags().Int("log-max-size", 100, "Maximum log file size in megabytes before rotation")
	rootCmd.PersistentFlags().Int("log-max-backups", 3, "Rotated log files to keep")

	bindFlag("logLevel", "log-level")
	bindFlag("logFile", "log-file")
	bindFlag("logMaxSize", "log-max-size")
	bindFlag("logMaxBackups", "log-max-backups")

	viper.SetEnvPrefix("MININGSIM")
	viper.AutomaticEnv()

	rootCmd.AddCommand(runCmd, scenariosCmd, reportsCmd)
}

func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		log.Global.WithError(err).Fatalf("Failed to bind flag %s", flag)
	}
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Global.WithError(err).Error("Command failed")
		stop()
		os.Exit(1)
	}
}
