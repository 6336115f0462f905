package cli

import (
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/ppiankov/politecaptcha/internal/config"
	"github.com/ppiankov/politecaptcha/internal/logging"
)

var (
	configPath string
	logLevel   string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config YAML (default ~/.politecaptcha/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: trace|debug|info|error (overrides config)")
}

var rootCmd = &cobra.Command{
	Use:          "politecaptcha",
	Short:        "Polite spam prevention for web forms",
	Long:         "Guards form submissions with an invisible honeypot challenge and escalates to a CAPTCHA only when the honeypot check fails.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadSettings reads the config file and builds the logger, applying the
// --log-level override.
func loadSettings() (*config.Config, logr.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, logr.Discard(), err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, logr.Discard(), err
	}
	return cfg, logger.WithName("politecaptcha"), nil
}
