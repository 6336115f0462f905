package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/politecaptcha/internal/server"
)

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the demo feedback site",
	Long: `Serves feedback forms guarded by polite spam prevention:

  /without-fallback          default CAPTCHA message
  /with-fallback             custom CAPTCHA message
  /bypass/...                same forms, CAPTCHA always bypassed
  POST /api/feedback         JSON endpoint, 403 when escalated

The keys file is hot-reloaded on change.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadSettings()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer srv.Close()

	if cfg.KeysFile != "" {
		logger.Info("keys file", "path", cfg.KeysFile, "hotReload", true)
	}
	if cfg.AuditLog != "" {
		logger.Info("audit log", "path", cfg.AuditLog)
	}
	return srv.Serve(ctx)
}
