package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/politecaptcha/internal/config"
	"github.com/ppiankov/politecaptcha/internal/recaptcha"
)

var keysLocal bool

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.Flags().BoolVar(&keysLocal, "local", false, "Resolve as a local request would (allows development keys)")
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Show which CAPTCHA keys would be used",
	Long: `Resolves the CAPTCHA key pair from the environment, the keys file and
Redis, in that order. Without --local it fails the way a non-local request
would when a key is missing.`,
	RunE: runKeys,
}

type keysReport struct {
	PublicKey   string `json:"public_key"`
	PrivateKey  string `json:"private_key"`
	Development bool   `json:"development"`
	KeysFile    string `json:"keys_file,omitempty"`
	Redis       string `json:"redis,omitempty"`
}

func runKeys(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadSettings()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	sources, err := config.OpenSources(ctx, cfg)
	if err != nil {
		return err
	}
	defer sources.Close()

	pair, err := recaptcha.ResolveKeys(ctx, sources.Chain, keysLocal)
	if err != nil {
		return err
	}

	report := keysReport{
		PublicKey:   pair.Public,
		PrivateKey:  mask(pair.Private),
		Development: pair.Public == recaptcha.LocalhostPublicKey,
		KeysFile:    cfg.KeysFile,
	}
	if cfg.Redis != nil {
		report.Redis = cfg.Redis.Addr
	}
	out, _ := json.MarshalIndent(report, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

// mask keeps the last four characters of a secret.
func mask(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}
