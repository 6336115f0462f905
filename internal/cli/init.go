package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/politecaptcha/internal/config"
)

var (
	initMode  string
	initForce bool
)

func init() {
	initCmd.Flags().StringVar(&initMode, "mode", "user", "Config location: user (~/.politecaptcha) or system (/etc/politecaptcha)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing config files")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Bootstrap politecaptcha configuration",
	Long: `Creates the config directory with a default config.yaml and an empty keys.yaml.

User mode (default):  writes to ~/.politecaptcha/
System mode:          writes to /etc/politecaptcha/ (requires root)`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	configDir, err := initConfigDir()
	if err != nil {
		return err
	}

	var created []string

	configFile := filepath.Join(configDir, "config.yaml")
	if wrote, err := writeIfMissing(configFile, config.DefaultConfigYAML(), 0o644); err != nil {
		return err
	} else if wrote {
		created = append(created, configFile)
	}

	// Keys are secrets.
	keysFile := filepath.Join(configDir, "keys.yaml")
	if wrote, err := writeIfMissing(keysFile, config.DefaultKeysYAML(), 0o600); err != nil {
		return err
	} else if wrote {
		created = append(created, keysFile)
	}

	out := os.Stdout
	fmt.Fprintln(out, "politecaptcha init complete.")
	fmt.Fprintln(out)
	if len(created) > 0 {
		fmt.Fprintln(out, "Created:")
		for _, path := range created {
			fmt.Fprintf(out, "  %s\n", path)
		}
	} else {
		fmt.Fprintln(out, "All files already exist (use --force to overwrite).")
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Add your CAPTCHA keys to %s, then check them with:\n", keysFile)
	fmt.Fprintf(out, "  politecaptcha keys --config %s\n", configFile)
	return nil
}

// initConfigDir returns the configuration directory based on mode.
func initConfigDir() (string, error) {
	switch initMode {
	case "system":
		return "/etc/politecaptcha", nil
	case "user", "":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(home, ".politecaptcha"), nil
	default:
		return "", fmt.Errorf("unknown mode %q: use 'user' or 'system'", initMode)
	}
}

// writeIfMissing writes content to path if it doesn't exist or --force is set.
// Returns true if the file was written.
func writeIfMissing(path, content string, perm os.FileMode) (bool, error) {
	if !initForce {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}
