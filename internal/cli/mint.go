package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/politecaptcha/internal/honeypot"
)

var errMismatch = errors.New("honeypot response does not match challenge")

func init() {
	rootCmd.AddCommand(mintCmd)
	rootCmd.AddCommand(verifyCmd)
}

var mintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint a honeypot challenge and print the response a browser would send",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		challenge := honeypot.Mint()
		out, _ := json.MarshalIndent(map[string]string{
			honeypot.ChallengeField: challenge,
			honeypot.ResponseField:  honeypot.Reverse(challenge),
		}, "", "  ")
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify <challenge> <response>",
	Short: "Check a honeypot response against its challenge",
	Long:  "Exits 0 when the response is the reversed challenge (ignoring case), 1 otherwise.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !honeypot.Validate(args[0], args[1]) {
			fmt.Fprintln(cmd.OutOrStdout(), "MISMATCH")
			return errMismatch
		}
		fmt.Fprintln(cmd.OutOrStdout(), "OK")
		return nil
	},
}
