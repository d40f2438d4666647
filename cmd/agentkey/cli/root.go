// Package cli implements the agentkey command-line interface using
// Cobra: one subcommand per agent operation.
package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/majorcontext/agentkey/internal/config"
	"github.com/majorcontext/agentkey/internal/log"
)

var (
	verbose  bool
	jsonOut  bool
	sockPath string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "agentkey",
	Short: "Agentkey - manage identities in a local SSH agent",
	Long: `Agentkey talks the ssh-agent protocol directly over the agent's
Unix socket: list held identities, add private keys (with optional
lifetime and confirmation constraints), and remove identities.

The agent socket is found via --sock, AGENTKEY_SOCK,
~/.agentkey/config.yaml, or SSH_AUTH_SOCK, in that order.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		debugDir := filepath.Join(config.Dir(), "debug")
		if err := log.Init(log.Options{
			Verbose:    verbose,
			JSONFormat: jsonOut,
			DebugDir:   debugDir,
		}); err != nil {
			// Log init failure is non-fatal - fall back to the default logger
			cmd.PrintErrf("Warning: failed to initialize debug logging: %v\n", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	defer log.Close()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().StringVar(&sockPath, "sock", "", "agent socket path (overrides config and SSH_AUTH_SOCK)")
}
