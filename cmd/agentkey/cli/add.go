package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <private-key-file>",
	Short: "Add a private key to the agent",
	Long: `Add a private key to the SSH agent, optionally constrained.

Examples:
  # Add a key indefinitely
  agentkey add ~/.ssh/id_ed25519

  # Add a key for one hour, requiring confirmation on each use
  agentkey add ~/.ssh/id_ed25519 --lifetime 3600 --confirm`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

var (
	addComment  string
	addLifetime uint32
	addConfirm  bool
)

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVar(&addComment, "comment", "", "comment to attach to the identity")
	addCmd.Flags().Uint32Var(&addLifetime, "lifetime", 0, "seconds until the agent drops the identity (0 = no limit)")
	addCmd.Flags().BoolVar(&addConfirm, "confirm", false, "require confirmation on each use")
}

func runAdd(cmd *cobra.Command, args []string) error {
	priv, err := loadPrivateKey(args[0])
	if err != nil {
		return err
	}

	client, err := dialAgent()
	if err != nil {
		return err
	}
	defer client.Close()

	comment := addComment
	if comment == "" {
		comment = args[0]
	}
	if err := client.Add(priv, comment, addLifetime, addConfirm); err != nil {
		return fmt.Errorf("adding identity: %w", err)
	}

	fmt.Printf("Identity added: %s\n", comment)
	return nil
}
