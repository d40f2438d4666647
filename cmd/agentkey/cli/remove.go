package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <public-key-file>",
	Short: "Remove an identity from the agent",
	Long: `Remove the identity matching a public key (authorized_keys format)
from the SSH agent.`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	pub, err := loadPublicKey(args[0])
	if err != nil {
		return err
	}

	client, err := dialAgent()
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Remove(pub); err != nil {
		return fmt.Errorf("removing identity: %w", err)
	}

	fmt.Println("Identity removed.")
	return nil
}
