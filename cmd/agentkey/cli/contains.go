package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var containsCmd = &cobra.Command{
	Use:   "contains <public-key-file>",
	Short: "Check whether the agent holds a key",
	Long: `Check whether the agent currently holds the identity matching a
public key (authorized_keys format). Exits nonzero when absent.`,
	Args: cobra.ExactArgs(1),
	RunE: runContains,
}

func init() {
	rootCmd.AddCommand(containsCmd)
}

func runContains(cmd *cobra.Command, args []string) error {
	pub, err := loadPublicKey(args[0])
	if err != nil {
		return err
	}

	client, err := dialAgent()
	if err != nil {
		return err
	}
	defer client.Close()

	found, err := client.Contains(pub)
	if err != nil {
		return fmt.Errorf("querying agent: %w", err)
	}
	if !found {
		return fmt.Errorf("key not held by agent")
	}

	fmt.Println("Key is held by the agent.")
	return nil
}
