package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var removeAllCmd = &cobra.Command{
	Use:   "remove-all",
	Short: "Remove every identity from the agent",
	RunE:  runRemoveAll,
}

func init() {
	rootCmd.AddCommand(removeAllCmd)
}

func runRemoveAll(cmd *cobra.Command, args []string) error {
	client, err := dialAgent()
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.RemoveAll(); err != nil {
		return fmt.Errorf("removing identities: %w", err)
	}

	fmt.Println("All identities removed.")
	return nil
}
