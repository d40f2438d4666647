package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List identities held by the agent",
	Long: `List the identities currently held by the SSH agent, one per line:
key type, SHA256 fingerprint, and comment.`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

type listEntry struct {
	Type        string `json:"type"`
	Fingerprint string `json:"fingerprint"`
	Comment     string `json:"comment,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := dialAgent()
	if err != nil {
		return err
	}
	defer client.Close()

	keys, err := client.List()
	if err != nil {
		return fmt.Errorf("listing identities: %w", err)
	}

	entries := make([]listEntry, 0, len(keys.Keys))
	for _, k := range keys.Keys {
		fp, err := k.Fingerprint()
		if err != nil {
			return fmt.Errorf("fingerprinting %s key: %w", k.KeyType(), err)
		}
		entries = append(entries, listEntry{
			Type:        string(k.KeyType()),
			Fingerprint: "SHA256:" + fp,
			Comment:     k.Comment(),
		})
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("The agent has no identities.")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%-19s %s %s\n", e.Type, e.Fingerprint, e.Comment)
	}
	return nil
}
