package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "support-bot",
	Short: "Telegram support bot: relays user inquiries to admins as tickets (PSDS)",
	RunE:  runBot,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(botCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(reindexSearchCmd)
}
