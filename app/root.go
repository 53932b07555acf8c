// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "devflow",
	Short: "DevFlow is the backend service for the DevFlow Q&A platform",
	Long: `DevFlow is the backend service for the DevFlow Q&A platform.
It serves the community, profile and collection APIs, receives identity
provider webhooks, and manages users, questions, answers and tags.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
