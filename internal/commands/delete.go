package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"invigil/internal/db"
)

var removeCmd = &cobra.Command{
	Use:   "rm [session-id]",
	Short: "Delete a session and its audit trail",
	Args:  cobra.ExactArgs(1),
	Run: withDB(func(cmd *cobra.Command, args []string) {
		session, err := db.LoadSession(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		if err := db.DeleteSession(session.ID); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		fmt.Printf("🗑️  Deleted session \"%s\" and %d desks\n", session.Name, len(session.Desks))
	}),
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("invigil %s (commit %s, built %s)\n", version, commit, date)
	},
}
