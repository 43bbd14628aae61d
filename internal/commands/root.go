package commands

import (
	"github.com/spf13/cobra"

	"invigil/internal/db"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "invigil",
	Short: "Exam countdown board for invigilators",
	Long: `invigil tracks per-desk exam finish times from the invigilation desk.
Create a session with a baseline duration and reading time, run the board,
and grant D.P. extra time to individual desks as the exam runs. Every
transition and grant is kept in a per-desk audit trail.`,
}

// initDB initializes the database and panics on error
func initDB() {
	if err := db.Initialize(); err != nil {
		panic(err) // For now, panic on DB init failure
	}
}

// withDB wraps a command function to initialize the database first
func withDB(fn func(*cobra.Command, []string)) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		initDB()
		fn(cmd, args)
	}
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deskCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}
