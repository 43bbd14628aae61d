package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"invigil/internal/db"
	"invigil/internal/engine"
)

var listCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List exam sessions",
	Run: withDB(func(cmd *cobra.Command, args []string) {
		summaries, err := db.ListSessions()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		if len(summaries) == 0 {
			fmt.Println("No sessions yet. Create one with 'invigil new'.")
			return
		}

		fmt.Printf("%-36s  %-24s %6s %8s %6s  %s\n",
			"ID", "NAME", "EXAM", "READING", "DESKS", "START")
		for _, s := range summaries {
			fmt.Printf("%-36s  %-24s %5dm %7dm %6d  %s\n",
				s.ID, s.Name, s.ExamDurationMinutes, s.ReadingTimeMinutes,
				s.DeskCount, engine.FormatClockTime(s.StartTimeEpochMs))
		}
	}),
}
