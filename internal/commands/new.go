package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"invigil/internal/config"
	"invigil/internal/db"
	"invigil/internal/engine"
	"invigil/internal/parser"
)

var newCmd = &cobra.Command{
	Use:   "new [session name]",
	Short: "Create a new exam session",
	Long: `Create a new exam session with its desks.

Examples:
  invigil new "Y12 Mathematics" --duration 90 --reading 10 --start 09:30 --desks 24
  invigil new "Physics resit" --duration 120 --start "15/06/2026 13:00" --desks 6 \
      --students "A. Hart,B. Osei,C. Lindqvist"`,
	Args: cobra.ExactArgs(1),
	Run: withDB(func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		duration, _ := cmd.Flags().GetInt("duration")
		reading, _ := cmd.Flags().GetInt("reading")
		desks, _ := cmd.Flags().GetInt("desks")
		startRaw, _ := cmd.Flags().GetString("start")
		studentsRaw, _ := cmd.Flags().GetString("students")

		if duration == 0 {
			duration = cfg.DefaultExamMinutes
		}
		if !cmd.Flags().Changed("reading") {
			reading = cfg.DefaultReadingMinutes
		}
		if desks == 0 {
			desks = cfg.DefaultDeskCount
		}

		start, err := parser.ParseStartTime(startRaw, time.Now())
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		var students []string
		if studentsRaw != "" {
			for _, name := range strings.Split(studentsRaw, ",") {
				students = append(students, strings.TrimSpace(name))
			}
		}

		session, err := db.CreateSession(db.CreateSessionRequest{
			Name:                args[0],
			ExamDurationMinutes: duration,
			ReadingTimeMinutes:  reading,
			StartTimeEpochMs:    start.UnixMilli(),
			DeskCount:           desks,
			StudentNames:        students,
		})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		fmt.Printf("✅ Created session \"%s\" (%s)\n", session.Name, session.ID)
		fmt.Printf("   %d min exam, %d min reading, %d desks\n",
			session.ExamDurationMinutes, session.ReadingTimeMinutes, len(session.Desks))
		fmt.Printf("   Scheduled start: %s\n", engine.FormatClockTime(session.StartTimeEpochMs))
		fmt.Printf("   Run it with: invigil run %s\n", session.ID)
	}),
}

func init() {
	newCmd.Flags().Int("duration", 0, "Baseline exam duration in minutes")
	newCmd.Flags().Int("reading", 0, "Reading time in minutes (0 = no reading phase)")
	newCmd.Flags().Int("desks", 0, "Number of desks")
	newCmd.Flags().String("start", "", "Scheduled start (HH:MM, H:MMam/pm, or dd/mm/yyyy HH:MM; empty = now)")
	newCmd.Flags().String("students", "", "Comma-separated student names, assigned to desks in order")
}
