package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"invigil/internal/db"
)

var deskCmd = &cobra.Command{
	Use:   "desk",
	Short: "Manage the desks of a session",
}

var deskAddCmd = &cobra.Command{
	Use:   "add [session-id]",
	Short: "Add a desk to a session",
	Args:  cobra.ExactArgs(1),
	Run: withDB(func(cmd *cobra.Command, args []string) {
		number, _ := cmd.Flags().GetInt("number")
		student, _ := cmd.Flags().GetString("student")

		if number <= 0 {
			fmt.Println("Error: --number must be a positive desk number")
			return
		}

		desk, err := db.AddDesk(args[0], number, student)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		fmt.Printf("✅ Added desk %d", desk.DeskNumber)
		if desk.StudentName != "" {
			fmt.Printf(" (%s)", desk.StudentName)
		}
		fmt.Println()
	}),
}

var deskNameCmd = &cobra.Command{
	Use:   "name [session-id] [desk-number] [student name]",
	Short: "Set or clear the student name on a desk",
	Args:  cobra.RangeArgs(2, 3),
	Run: withDB(func(cmd *cobra.Command, args []string) {
		number, err := strconv.Atoi(args[1])
		if err != nil || number <= 0 {
			fmt.Printf("Error: invalid desk number '%s'\n", args[1])
			return
		}

		name := ""
		if len(args) == 3 {
			name = args[2]
		}

		if err := db.SetStudentName(args[0], number, name); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		if name == "" {
			fmt.Printf("✅ Cleared student name on desk %d\n", number)
		} else {
			fmt.Printf("✅ Desk %d is now %s\n", number, name)
		}
	}),
}

var deskRemoveCmd = &cobra.Command{
	Use:   "rm [session-id] [desk-number]",
	Short: "Remove a desk and its audit trail",
	Args:  cobra.ExactArgs(2),
	Run: withDB(func(cmd *cobra.Command, args []string) {
		number, err := strconv.Atoi(args[1])
		if err != nil || number <= 0 {
			fmt.Printf("Error: invalid desk number '%s'\n", args[1])
			return
		}

		if err := db.DeleteDesk(args[0], number); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		fmt.Printf("🗑️  Removed desk %d\n", number)
	}),
}

func init() {
	deskAddCmd.Flags().Int("number", 0, "Desk number")
	deskAddCmd.Flags().String("student", "", "Student name (optional)")

	deskCmd.AddCommand(deskAddCmd)
	deskCmd.AddCommand(deskNameCmd)
	deskCmd.AddCommand(deskRemoveCmd)
}
