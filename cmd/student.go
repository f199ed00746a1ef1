package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var studentCmd = &cobra.Command{
	Use:   "student",
	Short: "Manage student profiles",
}

var studentCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a new student",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		grade, _ := cmd.Flags().GetString("grade")

		a, err := openApp(cmd, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.Profiles.CreateStudent(cmd.Context(), name, grade)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", p.Name, p.StudentID)
		return nil
	},
}

var studentUpdateCmd = &cobra.Command{
	Use:   "update <student-id>",
	Short: "Change a student's name or grade level",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		grade, _ := cmd.Flags().GetString("grade")

		a, err := openApp(cmd, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.Profiles.UpdateDetails(cmd.Context(), args[0], name, grade)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %s, grade %s\n", p.StudentID, p.Name, p.GradeLevel)
		return nil
	},
}

var studentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List students",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		profiles, err := a.Profiles.ListProfiles(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-20s  %-25s  %-8s  %10s  %7s\n", "ID", "Name", "Grade", "Components", "Mastery")
		fmt.Fprintln(out, strings.Repeat("─", 80))
		for _, p := range profiles {
			fmt.Fprintf(out, "%-20s  %-25s  %-8s  %10d  %6.0f%%\n",
				p.StudentID, truncate(p.Name, 25), p.GradeLevel, len(p.KnowledgeState), p.Metrics.OverallMastery*100)
		}
		fmt.Fprintf(out, "\n%d students\n", len(profiles))
		return nil
	},
}

var studentShowCmd = &cobra.Command{
	Use:   "show <student-id>",
	Short: "Show a student's profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.Profiles.GetProfile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		}

		fmt.Fprintf(out, "%s  (%s)\n", p.Name, p.StudentID)
		fmt.Fprintf(out, "Grade: %s   Interactions: %d   Overall mastery: %.0f%%\n",
			p.GradeLevel, len(p.InteractionHistory), p.Metrics.OverallMastery*100)

		fmt.Fprintln(out, "\nStrengths:")
		if len(p.Metrics.Strengths) == 0 {
			fmt.Fprintln(out, "  (none yet)")
		}
		for _, c := range p.Metrics.Strengths {
			fmt.Fprintf(out, "  %-30s  %5.0f%%\n", c.ComponentName, c.Mastery*100)
		}
		fmt.Fprintln(out, "\nAreas for improvement:")
		if len(p.Metrics.AreasForImprovement) == 0 {
			fmt.Fprintln(out, "  (none)")
		}
		for _, c := range p.Metrics.AreasForImprovement {
			fmt.Fprintf(out, "  %-30s  %5.0f%%\n", c.ComponentName, c.Mastery*100)
		}
		return nil
	},
}

var studentHistoryCmd = &cobra.Command{
	Use:   "history <student-id>",
	Short: "Summarize a student's results per assessment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		history, err := a.History(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(history) == 0 {
			fmt.Fprintln(out, "No assessment history yet.")
			return nil
		}
		fmt.Fprintf(out, "%-30s  %7s  %5s  %s\n", "Assessment", "Score", "Pct", "Last activity")
		fmt.Fprintln(out, strings.Repeat("─", 70))
		for _, h := range history {
			fmt.Fprintf(out, "%-30s  %3d/%-3d  %4.0f%%  %s\n",
				truncate(h.Title, 30), h.Correct, h.Total, h.Percentage, h.LastActivity.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	studentCreateCmd.Flags().String("name", "", "Student name")
	studentCreateCmd.Flags().String("grade", "", "Grade level")
	studentUpdateCmd.Flags().String("name", "", "New name (unchanged when empty)")
	studentUpdateCmd.Flags().String("grade", "", "New grade level (unchanged when empty)")
	studentShowCmd.Flags().Bool("json", false, "Print the full profile as JSON")

	studentCmd.AddCommand(studentCreateCmd)
	studentCmd.AddCommand(studentUpdateCmd)
	studentCmd.AddCommand(studentListCmd)
	studentCmd.AddCommand(studentShowCmd)
	studentCmd.AddCommand(studentHistoryCmd)
}
