package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anshu3933/tlav/internal/profile"
)

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Inspect a student's knowledge state",
}

var knowledgeStateCmd = &cobra.Command{
	Use:   "state <student-id>",
	Short: "Show mastery per knowledge component",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		a, err := openApp(cmd, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		state, err := a.Profiles.KnowledgeState(cmd.Context(), args[0], subject)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(state) == 0 {
			fmt.Fprintln(out, "No knowledge components tracked yet.")
			return nil
		}
		fmt.Fprintf(out, "%-45s  %-30s  %7s\n", "ID", "Component", "Mastery")
		fmt.Fprintln(out, strings.Repeat("─", 88))
		for _, c := range state {
			fmt.Fprintf(out, "%-45s  %-30s  %6.0f%%\n", c.ComponentID, truncate(c.ComponentName, 30), c.Mastery*100)
		}
		return nil
	},
}

var knowledgeRecommendCmd = &cobra.Command{
	Use:   "recommend <student-id>",
	Short: "List practice recommendations by priority",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		a, err := openApp(cmd, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		recs, err := a.Profiles.Recommendations(cmd.Context(), args[0], subject)
		if err != nil {
			return err
		}
		printRecommendations(cmd.OutOrStdout(), recs)
		return nil
	},
}

var knowledgeDashboardCmd = &cobra.Command{
	Use:   "dashboard <student-id>",
	Short: "Group components by mastery level",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		a, err := openApp(cmd, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		d, err := a.Profiles.Dashboard(cmd.Context(), args[0], subject)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Knowledge dashboard for %s (%s)\n", d.Name, d.StudentID)
		for _, b := range d.Levels {
			fmt.Fprintf(out, "\n%s (%s): %d\n", b.Level, b.Range, len(b.Components))
			for _, c := range b.Components {
				fmt.Fprintf(out, "  %-30s  %5.0f%%\n", c.ComponentName, c.Mastery*100)
			}
		}
		fmt.Fprintln(out)
		printRecommendations(out, d.Recommendations)
		return nil
	},
}

func printRecommendations(out io.Writer, recs []profile.Recommendation) {
	if len(recs) == 0 {
		fmt.Fprintln(out, "No recommendations: every component is mastered.")
		return
	}
	fmt.Fprintln(out, "Recommendations:")
	for _, r := range recs {
		fmt.Fprintf(out, "  [%-6s] %s (%.0f%%)\n", r.Priority, r.Recommendation, r.Mastery*100)
	}
}

func init() {
	for _, c := range []*cobra.Command{knowledgeStateCmd, knowledgeRecommendCmd, knowledgeDashboardCmd} {
		c.Flags().String("subject", "", "Only components whose id contains this subject")
		knowledgeCmd.AddCommand(c)
	}
}
