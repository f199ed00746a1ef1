package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/anshu3933/tlav/internal/apperr"
	"github.com/anshu3933/tlav/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report <student-id> <assessment-id>",
	Short: "Generate an assessment report for a student",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		r, err := a.Report(cmd.Context(), args[0], args[1])
		if apperr.IsKind(err, apperr.KindNotFound) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Warning:", err)
			return nil
		}
		if err != nil {
			return err
		}

		if toStdout, _ := cmd.Flags().GetBool("stdout"); toStdout {
			return report.Export(cmd.OutOrStdout(), r)
		}

		dir, _ := cmd.Flags().GetString("dir")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
		path := filepath.Join(dir, report.FileName(r))
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create report file: %w", err)
		}
		if err := report.Export(f, r); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("write report: %w", err)
		}

		out := cmd.OutOrStdout()
		if r.OverallPerformance != nil {
			fmt.Fprintf(out, "%s: %d/%d (%.0f%%), grade %s\n", r.AssessmentTitle,
				r.OverallPerformance.CorrectCount, r.OverallPerformance.TotalQuestions,
				r.OverallPerformance.Percentage, r.OverallPerformance.Grade)
		}
		for _, rec := range r.Recommendations {
			fmt.Fprintf(out, "  - %s (%.0f%% → %.0f%%)\n", rec.Recommendation, rec.CurrentMastery*100, rec.TargetMastery*100)
		}
		fmt.Fprintf(out, "Report written to %s\n", path)
		return nil
	},
}

func init() {
	reportCmd.Flags().String("dir", ".", "Directory to write the report file to")
	reportCmd.Flags().Bool("stdout", false, "Print the report JSON instead of writing a file")
}
