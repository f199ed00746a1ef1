package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/anshu3933/tlav/internal/assessment"
)

var respondCmd = &cobra.Command{
	Use:   "respond <student-id> <assessment-id> [question-id=answer ...]",
	Short: "Record a student's answers to an assessment",
	Long: `Record answers and update the student's knowledge profile. Answers are given
as question-id=answer pairs, or with --file pointing at a YAML/JSON list of
{question_id, response} records.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		responses, err := parseResponses(args[2:])
		if err != nil {
			return err
		}
		if path, _ := cmd.Flags().GetString("file"); path != "" {
			fromFile, err := readResponses(path)
			if err != nil {
				return err
			}
			responses = append(responses, fromFile...)
		}
		if len(responses) == 0 {
			return fmt.Errorf("no responses given")
		}

		a, err := openApp(cmd, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.RecordResponses(cmd.Context(), args[0], args[1], responses)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, tr := range res.Traces {
			if tr.Failed() {
				fmt.Fprintf(out, "  ✗ error: %s\n", tr.Error)
				continue
			}
			mark := "✗"
			if tr.Interaction.IsCorrect {
				mark = "✓"
			}
			fmt.Fprintf(out, "  %s %s\n", mark, tr.Interaction.QuestionID)
		}
		fmt.Fprintf(out, "\nRecorded %d responses", res.Recorded)
		if res.Failed > 0 {
			fmt.Fprintf(out, " (%d failed)", res.Failed)
		}
		fmt.Fprintf(out, ". Overall mastery: %.0f%%\n", res.Profile.Metrics.OverallMastery*100)
		return nil
	},
}

// parseResponses parses question-id=answer pairs.
func parseResponses(pairs []string) ([]assessment.Response, error) {
	out := make([]assessment.Response, 0, len(pairs))
	for _, pair := range pairs {
		id, answer, ok := strings.Cut(pair, "=")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, fmt.Errorf("response %q: want question-id=answer", pair)
		}
		out = append(out, assessment.Response{QuestionID: id, Response: parseValue(answer)})
	}
	return out, nil
}

type responseRecord struct {
	QuestionID string `yaml:"question_id"`
	Response   any    `yaml:"response"`
}

func readResponses(path string) ([]assessment.Response, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read responses: %w", err)
	}
	var records []responseRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse responses %s: %w", path, err)
	}
	out := make([]assessment.Response, 0, len(records))
	for i, r := range records {
		if r.QuestionID == "" {
			return nil, fmt.Errorf("parse responses %s: record %d has no question_id", path, i+1)
		}
		out = append(out, assessment.Response{QuestionID: r.QuestionID, Response: r.Response})
	}
	return out, nil
}

func init() {
	respondCmd.Flags().StringP("file", "f", "", "Read responses from a YAML or JSON file")
}
