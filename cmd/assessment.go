package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/anshu3933/tlav/internal/model"
)

var assessmentCmd = &cobra.Command{
	Use:   "assessment",
	Short: "Create, import and inspect assessments",
}

var assessmentCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an assessment from --question flags",
	Long: `Create an assessment. Each --question is "type|text|answer" with an optional
fourth field of ";"-separated options for multiple choice, for example:

  tlav assessment create --title "Quiz" --subject mathematics \
    --question "numeric|Solve the addition 2 + 3|5" \
    --question "multiple_choice|Identify the shapes with 3 sides|triangle|square;triangle;circle"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		subject, _ := cmd.Flags().GetString("subject")
		grade, _ := cmd.Flags().GetString("grade")
		flags, _ := cmd.Flags().GetStringArray("question")

		a, err := openApp(cmd, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		b := a.Processor.NewBuilder(title, subject, grade)
		for _, f := range flags {
			q, err := parseQuestionFlag(f)
			if err != nil {
				return err
			}
			if _, err := b.Add(q); err != nil {
				return err
			}
		}
		as, err := b.Build()
		if err != nil {
			return err
		}
		if err := a.SaveAssessment(cmd.Context(), as); err != nil {
			return err
		}
		printAssessment(cmd.OutOrStdout(), as)
		return nil
	},
}

var assessmentImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import an assessment document (YAML or JSON)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read assessment: %w", err)
		}
		a, err := openApp(cmd, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		as, err := a.Processor.Import(data)
		if err != nil {
			return err
		}
		if err := a.SaveAssessment(cmd.Context(), as); err != nil {
			return err
		}
		printAssessment(cmd.OutOrStdout(), as)
		return nil
	},
}

var assessmentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored assessments",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.Assessments.List(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-36s  %-30s  %-12s  %5s  %9s\n", "ID", "Title", "Subject", "Grade", "Questions")
		fmt.Fprintln(out, strings.Repeat("─", 100))
		for _, as := range list {
			fmt.Fprintf(out, "%-36s  %-30s  %-12s  %5s  %9d\n",
				as.AssessmentID, truncate(as.Title, 30), as.Subject, as.GradeLevel, len(as.Questions))
		}
		fmt.Fprintf(out, "\n%d assessments\n", len(list))
		return nil
	},
}

var assessmentShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an assessment's questions and their analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		as, err := a.Assessments.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printAssessment(cmd.OutOrStdout(), as)
		return nil
	},
}

var assessmentExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Write an assessment as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		as, err := a.Assessments.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		var w io.Writer = cmd.OutOrStdout()
		if path, _ := cmd.Flags().GetString("output"); path != "" {
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			defer f.Close()
			w = f
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(as); err != nil {
			return fmt.Errorf("export assessment: %w", err)
		}
		return nil
	},
}

// parseQuestionFlag parses "type|text|answer[|opt;opt...]".
func parseQuestionFlag(s string) (model.Question, error) {
	parts := strings.Split(s, "|")
	if len(parts) < 3 || len(parts) > 4 {
		return model.Question{}, fmt.Errorf("question %q: want type|text|answer[|options]", s)
	}
	q := model.Question{
		QuestionType:  model.QuestionType(strings.TrimSpace(parts[0])),
		Text:          strings.TrimSpace(parts[1]),
		CorrectAnswer: parseValue(parts[2]),
	}
	if len(parts) == 4 {
		for _, opt := range strings.Split(parts[3], ";") {
			if opt = strings.TrimSpace(opt); opt != "" {
				q.Options = append(q.Options, opt)
			}
		}
	}
	return q, nil
}

// parseValue reads a command-line scalar as YAML so numbers and booleans
// keep their type. Anything that is not a plain scalar stays a string.
func parseValue(s string) any {
	s = strings.TrimSpace(s)
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	switch v.(type) {
	case int, float64, bool, string:
		return v
	default:
		return s
	}
}

func printAssessment(out io.Writer, as *model.Assessment) {
	fmt.Fprintf(out, "%s  (%s)\n", as.Title, as.AssessmentID)
	fmt.Fprintf(out, "Subject: %s   Grade: %s   Questions: %d\n\n", as.Subject, as.GradeLevel, len(as.Questions))
	for i, q := range as.Questions {
		difficulty := "-"
		if q.Difficulty != nil {
			difficulty = fmt.Sprintf("%.2f", *q.Difficulty)
		}
		fmt.Fprintf(out, "%d. [%s] %s\n", i+1, q.QuestionType, q.Text)
		fmt.Fprintf(out, "   id: %s   difficulty: %s   skills: %s\n", q.QuestionID, difficulty, strings.Join(q.CognitiveSkills, ", "))
		for _, kc := range q.KnowledgeComponents {
			fmt.Fprintf(out, "   - %s (%s)\n", kc.Name, kc.ID)
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func init() {
	assessmentCreateCmd.Flags().String("title", "", "Assessment title")
	assessmentCreateCmd.Flags().String("subject", "mathematics", "Subject")
	assessmentCreateCmd.Flags().String("grade", "", "Grade level")
	assessmentCreateCmd.Flags().StringArray("question", nil, `Question as "type|text|answer[|options]" (repeatable)`)

	assessmentExportCmd.Flags().StringP("output", "o", "", "Write to file instead of stdout")

	assessmentCmd.AddCommand(assessmentCreateCmd)
	assessmentCmd.AddCommand(assessmentImportCmd)
	assessmentCmd.AddCommand(assessmentListCmd)
	assessmentCmd.AddCommand(assessmentShowCmd)
	assessmentCmd.AddCommand(assessmentExportCmd)
}
