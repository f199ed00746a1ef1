package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/anshu3933/tlav/internal/assessment"
	"github.com/anshu3933/tlav/internal/config"
	"github.com/anshu3933/tlav/internal/curriculum"
)

var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "Browse the curriculum taxonomy",
}

var taxonomyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List knowledge components (optionally filtered by subject)",
	RunE: func(cmd *cobra.Command, args []string) error {
		tax, err := loadTaxonomy(cmd)
		if err != nil {
			return err
		}
		subjects := tax.Subjects()
		if name, _ := cmd.Flags().GetString("subject"); name != "" {
			s, ok := tax.Subject(name)
			if !ok {
				return fmt.Errorf("no subject named %q", name)
			}
			subjects = []curriculum.Subject{*s}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-45s  %-25s  %-14s  %s\n", "ID", "Name", "Subject", "Category")
		fmt.Fprintln(out, strings.Repeat("─", 100))

		n := 0
		for _, s := range subjects {
			for _, c := range s.Categories {
				for _, skill := range c.Skills {
					kc := curriculum.NewComponent(s.Name, c.Name, skill)
					fmt.Fprintf(out, "%-45s  %-25s  %-14s  %s\n", kc.ID, kc.Name, kc.Subject, kc.Category)
					n++
				}
			}
		}
		fmt.Fprintf(out, "\n%d components\n", n)
		return nil
	},
}

var taxonomyLevelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List cognitive levels and their indicator words",
	RunE: func(cmd *cobra.Command, args []string) error {
		tax, err := loadTaxonomy(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, l := range tax.CognitiveLevels() {
			fmt.Fprintf(out, "%-12s  %s\n", l.Level, strings.Join(l.Indicators, ", "))
		}
		return nil
	},
}

var taxonomyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the active taxonomy as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		tax, err := loadTaxonomy(cmd)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(tax.ToFile()); err != nil {
			return fmt.Errorf("encode taxonomy: %w", err)
		}
		return enc.Close()
	},
}

var taxonomyDetectCmd = &cobra.Command{
	Use:   "detect <text>",
	Short: "Show the skills, components and difficulty detected in question text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tax, err := loadTaxonomy(cmd)
		if err != nil {
			return err
		}
		subject, _ := cmd.Flags().GetString("subject")
		skills := tax.DetectCognitiveSkills(args[0])
		components := tax.DetectComponents(args[0], subject)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Cognitive skills: %s\n", strings.Join(skills, ", "))
		fmt.Fprintln(out, "Knowledge components:")
		if len(components) == 0 {
			fmt.Fprintln(out, "  (none)")
		}
		for _, kc := range components {
			fmt.Fprintf(out, "  %s  %s\n", kc.ID, kc.Name)
		}
		fmt.Fprintf(out, "Estimated difficulty: %.2f\n", assessment.EstimateDifficulty(skills, len(components)))
		return nil
	},
}

// loadTaxonomy loads the taxonomy named in config without opening a store.
func loadTaxonomy(cmd *cobra.Command) (*curriculum.Taxonomy, error) {
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(file)
	if err != nil {
		return nil, err
	}
	return curriculum.Load(cfg.Taxonomy.File)
}

func init() {
	taxonomyListCmd.Flags().String("subject", "", "Filter by subject (e.g. mathematics)")
	taxonomyDetectCmd.Flags().String("subject", "mathematics", "Subject to match components against")

	taxonomyCmd.AddCommand(taxonomyListCmd)
	taxonomyCmd.AddCommand(taxonomyLevelsCmd)
	taxonomyCmd.AddCommand(taxonomyExportCmd)
	taxonomyCmd.AddCommand(taxonomyDetectCmd)
}
