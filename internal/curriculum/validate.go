package curriculum

import (
	"fmt"
	"strings"
)

// validate performs all structural checks on a normalized taxonomy.
// Returns a combined error describing all problems found, or nil if valid.
func validate(subjects []Subject, levels []CognitiveLevel) error {
	var errs []string

	subjectSet := make(map[string]bool, len(subjects))
	for i, s := range subjects {
		if s.Name == "" {
			errs = append(errs, fmt.Sprintf("subject %d has no name", i))
			continue
		}
		if subjectSet[s.Name] {
			errs = append(errs, fmt.Sprintf("duplicate subject: %q", s.Name))
		}
		subjectSet[s.Name] = true

		categorySet := make(map[string]bool, len(s.Categories))
		for j, c := range s.Categories {
			if c.Name == "" {
				errs = append(errs, fmt.Sprintf("subject %q category %d has no name", s.Name, j))
				continue
			}
			if categorySet[c.Name] {
				errs = append(errs, fmt.Sprintf("subject %q: duplicate category %q", s.Name, c.Name))
			}
			categorySet[c.Name] = true

			skillSet := make(map[string]bool, len(c.Skills))
			for _, skill := range c.Skills {
				if skill == "" {
					errs = append(errs, fmt.Sprintf("subject %q category %q: empty skill name", s.Name, c.Name))
					continue
				}
				if skillSet[skill] {
					errs = append(errs, fmt.Sprintf("subject %q category %q: duplicate skill %q", s.Name, c.Name, skill))
				}
				skillSet[skill] = true
			}
		}
	}

	if len(levels) == 0 {
		errs = append(errs, "no cognitive levels defined (at least one is required as the fallback)")
	}
	levelSet := make(map[string]bool, len(levels))
	for i, l := range levels {
		if l.Level == "" {
			errs = append(errs, fmt.Sprintf("cognitive level %d has no name", i))
			continue
		}
		if levelSet[l.Level] {
			errs = append(errs, fmt.Sprintf("duplicate cognitive level: %q", l.Level))
		}
		levelSet[l.Level] = true
		if len(l.Indicators) == 0 {
			errs = append(errs, fmt.Sprintf("cognitive level %q has no indicators", l.Level))
		}
		for _, ind := range l.Indicators {
			if ind == "" {
				errs = append(errs, fmt.Sprintf("cognitive level %q: empty indicator", l.Level))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("taxonomy validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
