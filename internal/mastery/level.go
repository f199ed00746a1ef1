package mastery

// Level is a human-readable mastery band.
type Level string

const (
	LevelExpert     Level = "Expert"
	LevelProficient Level = "Proficient"
	LevelDeveloping Level = "Developing"
	LevelBasic      Level = "Basic"
	LevelNovice     Level = "Novice"
)

// Levels returns all bands from highest to lowest.
func Levels() []Level {
	return []Level{LevelExpert, LevelProficient, LevelDeveloping, LevelBasic, LevelNovice}
}

// LevelFor maps a mastery value to its band.
func LevelFor(mastery float64) Level {
	switch {
	case mastery >= 0.9:
		return LevelExpert
	case mastery >= 0.8:
		return LevelProficient
	case mastery >= 0.7:
		return LevelDeveloping
	case mastery >= 0.5:
		return LevelBasic
	default:
		return LevelNovice
	}
}

// RangeLabel describes the band's mastery range, e.g. "80-90%".
func (l Level) RangeLabel() string {
	switch l {
	case LevelExpert:
		return "90%+"
	case LevelProficient:
		return "80-90%"
	case LevelDeveloping:
		return "70-80%"
	case LevelBasic:
		return "50-70%"
	default:
		return "0-50%"
	}
}

const (
	// StrengthThreshold is the mastery at or above which a component is a strength.
	StrengthThreshold = 0.8
	// ImprovementThreshold is the mastery below which a component needs work.
	ImprovementThreshold = 0.6
	// MasteredThreshold is the mastery at or above which no recommendation is made.
	MasteredThreshold = 0.8
)

// Priority ranks how urgently a component needs practice.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// PriorityFor maps a mastery value below MasteredThreshold to a priority.
func PriorityFor(mastery float64) Priority {
	switch {
	case mastery < 0.4:
		return PriorityHigh
	case mastery < 0.6:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Rank orders priorities: high sorts first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}
