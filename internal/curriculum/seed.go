package curriculum

// seedSubjects is the built-in subject catalogue.
var seedSubjects = []Subject{
	{
		Name: "mathematics",
		Categories: []Category{
			{Name: "number_sense", Skills: []string{"counting", "place_value", "number_recognition"}},
			{Name: "operations", Skills: []string{"addition", "subtraction", "multiplication", "division"}},
			{Name: "fractions", Skills: []string{"fraction_concepts", "fraction_operations", "decimals"}},
			{Name: "geometry", Skills: []string{"shapes", "measurement", "spatial_reasoning"}},
		},
	},
	{
		Name: "reading",
		Categories: []Category{
			{Name: "phonics", Skills: []string{"letter_recognition", "phonemic_awareness", "decoding"}},
			{Name: "fluency", Skills: []string{"reading_rate", "accuracy", "expression"}},
			{Name: "comprehension", Skills: []string{"main_idea", "details", "inference", "prediction"}},
			{Name: "vocabulary", Skills: []string{"word_meaning", "context_clues", "word_relationships"}},
		},
	},
}

// seedLevels lists the cognitive levels from lowest to highest order.
var seedLevels = []CognitiveLevel{
	{Level: "remember", Indicators: []string{"identify", "recall", "recognize", "list"}},
	{Level: "understand", Indicators: []string{"explain", "summarize", "describe", "compare"}},
	{Level: "apply", Indicators: []string{"use", "solve", "demonstrate", "calculate"}},
	{Level: "analyze", Indicators: []string{"analyze", "examine", "categorize", "differentiate"}},
	{Level: "evaluate", Indicators: []string{"evaluate", "judge", "critique", "assess"}},
	{Level: "create", Indicators: []string{"create", "design", "develop", "compose"}},
}

var defaultTaxonomy *Taxonomy

func init() {
	t, err := New(seedSubjects, seedLevels)
	if err != nil {
		panic(err)
	}
	defaultTaxonomy = t
}

// Default returns the built-in taxonomy (mathematics and reading, six
// cognitive levels).
func Default() *Taxonomy {
	return defaultTaxonomy
}
