// Package mastery estimates per-component mastery from scored responses and
// labels the resulting values.
package mastery

const (
	// DefaultSlip is the probability of an incorrect answer despite mastery.
	DefaultSlip = 0.1
	// DefaultGuess is the probability of a correct answer without mastery.
	DefaultGuess = 0.2

	// DefaultPrior is the prior used when no earlier estimate applies.
	DefaultPrior = 0.5

	// MinParam and MaxParam bound the slip and guess probabilities.
	MinParam = 0.01
	MaxParam = 0.5

	minEstimate = 0.01
	maxEstimate = 0.99

	minConfidence = 0.5

	// evidenceStep is how far confidence moves toward 1 when the prior
	// predicted the observed outcome.
	evidenceStep = 0.1

	minDenominator = 0.001
)

// Estimate is the result of one knowledge update.
type Estimate struct {
	// Value is the posterior mastery probability, in [0.01, 0.99].
	Value float64 `json:"value"`
	// Confidence reflects how well the prior predicted the outcome, in [0.5, 1].
	Confidence float64 `json:"confidence"`
}

// Tracer applies a Bayesian knowledge tracing update. It holds only the
// slip and guess parameters and is safe for concurrent use.
type Tracer struct {
	slip  float64
	guess float64
}

// NewTracer creates a tracer. Both parameters are clamped to [0.01, 0.5].
func NewTracer(slip, guess float64) *Tracer {
	return &Tracer{
		slip:  clamp(slip, MinParam, MaxParam),
		guess: clamp(guess, MinParam, MaxParam),
	}
}

// DefaultTracer returns a tracer with slip 0.1 and guess 0.2.
func DefaultTracer() *Tracer {
	return NewTracer(DefaultSlip, DefaultGuess)
}

// Slip returns the configured slip probability.
func (t *Tracer) Slip() float64 { return t.slip }

// Guess returns the configured guess probability.
func (t *Tracer) Guess() float64 { return t.guess }

// Update computes the posterior mastery for an observed outcome.
// The prior is clamped to [0.01, 0.99]. Update never fails.
func (t *Tracer) Update(prior float64, correct bool) Estimate {
	return t.update(prior, correct, t.slip, t.guess)
}

// UpdateWithDifficulty is Update with slip and guess adjusted for item
// difficulty (clamped to [0, 1]): harder items raise slip and lower guess.
func (t *Tracer) UpdateWithDifficulty(prior float64, correct bool, difficulty float64) Estimate {
	difficulty = clamp(difficulty, 0, 1)
	slip := t.slip * (0.5 + 0.5*difficulty)
	guess := t.guess * (1.0 - 0.5*difficulty)
	return t.update(prior, correct, slip, guess)
}

func (t *Tracer) update(prior float64, correct bool, slip, guess float64) Estimate {
	prior = clamp(prior, minEstimate, maxEstimate)

	var numerator, denominator float64
	if correct {
		numerator = (1 - slip) * prior
		denominator = (1-slip)*prior + guess*(1-prior)
	} else {
		numerator = slip * prior
		denominator = slip*prior + (1-guess)*(1-prior)
	}

	posterior := numerator / maxf(denominator, minDenominator)
	posterior = clamp(posterior, minEstimate, maxEstimate)

	return Estimate{
		Value:      posterior,
		Confidence: confidence(prior, correct),
	}
}

// confidence rises when the prior predicted the outcome and falls otherwise.
// A prior of exactly 0.5 predicts nothing. The result stays in [0.5, 1].
func confidence(prior float64, correct bool) float64 {
	if (prior > 0.5 && correct) || (prior < 0.5 && !correct) {
		return clamp(prior+evidenceStep*(1-prior), minConfidence, 1.0)
	}
	return maxf(minConfidence, prior-evidenceStep)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
