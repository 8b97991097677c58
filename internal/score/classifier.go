// Package score classifies per-word recognition confidences and composes the
// short feedback line shown to the learner after an attempt.
package score

// Status is the qualitative band assigned to a word confidence.
type Status string

const (
	// StatusGood marks a word the learner pronounced cleanly.
	StatusGood Status = "good"

	// StatusAcceptable marks a word that was understood but imperfect.
	StatusAcceptable Status = "acceptable"

	// StatusNeedsWork marks a word the recognizer struggled with.
	StatusNeedsWork Status = "needs_work"
)

// WordScore pairs a word with its recognition confidence and classification.
type WordScore struct {
	Word       string  `json:"word"`
	Confidence float64 `json:"confidence"`
	Status     Status  `json:"status"`
}

const (
	defaultGoodThreshold       = 0.85
	defaultAcceptableThreshold = 0.70
)

// Option is a functional option for configuring a Classifier.
type Option func(*Classifier)

// WithGoodThreshold sets the inclusive lower bound for StatusGood.
// Default: 0.85.
func WithGoodThreshold(t float64) Option {
	return func(c *Classifier) {
		c.good = t
	}
}

// WithAcceptableThreshold sets the inclusive lower bound for
// StatusAcceptable. Default: 0.70.
func WithAcceptableThreshold(t float64) Option {
	return func(c *Classifier) {
		c.acceptable = t
	}
}

// Classifier maps a scalar confidence to a Status. The thresholds encode
// scoring policy, not structure, so they are configurable; the defaults are
// the tuned production values. Classifier is stateless and safe for
// concurrent use.
type Classifier struct {
	good       float64
	acceptable float64
}

// NewClassifier returns a Classifier configured with the supplied options.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		good:       defaultGoodThreshold,
		acceptable: defaultAcceptableThreshold,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Classify returns the Status band for confidence. Bounds are inclusive:
// a confidence exactly at a threshold lands in the higher band.
func (c *Classifier) Classify(confidence float64) Status {
	switch {
	case confidence >= c.good:
		return StatusGood
	case confidence >= c.acceptable:
		return StatusAcceptable
	default:
		return StatusNeedsWork
	}
}
