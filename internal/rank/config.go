package rank

import (
	"errors"
	"fmt"
)

// Weights are the points awarded per matched signal.
type Weights struct {
	Platform float64
	League   float64
	Team     float64
	Live     float64
	Upcoming float64
}

// Config holds the tunables of the ranking pass.
type Config struct {
	Weights Weights

	// RecencyWindow is how many of the newest viewing events count as recent.
	RecencyWindow int
	// RepeatPenalty is subtracted per recent view of the same content.
	RepeatPenalty float64
	// PenaltyCap bounds the total recency penalty of one card.
	PenaltyCap float64

	// TieBreakModulo and TieBreakStep derive the positional term
	// (index mod TieBreakModulo) * TieBreakStep added to every score.
	TieBreakModulo int
	TieBreakStep   float64
}

// DefaultConfig returns the stock ranking parameters.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Platform: 10,
			League:   8,
			Team:     7,
			Live:     4,
			Upcoming: 2,
		},
		RecencyWindow:  120,
		RepeatPenalty:  2,
		PenaltyCap:     6,
		TieBreakModulo: 7,
		TieBreakStep:   0.01,
	}
}

// Validate reports parameter combinations that would break the ordering.
func (c Config) Validate() error {
	var errs []error
	if c.RecencyWindow < 0 {
		errs = append(errs, fmt.Errorf("recency window must not be negative, got %d", c.RecencyWindow))
	}
	if c.RepeatPenalty < 0 || c.PenaltyCap < 0 {
		errs = append(errs, errors.New("recency penalty must not be negative"))
	}
	if c.TieBreakModulo < 1 {
		errs = append(errs, fmt.Errorf("tie-break modulo must be at least 1, got %d", c.TieBreakModulo))
	}
	// The positional term must stay below the smallest scoring signal.
	if maxTie := float64(c.TieBreakModulo-1) * c.TieBreakStep; c.TieBreakStep < 0 || maxTie >= 1 {
		errs = append(errs, fmt.Errorf("tie-break term must stay in [0, 1), max is %g", maxTie))
	}
	return errors.Join(errs...)
}
