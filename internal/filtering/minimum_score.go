package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/ucformula/sponsor-scout/internal/scoring"
	"github.com/ucformula/sponsor-scout/internal/sponsor"
)

type minimumScoreFilter struct {
	disabled bool
	reason   string
	minimum  int
}

// NewMinimumScore creates a filter that removes analyzed sponsors scoring below
// the configured minimum. Candidates without a fit analysis score 0.
func NewMinimumScore() Filter {
	return &minimumScoreFilter{}
}

func (f *minimumScoreFilter) Name() string { return "minimum_score" }

func (f *minimumScoreFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *minimumScoreFilter) IsEnabled() bool { return !f.disabled }

func (f *minimumScoreFilter) Validate(cfg *Config) error {
	f.minimum = 0
	if cfg == nil {
		return nil
	}
	if cfg.MinimumScore < 0 || cfg.MinimumScore > scoring.MaxScore {
		return fmt.Errorf("minimum score must be between 0 and %d, got %d", scoring.MaxScore, cfg.MinimumScore)
	}
	f.minimum = cfg.MinimumScore
	return nil
}

func (f *minimumScoreFilter) Apply(_ context.Context, deps Deps, list *sponsor.Candidates) (*sponsor.Candidates, Step, error) {
	initial := list.Len()
	if f.minimum == 0 {
		return list, Step{Initial: initial, Dropped: 0, Left: list.Len()}, nil
	}

	excluded := list.Exclude(func(c *sponsor.Candidate) bool { return c.Score() < f.minimum })
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding sponsors below minimum score",
			zap.Int("minimum_score", f.minimum),
			zap.Strings("excluded_sponsors", excluded),
			zap.Int("sponsors_left", list.Len()),
		)
	}

	return list, Step{Initial: initial, Dropped: len(excluded), Left: list.Len()}, nil
}

func (f *minimumScoreFilter) Status() Status {
	details := map[string]string{
		"minimum_score": strconv.Itoa(f.minimum),
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
