package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/ucformula/sponsor-scout/internal/sponsor"
)

type nonCompanyFilter struct{}

// NewNonCompany creates a filter that removes forum threads (reddit, quora) picked up by search.
func NewNonCompany() Filter {
	return &nonCompanyFilter{}
}

func (f *nonCompanyFilter) Name() string { return "non_company" }

func (f *nonCompanyFilter) Disable(string) {}

func (f *nonCompanyFilter) IsEnabled() bool { return true }

func (f *nonCompanyFilter) Validate(*Config) error { return nil }

func (f *nonCompanyFilter) Apply(_ context.Context, deps Deps, list *sponsor.Candidates) (*sponsor.Candidates, Step, error) {
	initial := list.Len()
	excluded := list.Exclude(func(c *sponsor.Candidate) bool { return !c.IsCompany() })
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Debug("excluding non company results",
			zap.Strings("excluded_sponsors", excluded),
			zap.Int("sponsors_left", list.Len()),
		)
	}

	return list, Step{Initial: initial, Dropped: len(excluded), Left: list.Len()}, nil
}

func (f *nonCompanyFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: true}
}
