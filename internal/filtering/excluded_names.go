package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ucformula/sponsor-scout/internal/sponsor"
)

type excludedNamesFilter struct {
	names    []string
	disabled bool
	reason   string
}

// NewExcludedNames creates a filter that removes sponsors listed in the config by exact name.
func NewExcludedNames() Filter {
	return &excludedNamesFilter{}
}

func (f *excludedNamesFilter) Name() string { return "excluded_names" }

func (f *excludedNamesFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *excludedNamesFilter) IsEnabled() bool { return !f.disabled }

func (f *excludedNamesFilter) Validate(cfg *Config) error {
	f.names = nil
	if cfg != nil {
		f.names = append(f.names, cfg.ExcludedNames...)
	}
	return nil
}

func (f *excludedNamesFilter) Apply(_ context.Context, deps Deps, list *sponsor.Candidates) (*sponsor.Candidates, Step, error) {
	initial := list.Len()
	if len(f.names) == 0 {
		return list, Step{Initial: initial, Dropped: 0, Left: list.Len()}, nil
	}

	excluded := list.ExcludeNames(f.names)
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding sponsors by name",
			zap.Strings("excluded_sponsors", excluded),
			zap.Int("sponsors_left", list.Len()),
		)
	}

	return list, Step{Initial: initial, Dropped: len(excluded), Left: list.Len()}, nil
}

func (f *excludedNamesFilter) Status() Status {
	details := map[string]string{}
	if len(f.names) > 0 {
		details["names"] = strings.Join(f.names, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
