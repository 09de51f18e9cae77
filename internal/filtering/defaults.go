package filtering

// Projection returns the filters applied to every sponsor list served to clients.
func Projection() []Filter {
	return []Filter{
		NewNonCompany(),
		NewExcludedNames(),
	}
}

// Analyzed returns the filters applied to the analyzed sponsors list.
func Analyzed() []Filter {
	return append(Projection(), NewMinimumScore())
}

// Configure disables the steps listed in cfg.Disabled and returns the same slice.
func Configure(cfg *Config, steps []Filter) []Filter {
	if cfg == nil {
		return steps
	}
	for _, name := range cfg.Disabled {
		DisableByName(steps, name, "disabled in config")
	}
	return steps
}
