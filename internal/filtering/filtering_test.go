package filtering

import (
	"context"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ucformula/sponsor-scout/internal/sponsor"
)

func scored(name string, score int) *sponsor.Candidate {
	return &sponsor.Candidate{Name: name, FitAnalysis: &sponsor.FitAnalysis{Score: score, Reasons: []string{}}}
}

func TestRunProjectionDropsForumThreadsAndExcludedNames(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	list := &sponsor.Candidates{Items: []*sponsor.Candidate{
		{Name: "Acme"},
		{Name: "Best sponsors? : r/FSAE reddit.com"},
		{Name: "Globex"},
		{Name: "Who sponsors racing teams - quora.com"},
		{Name: "Initech"},
	}}

	out, err := Run(context.Background(), &Config{ExcludedNames: []string{" Globex "}}, Deps{Logger: zap.New(core)}, Projection(), list)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := out.Names(); !reflect.DeepEqual(got, []string{"Acme", "Initech"}) {
		t.Fatalf("unexpected names: %v", got)
	}

	steps := logs.FilterMessage("filter step").All()
	if len(steps) != 2 {
		t.Fatalf("expected 2 logged steps, got %d", len(steps))
	}
	fields := steps[0].ContextMap()
	if fields["name"] != "non_company" || fields["dropped"] != int64(2) || fields["left"] != int64(3) {
		t.Fatalf("unexpected step fields: %v", fields)
	}
}

func TestMinimumScoreFilter(t *testing.T) {
	tests := []struct {
		name    string
		minimum int
		want    []string
	}{
		{name: "zero keeps everything", minimum: 0, want: []string{"A", "B", "C", "D"}},
		{name: "threshold is inclusive", minimum: 20, want: []string{"A", "B"}},
		{name: "nothing passes", minimum: 90, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := &sponsor.Candidates{Items: []*sponsor.Candidate{
				scored("A", 40), scored("B", 20), scored("C", 15), {Name: "D"},
			}}

			out, err := Run(context.Background(), &Config{MinimumScore: tt.minimum}, Deps{}, []Filter{NewMinimumScore()}, list)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := out.Names(); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRunValidatesEnabledFilters(t *testing.T) {
	list := &sponsor.Candidates{Items: []*sponsor.Candidate{scored("A", 10)}}

	if _, err := Run(context.Background(), &Config{MinimumScore: 101}, Deps{}, Analyzed(), list); err == nil {
		t.Fatalf("expected validation error for out of range minimum score")
	}

	steps := Analyzed()
	DisableByName(steps, "minimum_score", "not needed")

	out, err := Run(context.Background(), &Config{MinimumScore: 101}, Deps{}, steps, list)
	if err != nil {
		t.Fatalf("disabled filter must not be validated: %v", err)
	}
	if out.Len() != 1 {
		t.Fatalf("expected list untouched, got %v", out.Names())
	}
}

func TestDescribe(t *testing.T) {
	steps := Analyzed()
	DisableByName(steps, "minimum_score", "disabled in test")

	if err := steps[1].Validate(&Config{ExcludedNames: []string{"A", "B"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	statuses := Describe(steps)
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}
	if statuses[1].Details["names"] != "A,B" {
		t.Fatalf("unexpected excluded names details: %v", statuses[1].Details)
	}
	if statuses[2].Enabled || statuses[2].Reason != "disabled in test" {
		t.Fatalf("unexpected minimum score status: %+v", statuses[2])
	}
}

func TestConfigureDisablesListedFilters(t *testing.T) {
	steps := Configure(&Config{Disabled: []string{"excluded_names", "unknown"}}, Analyzed())

	if !steps[0].IsEnabled() {
		t.Fatalf("non_company must stay enabled")
	}
	if steps[1].IsEnabled() {
		t.Fatalf("excluded_names must be disabled")
	}
	if !steps[2].IsEnabled() {
		t.Fatalf("minimum_score must stay enabled")
	}

	list := &sponsor.Candidates{Items: []*sponsor.Candidate{scored("Globex", 0)}}
	out, err := Run(context.Background(), &Config{ExcludedNames: []string{"Globex"}}, Deps{}, steps, list)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 1 {
		t.Fatalf("expected Globex kept, got %v", out.Names())
	}
}
