package scoring

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ucformula/sponsor-scout/internal/sponsor"
)

func TestScoreSignals(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		candidate sponsor.Candidate
		score     int
		reasons   []string
	}{
		{
			name:      "nothing",
			candidate: sponsor.Candidate{Description: "A bakery"},
			score:     0,
			reasons:   []string{},
		},
		{
			name:      "keywords in list order regardless of text order",
			candidate: sponsor.Candidate{Description: "Battery ENGINEERING for Electric racing"},
			score:     20,
			reasons: []string{
				"Company is related to engineering",
				"Company is related to racing",
				"Company is related to electric",
				"Company is related to battery",
			},
		},
		{
			name: "metadata",
			candidate: sponsor.Candidate{
				CareersPage: "https://acme.example/careers",
				SocialMedia: []string{"https://twitter.com/acme"},
				Phone:       "513-555-0100",
			},
			score:   25,
			reasons: []string{reasonCareers, reasonSocial, reasonContact},
		},
		{
			name:      "contact page alone counts as contact",
			candidate: sponsor.Candidate{ContactPage: "https://acme.example/contact"},
			score:     10,
			reasons:   []string{reasonContact},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Score(&tt.candidate)
			if got.Score != tt.score {
				t.Fatalf("expected score %d, got %d", tt.score, got.Score)
			}
			if !reflect.DeepEqual(got.Reasons, tt.reasons) {
				t.Fatalf("unexpected reasons:\n got %v\nwant %v", got.Reasons, tt.reasons)
			}
		})
	}
}

func TestScoreIsMonotonicAndCapped(t *testing.T) {
	c := &sponsor.Candidate{}
	previous := Score(c).Score

	steps := []func(){
		func() { c.Description = "automotive" },
		func() { c.Description += " engineering racing electric vehicle" },
		func() { c.CareersPage = "https://x.example/careers" },
		func() { c.SocialMedia = []string{"https://facebook.com/x"} },
		func() { c.Email = "a@x.example" },
		func() { c.Description = strings.Join(Keywords, " ") },
	}

	for i, step := range steps {
		step()
		current := Score(c).Score
		if current < previous {
			t.Fatalf("step %d decreased score from %d to %d", i, previous, current)
		}
		if current > MaxScore {
			t.Fatalf("step %d exceeded max score: %d", i, current)
		}
		previous = current
	}

	// 11 keywords * 5 + 10 + 5 + 10 = 80 stays below the cap.
	if previous != 80 {
		t.Fatalf("expected 80 with all signals, got %d", previous)
	}
}

func TestAnalyzeSortsBestFirst(t *testing.T) {
	list := &sponsor.Candidates{Items: []*sponsor.Candidate{
		{Name: "Bakery", Description: "bread"},
		{Name: "Acme", Description: "automotive racing", Email: "a@acme.example"},
		{Name: "Globex", Description: "energy"},
	}}

	Analyze(list)

	if got := list.Names(); !reflect.DeepEqual(got, []string{"Acme", "Globex", "Bakery"}) {
		t.Fatalf("unexpected order: %v", got)
	}
	for _, c := range list.Items {
		if c.FitAnalysis == nil {
			t.Fatalf("%s was not analyzed", c.Name)
		}
	}
}

func TestScoreClampsAtMax(t *testing.T) {
	original := Keywords
	defer func() { Keywords = original }()

	extra := make([]string, 0, 25)
	for i := 0; i < 25; i++ {
		extra = append(extra, "kw"+strings.Repeat("x", i))
	}
	Keywords = append(append([]string(nil), original...), extra...)

	c := &sponsor.Candidate{Description: strings.Join(Keywords, " ")}
	if got := Score(c); got.Score != MaxScore {
		t.Fatalf("expected score clamped to %d, got %d", MaxScore, got.Score)
	}
}
