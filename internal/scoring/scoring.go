// Package scoring assigns a heuristic sponsorship fit score to candidates.
package scoring

import (
	"fmt"
	"strings"

	"github.com/ucformula/sponsor-scout/internal/sponsor"
)

const (
	MaxScore = 100

	keywordPoints = 5
	careersPoints = 10
	socialPoints  = 5
	contactPoints = 10
)

// Keywords are matched against the lower-cased description in this order.
var Keywords = []string{
	"automotive", "engineering", "racing", "electric", "vehicle", "battery",
	"technology", "innovation", "sustainable", "green", "energy",
}

const (
	reasonCareers = "Company has a careers page, indicating they invest in talent"
	reasonSocial  = "Company has social media presence"
	reasonContact = "Company has contact information available"
)

// Score is a pure function of the candidate's description and contact metadata.
func Score(c *sponsor.Candidate) sponsor.FitAnalysis {
	score := 0
	reasons := []string{}

	description := strings.ToLower(c.Description)
	for _, keyword := range Keywords {
		if strings.Contains(description, keyword) {
			score += keywordPoints
			reasons = append(reasons, fmt.Sprintf("Company is related to %s", keyword))
		}
	}

	if c.CareersPage != "" {
		score += careersPoints
		reasons = append(reasons, reasonCareers)
	}

	if len(c.SocialMedia) > 0 {
		score += socialPoints
		reasons = append(reasons, reasonSocial)
	}

	if c.HasContact() {
		score += contactPoints
		reasons = append(reasons, reasonContact)
	}

	return sponsor.FitAnalysis{
		Score:   min(score, MaxScore),
		Reasons: reasons,
	}
}

// Analyze scores every candidate in place and orders the list best first.
func Analyze(list *sponsor.Candidates) {
	for _, candidate := range list.Items {
		analysis := Score(candidate)
		candidate.FitAnalysis = &analysis
	}
	list.SortByScore()
}
