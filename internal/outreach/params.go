package outreach

import (
	"strings"

	"github.com/ucformula/sponsor-scout/internal/sponsor"
)

const (
	PlaceholderName     = "[YOUR_NAME]"
	PlaceholderPosition = "[YOUR_POSITION]"
	PlaceholderEmail    = "[YOUR_EMAIL]"
	PlaceholderPhone    = "[YOUR_PHONE]"
	PlaceholderWebsite  = "[TEAM_WEBSITE]"
	PlaceholderMission  = "[TEAM_MISSION]"
	PlaceholderAspect   = "[SPECIFIC_ASPECT]"

	unknownCompany        = "Unknown Company"
	unknownCompanyWebsite = "your company website"
)

// DefaultBenefits are listed when the caller supplies none.
var DefaultBenefits = []string{
	"Connect with talented engineering students",
	"Showcase your products and technologies",
	"Gain visibility at Formula SAE competitions",
	"Support the next generation of automotive engineers",
}

// Params are the caller supplied parts of a letter. Empty fields fall back to
// configured defaults and then to bracketed placeholders.
type Params struct {
	ClubDescription       string `json:"club_description" mapstructure:"club-description"`
	UniversityDescription string `json:"university_description" mapstructure:"university-description"`

	UserName     string `json:"user_name" mapstructure:"user-name"`
	UserPosition string `json:"user_position" mapstructure:"user-position"`
	UserEmail    string `json:"user_email" mapstructure:"user-email"`
	UserPhone    string `json:"user_phone" mapstructure:"user-phone"`
	TeamWebsite  string `json:"team_website" mapstructure:"team-website"`
	TeamMission  string `json:"team_mission" mapstructure:"team-mission"`

	SpecificAspect string `json:"specific_aspect" mapstructure:"specific-aspect"`
	// AdditionalBenefits replaces DefaultBenefits when non-nil. An empty list renders no benefits.
	AdditionalBenefits []string `json:"additional_benefits" mapstructure:"additional-benefits"`
}

// Merge fills empty fields of p from defaults.
func (p Params) Merge(defaults Params) Params {
	p.ClubDescription = firstNonEmpty(p.ClubDescription, defaults.ClubDescription)
	p.UniversityDescription = firstNonEmpty(p.UniversityDescription, defaults.UniversityDescription)
	p.UserName = firstNonEmpty(p.UserName, defaults.UserName)
	p.UserPosition = firstNonEmpty(p.UserPosition, defaults.UserPosition)
	p.UserEmail = firstNonEmpty(p.UserEmail, defaults.UserEmail)
	p.UserPhone = firstNonEmpty(p.UserPhone, defaults.UserPhone)
	p.TeamWebsite = firstNonEmpty(p.TeamWebsite, defaults.TeamWebsite)
	p.TeamMission = firstNonEmpty(p.TeamMission, defaults.TeamMission)
	p.SpecificAspect = firstNonEmpty(p.SpecificAspect, defaults.SpecificAspect)
	if p.AdditionalBenefits == nil && defaults.AdditionalBenefits != nil {
		p.AdditionalBenefits = append([]string(nil), defaults.AdditionalBenefits...)
	}
	return p
}

// resolved returns p with placeholders in place of every missing field.
func (p Params) resolved() Params {
	p = p.Merge(Params{
		UserName:       PlaceholderName,
		UserPosition:   PlaceholderPosition,
		UserEmail:      PlaceholderEmail,
		UserPhone:      PlaceholderPhone,
		TeamWebsite:    PlaceholderWebsite,
		TeamMission:    PlaceholderMission,
		SpecificAspect: PlaceholderAspect,
	})
	if p.AdditionalBenefits == nil {
		p.AdditionalBenefits = append([]string(nil), DefaultBenefits...)
	}
	return p
}

// Record converts the resolved parameters into a persisted template record.
func (p Params) Record(sponsorName, path, content string) *sponsor.Template {
	p = p.resolved()
	return &sponsor.Template{
		SponsorName:     sponsorName,
		TemplatePath:    path,
		TemplateContent: content,
		UserInfo: sponsor.UserInfo{
			Name:     p.UserName,
			Position: p.UserPosition,
			Email:    p.UserEmail,
			Phone:    p.UserPhone,
		},
		TeamInfo: sponsor.TeamInfo{
			Website: p.TeamWebsite,
			Mission: p.TeamMission,
		},
		TemplateInfo: sponsor.TemplateInfo{
			ClubDescription:       p.ClubDescription,
			UniversityDescription: p.UniversityDescription,
			SpecificAspect:        p.SpecificAspect,
			AdditionalBenefits:    p.AdditionalBenefits,
		},
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
