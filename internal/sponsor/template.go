package sponsor

import "time"

// Template is a rendered outreach email together with the inputs that produced it.
type Template struct {
	SponsorName     string       `json:"sponsor_name" bson:"sponsor_name"`
	TemplatePath    string       `json:"template_path" bson:"template_path"`
	TemplateContent string       `json:"template_content" bson:"template_content"`
	UserInfo        UserInfo     `json:"user_info" bson:"user_info"`
	TeamInfo        TeamInfo     `json:"team_info" bson:"team_info"`
	TemplateInfo    TemplateInfo `json:"template_info" bson:"template_info"`
	UpdatedAt       time.Time    `json:"updated_at" bson:"updated_at"`
}

type UserInfo struct {
	Name     string `json:"name" bson:"name"`
	Position string `json:"position" bson:"position"`
	Email    string `json:"email" bson:"email"`
	Phone    string `json:"phone" bson:"phone"`
}

type TeamInfo struct {
	Website string `json:"website" bson:"website"`
	Mission string `json:"mission" bson:"mission"`
}

type TemplateInfo struct {
	ClubDescription       string   `json:"club_description" bson:"club_description"`
	UniversityDescription string   `json:"university_description" bson:"university_description"`
	SpecificAspect        string   `json:"specific_aspect" bson:"specific_aspect"`
	AdditionalBenefits    []string `json:"additional_benefits" bson:"additional_benefits"`
}
