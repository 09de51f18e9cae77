package outreach

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/ucformula/sponsor-scout/internal/sponsor"
)

const fileSuffix = "_email_template.txt"

//go:embed letter.tmpl
var letterSource string

var letter = template.Must(template.New("letter").Option("missingkey=error").Parse(letterSource))

var (
	unsafeNameChars = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	nameSeparators  = regexp.MustCompile(`[-\s]+`)
)

type letterData struct {
	Company            string
	CompanyDescription string
	CompanyWebsite     string

	ClubDescription       string
	UniversityDescription string
	UserName              string
	UserPosition          string
	UserEmail             string
	UserPhone             string
	TeamWebsite           string
	TeamMission           string
	SpecificAspect        string
	Benefits              []string
}

// Render fills the letter skeleton for the candidate. The output depends only on its inputs.
func Render(c *sponsor.Candidate, p Params) string {
	p = p.resolved()

	data := letterData{
		Company:               unknownCompany,
		CompanyWebsite:        unknownCompanyWebsite,
		ClubDescription:       p.ClubDescription,
		UniversityDescription: p.UniversityDescription,
		UserName:              p.UserName,
		UserPosition:          p.UserPosition,
		UserEmail:             p.UserEmail,
		UserPhone:             p.UserPhone,
		TeamWebsite:           p.TeamWebsite,
		TeamMission:           p.TeamMission,
		SpecificAspect:        p.SpecificAspect,
		Benefits:              p.AdditionalBenefits,
	}
	if c != nil {
		if c.Name != "" {
			data.Company = c.Name
		}
		if c.Website != "" {
			data.CompanyWebsite = c.Website
		}
		data.CompanyDescription = c.Description
	}

	var b strings.Builder
	if err := letter.Execute(&b, data); err != nil {
		// letterData carries every field the skeleton references.
		panic(fmt.Sprintf("rendering letter: %v", err))
	}
	return b.String()
}

// CleanName turns a company name into a file name stem.
func CleanName(name string) string {
	cleaned := unsafeNameChars.ReplaceAllString(name, "")
	cleaned = nameSeparators.ReplaceAllString(cleaned, "_")
	cleaned = strings.Trim(cleaned, "_")
	if cleaned == "" {
		return "sponsor"
	}
	return cleaned
}

// FileName is the name of the letter file written for a company.
func FileName(companyName string) string {
	return CleanName(companyName) + fileSuffix
}

// WriteFile stores content as the letter of companyName under dir and returns its path.
func WriteFile(dir, companyName, content string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create template dir: %w", err)
	}

	path := filepath.Join(dir, FileName(companyName))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write template: %w", err)
	}
	return path, nil
}

// GetTemplateContent reads a previously written letter.
func GetTemplateContent(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read template: %w", err)
	}
	return string(data), nil
}
