package sponsor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// NameSeparator splits the company name from the rest of a search result title.
	NameSeparator = " - "
)

// junkNameMarkers identify search results that are discussion threads rather than companies.
var junkNameMarkers = []string{"reddit.com", "quora.com"}

type Candidates struct {
	Items []*Candidate
}

// Candidate is a prospective sponsor surfaced by a search query.
type Candidate struct {
	Name        string `json:"name" bson:"name"`
	Website     string `json:"website" bson:"website"`
	Description string `json:"description" bson:"description"`
	SearchQuery string `json:"search_query" bson:"search_query"`
	RunID       string `json:"run_id,omitempty" bson:"run_id,omitempty"`

	Email       string   `json:"email,omitempty" bson:"email,omitempty"`
	Phone       string   `json:"phone,omitempty" bson:"phone,omitempty"`
	ContactPage string   `json:"contact_page,omitempty" bson:"contact_page,omitempty"`
	AboutPage   string   `json:"about_page,omitempty" bson:"about_page,omitempty"`
	CareersPage string   `json:"careers_page,omitempty" bson:"careers_page,omitempty"`
	SocialMedia []string `json:"social_media,omitempty" bson:"social_media,omitempty"`

	FitAnalysis *FitAnalysis `json:"fit_analysis,omitempty" bson:"fit_analysis,omitempty"`
}

// ContactInfo is what could be recovered from a candidate's website.
type ContactInfo struct {
	Email       string   `json:"email,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	ContactPage string   `json:"contact_page,omitempty"`
	AboutPage   string   `json:"about_page,omitempty"`
	CareersPage string   `json:"careers_page,omitempty"`
	SocialMedia []string `json:"social_media,omitempty"`
}

type FitAnalysis struct {
	Score   int      `json:"score" bson:"score"`
	Reasons []string `json:"reasons" bson:"reasons"`
}

// NameFromTitle derives the dedup key from a search result title.
// A title without the separator is returned whole.
func NameFromTitle(title string) string {
	name, _, _ := strings.Cut(title, NameSeparator)
	return strings.TrimSpace(name)
}

// IsEmpty reports whether nothing was extracted.
func (c ContactInfo) IsEmpty() bool {
	return c.Email == "" && c.Phone == "" && c.ContactPage == "" &&
		c.AboutPage == "" && c.CareersPage == "" && len(c.SocialMedia) == 0
}

// Merge copies the extracted contact fields onto the candidate.
func (c *Candidate) Merge(info ContactInfo) {
	c.Email = info.Email
	c.Phone = info.Phone
	c.ContactPage = info.ContactPage
	c.AboutPage = info.AboutPage
	c.CareersPage = info.CareersPage
	c.SocialMedia = append([]string(nil), info.SocialMedia...)
}

// HasContact reports whether any direct way to reach the company is known.
func (c *Candidate) HasContact() bool {
	return c.Email != "" || c.Phone != "" || c.ContactPage != ""
}

// IsCompany is false for forum threads that search engines surface as results.
func (c *Candidate) IsCompany() bool {
	return IsCompanyName(c.Name)
}

// IsCompanyName reports whether name does not point at a forum thread.
func IsCompanyName(name string) bool {
	for _, marker := range junkNameMarkers {
		if strings.Contains(name, marker) {
			return false
		}
	}
	return true
}

func (c *Candidate) Score() int {
	if c.FitAnalysis == nil {
		return 0
	}
	return c.FitAnalysis.Score
}

func (c *Candidates) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Items)
}

func (c *Candidates) Names() []string {
	names := make([]string, 0, c.Len())
	for _, candidate := range c.Items {
		names = append(names, candidate.Name)
	}
	return names
}

// FindByName returns the candidate with exactly the given name.
func (c *Candidates) FindByName(name string) *Candidate {
	for _, candidate := range c.Items {
		if candidate.Name == name {
			return candidate
		}
	}
	return nil
}

// Lookup returns the first candidate whose name contains query, ignoring case.
func (c *Candidates) Lookup(query string) *Candidate {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	for _, candidate := range c.Items {
		if strings.Contains(strings.ToLower(candidate.Name), query) {
			return candidate
		}
	}
	return nil
}

// Exclude removes candidates for which drop returns true, preserving order.
// Names of the removed candidates are returned.
func (c *Candidates) Exclude(drop func(*Candidate) bool) []string {
	var excluded []string
	kept := c.Items[:0]
	for _, candidate := range c.Items {
		if drop(candidate) {
			excluded = append(excluded, candidate.Name)
			continue
		}
		kept = append(kept, candidate)
	}
	c.Items = kept
	return excluded
}

// ExcludeNames removes candidates by exact name.
func (c *Candidates) ExcludeNames(names []string) []string {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[strings.TrimSpace(name)] = struct{}{}
	}
	return c.Exclude(func(candidate *Candidate) bool {
		_, ok := set[candidate.Name]
		return ok
	})
}

// SortByScore orders candidates by fit score, highest first. Ties keep their order.
func (c *Candidates) SortByScore() {
	sort.SliceStable(c.Items, func(i, j int) bool {
		return c.Items[i].Score() > c.Items[j].Score()
	})
}

// Top returns up to n leading candidates.
func (c *Candidates) Top(n int) []*Candidate {
	if n > c.Len() {
		n = c.Len()
	}
	return c.Items[:n]
}

// Clone returns a shallow copy of the list so callers can filter without touching the original.
func (c *Candidates) Clone() *Candidates {
	items := make([]*Candidate, 0, c.Len())
	if c != nil {
		items = append(items, c.Items...)
	}
	return &Candidates{Items: items}
}

// Report renders the leading candidates as a map suitable for pretty printing.
func (c *Candidates) Report(n int) []map[string]string {
	report := make([]map[string]string, 0, n)
	for i, candidate := range c.Top(n) {
		entry := map[string]string{
			"rank":    fmt.Sprintf("%d", i+1),
			"name":    candidate.Name,
			"website": candidate.Website,
			"score":   fmt.Sprintf("%d", candidate.Score()),
		}
		if candidate.FitAnalysis != nil {
			entry["reasons"] = strings.Join(candidate.FitAnalysis.Reasons, ", ")
		}
		report = append(report, entry)
	}
	return report
}

// DumpToFile writes the candidate list as indented JSON, creating parent directories.
// The file is replaced through a rename so readers never see a partial list.
func (c *Candidates) DumpToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	items := c.Items
	if items == nil {
		items = []*Candidate{}
	}

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

// FromFile loads a list previously written with DumpToFile. A missing file yields an empty list.
func FromFile(path string) (*Candidates, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Candidates{}, nil
		}
		return nil, err
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return &Candidates{}, nil
	}

	var items []*Candidate
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return &Candidates{Items: items}, nil
}
