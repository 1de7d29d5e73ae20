package render

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"portfolio-generator/internal/model"

	"golang.org/x/net/publicsuffix"
)

type value struct {
	text  string
	items []scope
	list  bool
}

func textValue(s string) (value, bool) { return value{text: s}, true }

type scope interface {
	lookup(name string) (value, bool)
}

// chain resolves a name in the innermost scope first, then in its parents.
type chain struct {
	s      scope
	parent *chain
}

func (c *chain) lookup(name string) value {
	for x := c; x != nil; x = x.parent {
		if v, ok := x.s.lookup(name); ok {
			return v
		}
	}
	return value{}
}

func (c *chain) truthy(name string) bool {
	v := c.lookup(name)
	if v.list {
		return len(v.items) > 0
	}
	return v.text != ""
}

var rootFields = map[string]bool{
	"name": true, "basic_info.name": true,
	"title": true, "current_designation": true, "basic_info.current_designation": true,
	"email": true, "basic_info.email": true,
	"phone": true, "basic_info.phone": true,
	"country": true, "basic_info.country": true,
	"description": true,
	"linkedin": true, "linkedin_url": true,
	"github": true, "github_url": true,
	"currentYear": true, "current_year": true,
}

var sectionAliases = map[string]string{
	"skills.technical_skills": "technical_skills",
	"technical_skills":        "technical_skills",
	"skills.soft_skills":      "soft_skills",
	"soft_skills":             "soft_skills",
	"skills.languages":        "languages",
	"languages":               "languages",
	"experience":              "experience",
	"education":               "education",
	"projects":                "projects",
	"certifications":          "certifications",
	"testimonials":            "testimonials",
}

var elementFields = map[string][]string{
	"technical_skills": {"this", "."},
	"soft_skills":      {"this", "."},
	"languages":        {"this", "."},
	"experience":       {"company", "position", "title", "start_date", "end_date", "description", "date_range"},
	"education":        {"institution", "degree", "field_of_study", "start_date", "end_date", "description", "date_range"},
	"projects":         {"name", "description", "start_date", "end_date", "url", "url_label", "date_range"},
	"certifications":   {"name", "issuer", "date", "url", "url_label"},
	"testimonials":     {"name", "photo", "date", "rating", "text", "stars"},
}

func knownSection(name string) bool {
	_, ok := sectionAliases[name]
	return ok
}

func knownName(name string, sections []string) bool {
	if rootFields[name] || knownSection(name) {
		return true
	}
	if len(sections) == 0 {
		return false
	}
	if name == "@index" || name == "@number" {
		return true
	}
	for _, s := range sections {
		for _, f := range elementFields[sectionAliases[s]] {
			if f == name {
				return true
			}
		}
	}
	return false
}

type rootScope struct {
	p   *model.Profile
	now time.Time
}

func (r rootScope) lookup(name string) (value, bool) {
	p := r.p
	switch name {
	case "name", "basic_info.name":
		return textValue(p.Name())
	case "title", "current_designation", "basic_info.current_designation":
		return textValue(p.Title())
	case "email", "basic_info.email":
		return textValue(p.Email())
	case "phone", "basic_info.phone":
		return textValue(p.Phone())
	case "country", "basic_info.country":
		return textValue(p.Country())
	case "description":
		return textValue(p.Summary())
	case "linkedin", "linkedin_url":
		return textValue(p.LinkedIn())
	case "github", "github_url":
		return textValue(p.GitHub())
	case "currentYear", "current_year":
		return textValue(strconv.Itoa(r.now.Year()))
	}

	var items []scope
	switch sectionAliases[name] {
	case "technical_skills":
		items = stringItems(p.TechnicalSkills())
	case "soft_skills":
		items = stringItems(p.SoftSkills())
	case "languages":
		items = stringItems(p.Languages())
	case "experience":
		for i, e := range p.ExperienceList() {
			items = append(items, experienceItem{indexed(i), e})
		}
	case "education":
		for i, e := range p.EducationList() {
			items = append(items, educationItem{indexed(i), e})
		}
	case "projects":
		for i, pr := range p.ProjectList() {
			items = append(items, projectItem{indexed(i), pr})
		}
	case "certifications":
		for i, c := range p.CertificationList() {
			items = append(items, certificationItem{indexed(i), c})
		}
	case "testimonials":
		for i, t := range p.TestimonialList() {
			items = append(items, testimonialItem{indexed(i), t})
		}
	default:
		return value{}, false
	}
	return value{items: items, list: true}, true
}

type indexed int

func (i indexed) lookup(name string) (value, bool) {
	switch name {
	case "@index":
		return textValue(strconv.Itoa(int(i)))
	case "@number":
		return textValue(strconv.Itoa(int(i) + 1))
	}
	return value{}, false
}

type stringItem struct {
	indexed
	v string
}

func stringItems(in []string) []scope {
	out := make([]scope, 0, len(in))
	for i, s := range in {
		out = append(out, stringItem{indexed(i), s})
	}
	return out
}

func (s stringItem) lookup(name string) (value, bool) {
	if name == "this" || name == "." {
		return textValue(s.v)
	}
	return s.indexed.lookup(name)
}

type experienceItem struct {
	indexed
	e model.Experience
}

func (s experienceItem) lookup(name string) (value, bool) {
	switch name {
	case "company":
		return textValue(s.e.Company)
	case "position", "title":
		return textValue(s.e.Position)
	case "start_date":
		return textValue(s.e.StartDate)
	case "end_date":
		return textValue(s.e.EndDate)
	case "description":
		return textValue(s.e.Description)
	case "date_range":
		return textValue(dateRange(s.e.StartDate, s.e.EndDate))
	}
	return s.indexed.lookup(name)
}

type educationItem struct {
	indexed
	e model.Education
}

func (s educationItem) lookup(name string) (value, bool) {
	switch name {
	case "institution":
		return textValue(s.e.Institution)
	case "degree":
		return textValue(s.e.Degree)
	case "field_of_study":
		return textValue(s.e.FieldOfStudy)
	case "start_date":
		return textValue(s.e.StartDate)
	case "end_date":
		return textValue(s.e.EndDate)
	case "description":
		return textValue(s.e.Description)
	case "date_range":
		return textValue(dateRange(s.e.StartDate, s.e.EndDate))
	}
	return s.indexed.lookup(name)
}

type projectItem struct {
	indexed
	p model.Project
}

func (s projectItem) lookup(name string) (value, bool) {
	switch name {
	case "name":
		return textValue(s.p.Name)
	case "description":
		return textValue(s.p.Description)
	case "start_date":
		return textValue(s.p.StartDate)
	case "end_date":
		return textValue(s.p.EndDate)
	case "url":
		return textValue(s.p.URL)
	case "url_label":
		return textValue(URLLabel(s.p.URL))
	case "date_range":
		return textValue(dateRange(s.p.StartDate, s.p.EndDate))
	}
	return s.indexed.lookup(name)
}

type certificationItem struct {
	indexed
	c model.Certification
}

func (s certificationItem) lookup(name string) (value, bool) {
	switch name {
	case "name":
		return textValue(s.c.Name)
	case "issuer":
		return textValue(s.c.Issuer)
	case "date":
		return textValue(s.c.Date)
	case "url":
		return textValue(s.c.URL)
	case "url_label":
		return textValue(URLLabel(s.c.URL))
	}
	return s.indexed.lookup(name)
}

type testimonialItem struct {
	indexed
	t model.Testimonial
}

func (s testimonialItem) lookup(name string) (value, bool) {
	switch name {
	case "name":
		return textValue(s.t.Name)
	case "photo":
		return textValue(s.t.Photo)
	case "date":
		return textValue(s.t.Date)
	case "rating":
		return textValue(strconv.Itoa(s.t.Stars()))
	case "text":
		return textValue(s.t.Text)
	case "stars":
		return textValue(Stars(s.t.Rating))
	}
	return s.indexed.lookup(name)
}

const (
	filledStar = "★"
	emptyStar  = "☆"
)

// Stars renders a 0..5 rating as filled stars followed by empty ones.
func Stars(rating int) string {
	r := model.Testimonial{Rating: rating}.Stars()
	return strings.Repeat(filledStar, r) + strings.Repeat(emptyStar, 5-r)
}

func dateRange(start, end string) string {
	switch {
	case start == "" && end == "":
		return ""
	case start == "":
		return end
	case end == "":
		return start + " – Present"
	}
	return start + " – " + end
}

// URLLabel shortens a link to its registrable domain, e.g.
// "https://www.credly.com/badges/x" becomes "credly.com".
func URLLabel(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	candidate := raw
	if !strings.HasPrefix(candidate, "http://") && !strings.HasPrefix(candidate, "https://") {
		candidate = "https://" + candidate
	}
	parsed, err := url.Parse(candidate)
	if err != nil {
		return raw
	}
	host := parsed.Hostname()
	if host == "" {
		return raw
	}
	if etld, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return strings.TrimPrefix(etld, "www.")
	}
	return strings.TrimPrefix(host, "www.")
}
