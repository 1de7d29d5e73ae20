package model

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitize returns a copy of p with every user supplied string passed through
// policy. A nil policy defaults to bluemonday's UGC policy. Link fields end up
// in href attributes, so any scheme other than http or https is blanked.
func Sanitize(p *Profile, policy *bluemonday.Policy) *Profile {
	if p == nil {
		return &Profile{}
	}
	if policy == nil {
		policy = bluemonday.UGCPolicy()
	}
	s := policy.Sanitize
	link := func(v string) string { return SafeURL(s(v)) }
	list := func(in []string) []string {
		if in == nil {
			return nil
		}
		out := make([]string, len(in))
		for i, v := range in {
			out[i] = s(v)
		}
		return out
	}

	out := &Profile{
		BasicInfo: BasicInfo{
			Name:               s(p.BasicInfo.Name),
			CurrentDesignation: s(p.BasicInfo.CurrentDesignation),
			Email:              s(p.BasicInfo.Email),
			Phone:              s(p.BasicInfo.Phone),
			Country:            s(p.BasicInfo.Country),
		},
		Description: s(p.Description),
		LinkedInURL: link(p.LinkedInURL),
		GitHubURL:   link(p.GitHubURL),
		Skills: Skills{
			TechnicalSkills: list(p.Skills.TechnicalSkills),
			SoftSkills:      list(p.Skills.SoftSkills),
			Languages:       list(p.Skills.Languages),
		},
	}
	for _, e := range p.Experience {
		out.Experience = append(out.Experience, Experience{
			Company: s(e.Company), Position: s(e.Position),
			StartDate: s(e.StartDate), EndDate: s(e.EndDate), Description: s(e.Description),
		})
	}
	for _, e := range p.Education {
		out.Education = append(out.Education, Education{
			Institution: s(e.Institution), Degree: s(e.Degree), FieldOfStudy: s(e.FieldOfStudy),
			StartDate: s(e.StartDate), EndDate: s(e.EndDate), Description: s(e.Description),
		})
	}
	for _, pr := range p.Projects {
		out.Projects = append(out.Projects, Project{
			Name: s(pr.Name), Description: s(pr.Description),
			StartDate: s(pr.StartDate), EndDate: s(pr.EndDate), URL: link(pr.URL),
		})
	}
	for _, c := range p.Certifications {
		out.Certifications = append(out.Certifications, Certification{
			Name: s(c.Name), Issuer: s(c.Issuer), Date: s(c.Date), URL: link(c.URL),
		})
	}
	for _, t := range p.Testimonials {
		out.Testimonials = append(out.Testimonials, Testimonial{
			Name: s(t.Name), Photo: link(t.Photo), Date: s(t.Date), Rating: t.Rating, Text: s(t.Text),
		})
	}
	return out
}

// SafeURL returns v when it is empty, an http(s) URL or scheme-less, and ""
// otherwise. Entities are decoded first since browsers decode them in href.
func SafeURL(v string) string {
	t := strings.TrimSpace(html.UnescapeString(v))
	i := strings.IndexAny(t, ":/?#")
	if i < 0 || t[i] != ':' {
		return v
	}
	switch strings.ToLower(t[:i]) {
	case "http", "https":
		return v
	}
	return ""
}
