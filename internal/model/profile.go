package model

// Go models that match profile.schema.json. Every field is optional; the zero
// value means "absent" and every accessor is safe on a nil receiver.

type BasicInfo struct {
	Name               string `json:"name,omitempty" yaml:"name,omitempty"`
	CurrentDesignation string `json:"current_designation,omitempty" yaml:"current_designation,omitempty"`
	Email              string `json:"email,omitempty" yaml:"email,omitempty"`
	Phone              string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Country            string `json:"country,omitempty" yaml:"country,omitempty"`
}

type Skills struct {
	TechnicalSkills []string `json:"technical_skills,omitempty" yaml:"technical_skills,omitempty"`
	SoftSkills      []string `json:"soft_skills,omitempty" yaml:"soft_skills,omitempty"`
	Languages       []string `json:"languages,omitempty" yaml:"languages,omitempty"`
}

type Experience struct {
	Company     string `json:"company,omitempty" yaml:"company,omitempty"`
	Position    string `json:"position,omitempty" yaml:"position,omitempty"`
	StartDate   string `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

type Education struct {
	Institution  string `json:"institution,omitempty" yaml:"institution,omitempty"`
	Degree       string `json:"degree,omitempty" yaml:"degree,omitempty"`
	FieldOfStudy string `json:"field_of_study,omitempty" yaml:"field_of_study,omitempty"`
	StartDate    string `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
}

type Project struct {
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	StartDate   string `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	URL         string `json:"url,omitempty" yaml:"url,omitempty"`
}

type Certification struct {
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Issuer string `json:"issuer,omitempty" yaml:"issuer,omitempty"`
	Date   string `json:"date,omitempty" yaml:"date,omitempty"`
	URL    string `json:"url,omitempty" yaml:"url,omitempty"`
}

type Testimonial struct {
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Photo  string `json:"photo,omitempty" yaml:"photo,omitempty"`
	Date   string `json:"date,omitempty" yaml:"date,omitempty"`
	Rating int    `json:"rating,omitempty" yaml:"rating,omitempty"`
	Text   string `json:"text,omitempty" yaml:"text,omitempty"`
}

// Profile is the input of a single render call. It is never mutated by the
// renderer.
type Profile struct {
	BasicInfo      BasicInfo       `json:"basic_info" yaml:"basic_info"`
	Description    string          `json:"description,omitempty" yaml:"description,omitempty"`
	LinkedInURL    string          `json:"linkedin_url,omitempty" yaml:"linkedin_url,omitempty"`
	GitHubURL      string          `json:"github_url,omitempty" yaml:"github_url,omitempty"`
	Skills         Skills          `json:"skills" yaml:"skills"`
	Experience     []Experience    `json:"experience,omitempty" yaml:"experience,omitempty"`
	Education      []Education     `json:"education,omitempty" yaml:"education,omitempty"`
	Projects       []Project       `json:"projects,omitempty" yaml:"projects,omitempty"`
	Certifications []Certification `json:"certifications,omitempty" yaml:"certifications,omitempty"`
	Testimonials   []Testimonial   `json:"testimonials,omitempty" yaml:"testimonials,omitempty"`
}

func (p *Profile) Name() string {
	if p == nil {
		return ""
	}
	return p.BasicInfo.Name
}

func (p *Profile) Title() string {
	if p == nil {
		return ""
	}
	return p.BasicInfo.CurrentDesignation
}

func (p *Profile) Email() string {
	if p == nil {
		return ""
	}
	return p.BasicInfo.Email
}

func (p *Profile) Phone() string {
	if p == nil {
		return ""
	}
	return p.BasicInfo.Phone
}

func (p *Profile) Country() string {
	if p == nil {
		return ""
	}
	return p.BasicInfo.Country
}

func (p *Profile) Summary() string {
	if p == nil {
		return ""
	}
	return p.Description
}

func (p *Profile) LinkedIn() string {
	if p == nil {
		return ""
	}
	return p.LinkedInURL
}

func (p *Profile) GitHub() string {
	if p == nil {
		return ""
	}
	return p.GitHubURL
}

func (p *Profile) TechnicalSkills() []string {
	if p == nil {
		return nil
	}
	return p.Skills.TechnicalSkills
}

func (p *Profile) SoftSkills() []string {
	if p == nil {
		return nil
	}
	return p.Skills.SoftSkills
}

func (p *Profile) Languages() []string {
	if p == nil {
		return nil
	}
	return p.Skills.Languages
}

func (p *Profile) ExperienceList() []Experience {
	if p == nil {
		return nil
	}
	return p.Experience
}

func (p *Profile) EducationList() []Education {
	if p == nil {
		return nil
	}
	return p.Education
}

func (p *Profile) ProjectList() []Project {
	if p == nil {
		return nil
	}
	return p.Projects
}

func (p *Profile) CertificationList() []Certification {
	if p == nil {
		return nil
	}
	return p.Certifications
}

func (p *Profile) TestimonialList() []Testimonial {
	if p == nil {
		return nil
	}
	return p.Testimonials
}

// Stars clamps the rating to 0..5.
func (t Testimonial) Stars() int {
	switch {
	case t.Rating < 0:
		return 0
	case t.Rating > 5:
		return 5
	}
	return t.Rating
}
