package model

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/microcosm-cc/bluemonday"
)

func TestDecodeProfile(t *testing.T) {
	raw := []byte(`{
		"basic_info": {"name": "Ada", "email": null},
		"linkedin_url": null,
		"skills": {"technical_skills": ["Go"], "languages": null},
		"experience": [{"company": "Engines", "position": "Engineer", "start_date": "1842"}],
		"testimonials": [{"name": "Charles", "rating": 5}],
		"unknown_extra": {"kept": "out"}
	}`)
	p, err := DecodeProfile(raw)
	if err != nil {
		t.Fatalf("DecodeProfile: %v", err)
	}
	want := &Profile{
		BasicInfo:    BasicInfo{Name: "Ada"},
		Skills:       Skills{TechnicalSkills: []string{"Go"}},
		Experience:   []Experience{{Company: "Engines", Position: "Engineer", StartDate: "1842"}},
		Testimonials: []Testimonial{{Name: "Charles", Rating: 5}},
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Fatalf("profile mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeProfile_Empty(t *testing.T) {
	for _, raw := range []string{"", "  ", "null", "{}"} {
		p, err := DecodeProfile([]byte(raw))
		if err != nil {
			t.Fatalf("DecodeProfile(%q): %v", raw, err)
		}
		if p == nil || p.Name() != "" || len(p.ExperienceList()) != 0 {
			t.Fatalf("DecodeProfile(%q) = %+v", raw, p)
		}
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := map[string]string{
		"rating too high":   `{"testimonials":[{"rating":6}]}`,
		"rating negative":   `{"testimonials":[{"rating":-1}]}`,
		"rating fractional": `{"testimonials":[{"rating":2.5}]}`,
		"skills not a list": `{"skills":{"technical_skills":"Go"}}`,
		"name not a string": `{"basic_info":{"name":42}}`,
		"not an object":     `[1,2]`,
		"malformed json":    `{"basic_info":`,
		"javascript link":   `{"linkedin_url":"javascript:alert(1)"}`,
		"data photo":        `{"testimonials":[{"photo":"data:text/html,x"}]}`,
		"encoded scheme":    `{"projects":[{"url":"javascript&#58;alert(1)"}]}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			err := Validate([]byte(raw))
			var verr *ValidationError
			if !errors.As(err, &verr) || len(verr.Problems) == 0 {
				t.Fatalf("Validate(%s) = %v, want ValidationError", raw, err)
			}
		})
	}
}

func TestValidateMap(t *testing.T) {
	if err := ValidateMap(map[string]interface{}{"description": "hi"}); err != nil {
		t.Fatalf("ValidateMap: %v", err)
	}
	if err := ValidateMap(map[string]interface{}{"description": 3}); err == nil {
		t.Fatal("expected error for numeric description")
	}
}

func TestStarsClamp(t *testing.T) {
	for in, want := range map[int]int{-3: 0, 0: 0, 3: 3, 5: 5, 11: 5} {
		if got := (Testimonial{Rating: in}).Stars(); got != want {
			t.Errorf("Stars(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestNilProfileAccessors(t *testing.T) {
	var p *Profile
	if p.Name() != "" || p.GitHub() != "" || p.TechnicalSkills() != nil || p.TestimonialList() != nil {
		t.Fatal("nil profile accessors should return zero values")
	}
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"ada.yaml": "basic_info:\n  name: Ada\nskills:\n  languages: [English]\ntestimonials:\n  - name: C\n    rating: 4\n",
		"ada.yml":  "basic_info:\n  name: Ada\nskills:\n  languages: [English]\ntestimonials:\n  - name: C\n    rating: 4\n",
		"ada.json": `{"basic_info":{"name":"Ada"},"skills":{"languages":["English"]},"testimonials":[{"name":"C","rating":4}]}`,
	}
	want := &Profile{
		BasicInfo:    BasicInfo{Name: "Ada"},
		Skills:       Skills{Languages: []string{"English"}},
		Testimonials: []Testimonial{{Name: "C", Rating: 4}},
	}
	for name, body := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			got, err := LoadProfile(path)
			if err != nil {
				t.Fatalf("LoadProfile: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadProfile_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadProfile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("testimonials:\n  - rating: 9\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var verr *ValidationError
	if _, err := LoadProfile(bad); !errors.As(err, &verr) {
		t.Errorf("err = %v, want ValidationError", err)
	}

	empty := filepath.Join(dir, "empty.yml")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if p, err := LoadProfile(empty); err != nil || p == nil {
		t.Errorf("empty yaml: %v, %v", p, err)
	}
}

func TestSanitize(t *testing.T) {
	in := &Profile{
		BasicInfo:    BasicInfo{Name: `Ada<script>alert(1)</script>`},
		Description:  `<b>bold</b><script>evil()</script>`,
		Skills:       Skills{TechnicalSkills: []string{"<i>Go</i>"}},
		Projects:     []Project{{Name: "P", URL: "https://example.com"}},
		Testimonials: []Testimonial{{Name: "C", Rating: 4}},
	}
	out := Sanitize(in, nil)

	if out.Name() != "Ada" {
		t.Errorf("name = %q", out.Name())
	}
	if out.Summary() != "<b>bold</b>" {
		t.Errorf("description = %q", out.Summary())
	}
	if diff := cmp.Diff([]string{"<i>Go</i>"}, out.TechnicalSkills()); diff != "" {
		t.Errorf("skills (-want +got):\n%s", diff)
	}
	if out.TestimonialList()[0].Rating != 4 || out.ProjectList()[0].URL != "https://example.com" {
		t.Errorf("untouched fields changed: %+v", out)
	}
	if in.Name() != `Ada<script>alert(1)</script>` {
		t.Error("input was modified")
	}

	strict := Sanitize(in, bluemonday.StrictPolicy())
	if strict.TechnicalSkills()[0] != "Go" {
		t.Errorf("strict skills = %q", strict.TechnicalSkills())
	}
	if Sanitize(nil, nil) == nil {
		t.Error("Sanitize(nil) returned nil")
	}
}

func TestValidate_AcceptsLinks(t *testing.T) {
	for _, u := range []string{"", "https://github.com/ada", "HTTP://example.com", "credly.com/badges/1", "/avatars/ada.png"} {
		raw := `{"github_url":"` + u + `","certifications":[{"url":"` + u + `"}]}`
		if err := Validate([]byte(raw)); err != nil {
			t.Errorf("Validate(%q) = %v", u, err)
		}
	}
}

func TestSanitize_BlanksUnsafeLinks(t *testing.T) {
	in := &Profile{
		LinkedInURL:    "javascript:alert(1)",
		GitHubURL:      "https://github.com/ada",
		Projects:       []Project{{Name: "P", URL: " JavaScript:void(0)"}},
		Certifications: []Certification{{Name: "C", URL: "credly.com/badges/1"}},
		Testimonials:   []Testimonial{{Name: "T", Photo: "javascript&#58;alert(1)"}},
	}
	out := Sanitize(in, nil)

	got := []string{out.LinkedInURL, out.GitHubURL, out.Projects[0].URL, out.Certifications[0].URL, out.Testimonials[0].Photo}
	want := []string{"", "https://github.com/ada", "", "credly.com/badges/1", ""}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("links (-want +got):\n%s", diff)
	}
}

func TestSafeURL(t *testing.T) {
	tests := map[string]string{
		"":                      "",
		"https://example.com":   "https://example.com",
		"http://x/y?a=b:c":      "http://x/y?a=b:c",
		"example.com/a:b":       "example.com/a:b",
		"vbscript:msgbox":       "",
		"data:image/png;base64": "",
	}
	for in, want := range tests {
		if got := SafeURL(in); got != want {
			t.Errorf("SafeURL(%q) = %q, want %q", in, got, want)
		}
	}
}
