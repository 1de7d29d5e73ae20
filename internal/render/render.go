package render

import (
	"strings"
	"sync"
	"time"

	"portfolio-generator/internal/model"
)

// Substituted values may not introduce new tags, so rendering stays
// idempotent whatever the profile contains. Single braces are escaped too:
// a value ending in "{" next to literal text starting with "{" would
// otherwise form a delimiter.
var neutralise = strings.NewReplacer("{", "&#123;", "}", "&#125;")

type execConfig struct {
	now func() time.Time
}

// Option configures a single Execute call.
type Option func(*execConfig)

// WithClock sets the clock used for {{currentYear}}.
func WithClock(now func() time.Time) Option {
	return func(c *execConfig) { c.now = now }
}

// Render parses tpl and renders it against p in one step.
func Render(tpl string, p *model.Profile, opts ...Option) string {
	return Parse(tpl).Execute(p, opts...)
}

// Execute renders the template. Missing fields render as empty strings and
// missing sections as nothing; it never fails.
func (t *Template) Execute(p *model.Profile, opts ...Option) string {
	cfg := execConfig{now: time.Now}
	for _, o := range opts {
		o(&cfg)
	}
	var b strings.Builder
	walk(&b, t.nodes, &chain{s: rootScope{p: p, now: cfg.now()}})
	return b.String()
}

func walk(b *strings.Builder, nodes []Node, c *chain) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *TextNode:
			b.WriteString(n.Text)
		case *VarNode:
			if v := c.lookup(n.Name); !v.list {
				b.WriteString(neutralise.Replace(v.text))
			}
		case *IfNode:
			if c.truthy(n.Name) {
				walk(b, n.Then, c)
			} else {
				walk(b, n.Else, c)
			}
		case *EachNode:
			v := c.lookup(n.Name)
			if !v.list || len(v.items) == 0 {
				continue
			}
			body := n.Body
			if blank(body) {
				body = fragment(n.Name)
			}
			for _, item := range v.items {
				walk(b, body, &chain{s: item, parent: c})
			}
		}
	}
}

func blank(nodes []Node) bool {
	for _, n := range nodes {
		tn, ok := n.(*TextNode)
		if !ok || strings.TrimSpace(tn.Text) != "" {
			return false
		}
	}
	return true
}

// Default markup for an {{#each}} block whose body is empty.
var fragmentSources = map[string]string{
	"technical_skills": `<li class="skill">{{this}}</li>`,
	"soft_skills":      `<li class="skill">{{this}}</li>`,
	"languages":        `<li class="language">{{this}}</li>`,
	"experience": `<div class="experience-item">` +
		`<h3>{{position}}</h3><h4>{{company}}</h4>` +
		`<p class="date">{{date_range}}</p><p>{{description}}</p></div>`,
	"education": `<div class="education-item">` +
		`<h3>{{degree}}{{#if field_of_study}} in {{field_of_study}}{{/if}}</h3><h4>{{institution}}</h4>` +
		`<p class="date">{{date_range}}</p><p>{{description}}</p></div>`,
	"projects": `<div class="project-item"><h3>{{name}}</h3>` +
		`<p class="date">{{date_range}}</p><p>{{description}}</p>` +
		`{{#if url}}<a href="{{url}}" target="_blank" rel="noopener">{{url_label}}</a>{{/if}}</div>`,
	"certifications": `<div class="certification-item"><h3>{{name}}</h3>` +
		`<p>{{issuer}}</p><p class="date">{{date}}</p>` +
		`{{#if url}}<a href="{{url}}" target="_blank" rel="noopener">View Certificate</a>{{/if}}</div>`,
	"testimonials": `<div class="testimonial-item">` +
		`{{#if photo}}<img src="{{photo}}" alt="{{name}}">{{/if}}` +
		`<h4>{{name}}</h4><div class="rating">{{stars}}</div>` +
		`<p>{{text}}</p><span class="date">{{date}}</span></div>`,
}

var (
	fragmentsOnce sync.Once
	fragments     map[string][]Node
)

func fragment(section string) []Node {
	fragmentsOnce.Do(func() {
		fragments = make(map[string][]Node, len(fragmentSources))
		for k, src := range fragmentSources {
			fragments[k] = Parse(src).nodes
		}
	})
	return fragments[sectionAliases[section]]
}
