package render

import (
	"fmt"
	"strings"
)

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

// Template is a parsed template. It is immutable after Parse and safe for
// concurrent use.
type Template struct {
	nodes       []Node
	Diagnostics []Diagnostic
}

// Nodes returns the top level nodes.
func (t *Template) Nodes() []Node { return t.nodes }

type frame struct {
	kind     string
	name     string
	offset   int
	target   *[]Node
	ifNode   *IfNode
	elseSeen bool
}

type parser struct {
	src   string
	root  []Node
	stack []*frame
	diags []Diagnostic
}

// Parse never fails. Malformed input is repaired and reported in
// Template.Diagnostics: stray closing tags are dropped, unclosed blocks end at
// the end of input, and a "{{" with no matching "}}" is kept as literal text.
func Parse(src string) *Template {
	p := &parser{src: src}
	p.stack = []*frame{{kind: "root", target: &p.root}}
	p.run()
	return &Template{nodes: p.root, Diagnostics: p.diags}
}

func (p *parser) top() *frame { return p.stack[len(p.stack)-1] }

func (p *parser) emit(n Node) {
	f := p.top()
	*f.target = append(*f.target, n)
}

func (p *parser) text(s string) {
	if s == "" {
		return
	}
	f := p.top()
	if k := len(*f.target); k > 0 {
		if tn, ok := (*f.target)[k-1].(*TextNode); ok {
			tn.Text += s
			return
		}
	}
	p.emit(&TextNode{Text: s})
}

func (p *parser) report(offset int, format string, args ...interface{}) {
	p.diags = append(p.diags, Diagnostic{
		Line:    strings.Count(p.src[:offset], "\n") + 1,
		Offset:  offset,
		Message: fmt.Sprintf(format, args...),
	})
}

func (p *parser) run() {
	pos := 0
	for pos < len(p.src) {
		start := strings.Index(p.src[pos:], openDelim)
		if start < 0 {
			p.text(p.src[pos:])
			break
		}
		start += pos
		end := strings.Index(p.src[start+len(openDelim):], closeDelim)
		if end < 0 {
			p.text(p.src[pos:])
			break
		}
		end += start + len(openDelim)
		p.text(p.src[pos:start])
		p.tag(start, strings.TrimSpace(p.src[start+len(openDelim):end]))
		pos = end + len(closeDelim)
	}
	for len(p.stack) > 1 {
		f := p.top()
		p.report(f.offset, "unclosed {{#%s %s}}", f.kind, f.name)
		p.stack = p.stack[:len(p.stack)-1]
	}
}

func (p *parser) sections() []string {
	var out []string
	for _, f := range p.stack {
		if f.kind == "each" {
			out = append(out, f.name)
		}
	}
	return out
}

func (p *parser) tag(offset int, body string) {
	switch {
	case strings.HasPrefix(body, "!"):
		// comment
	case strings.HasPrefix(body, "#"):
		kind, name := splitTag(body[1:])
		p.open(offset, kind, name)
	case strings.HasPrefix(body, "/"):
		p.close(offset, strings.TrimSpace(body[1:]))
	case body == "else":
		f := p.top()
		if f.kind != "if" || f.elseSeen {
			p.report(offset, "unexpected {{else}}")
			return
		}
		f.elseSeen = true
		f.target = &f.ifNode.Else
	default:
		if !knownName(body, p.sections()) {
			p.report(offset, "unknown placeholder {{%s}}", body)
		}
		p.emit(&VarNode{Name: body})
	}
}

func splitTag(s string) (kind, name string) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "", ""
	}
	if len(fields) > 1 {
		name = fields[1]
	}
	return fields[0], name
}

func (p *parser) open(offset int, kind, name string) {
	switch kind {
	case "if":
		if name == "" {
			p.report(offset, "{{#if}} without a field")
		} else if !knownName(name, p.sections()) {
			p.report(offset, "unknown field in {{#if %s}}", name)
		}
		n := &IfNode{Name: name}
		p.emit(n)
		p.stack = append(p.stack, &frame{kind: kind, name: name, offset: offset, target: &n.Then, ifNode: n})
	case "each":
		if !knownSection(name) {
			p.report(offset, "unknown section in {{#each %s}}", name)
		}
		n := &EachNode{Name: name}
		p.emit(n)
		p.stack = append(p.stack, &frame{kind: kind, name: name, offset: offset, target: &n.Body})
	default:
		p.report(offset, "unknown block {{#%s}}", kind)
	}
}

func (p *parser) close(offset int, kind string) {
	for i := len(p.stack) - 1; i > 0; i-- {
		if p.stack[i].kind != kind {
			continue
		}
		for j := len(p.stack) - 1; j > i; j-- {
			f := p.stack[j]
			p.report(f.offset, "unclosed {{#%s %s}}", f.kind, f.name)
		}
		p.stack = p.stack[:i]
		return
	}
	p.report(offset, "unexpected {{/%s}}", kind)
}
