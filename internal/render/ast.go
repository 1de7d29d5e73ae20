// Package render turns a profile into portfolio HTML. Templates use a small
// logic-less vocabulary: {{field}} substitutes a value, {{#if field}} ...
// {{else}} ... {{/if}} keeps or drops a span, and {{#each section}} ...
// {{/each}} repeats a span once per element. Templates are parsed once into a
// tree and rendered by walking it, so the output of one node is never
// re-scanned for tags.
package render

// Node is an element of a parsed template.
type Node interface {
	node()
}

// TextNode is literal template text, copied through unchanged.
type TextNode struct {
	Text string
}

// VarNode is a {{name}} placeholder.
type VarNode struct {
	Name string
}

// IfNode is a {{#if name}} block. Else is empty unless the block has an
// {{else}} branch.
type IfNode struct {
	Name string
	Then []Node
	Else []Node
}

// EachNode is a {{#each name}} block.
type EachNode struct {
	Name string
	Body []Node
}

func (*TextNode) node() {}
func (*VarNode) node()  {}
func (*IfNode) node()   {}
func (*EachNode) node() {}

// Diagnostic describes a template problem that was tolerated while parsing.
type Diagnostic struct {
	Line    int
	Offset  int
	Message string
}
