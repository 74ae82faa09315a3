package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	m "refdiff.dev/pkg/refdiff/internal/model"
)

// JavaFileAdapter extracts classes from Java sources with Tree-sitter.
type JavaFileAdapter struct {
	language *sitter.Language
}

// NewJavaFileAdapter constructs a JavaFileAdapter.
func NewJavaFileAdapter() *JavaFileAdapter {
	return &JavaFileAdapter{language: java.GetLanguage()}
}

// Language implements ClassSource.
func (a *JavaFileAdapter) Language() m.Language {
	return m.LanguageJava
}

// Supports implements ClassSource.
func (a *JavaFileAdapter) Supports(path m.Path) bool {
	return strings.EqualFold(filepath.Ext(string(path)), ".java")
}

// Classes implements ClassSource. Nested classes are reported separately under
// their dotted name.
func (a *JavaFileAdapter) Classes(path m.Path, src []byte) ([]*m.Class, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(a.language)

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		slog.Debug("java source contains syntax errors", "path", path)
	}

	conv := &javaConverter{src: src, path: path}

	for i := 0; i < int(root.NamedChildCount()); i++ {
		conv.typeDeclaration(root.NamedChild(i), "")
	}

	for _, c := range conv.classes {
		c.Reindex()
	}

	return conv.classes, nil
}

type javaConverter struct {
	src     []byte
	path    m.Path
	classes []*m.Class
}

func isJavaTypeDeclaration(kind string) bool {
	switch kind {
	case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
		return true
	}

	return false
}

func (c *javaConverter) typeDeclaration(n *sitter.Node, outer string) {
	if n == nil || !isJavaTypeDeclaration(n.Type()) {
		return
	}

	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}

	name := nameNode.Content(c.src)
	if outer != "" {
		name = outer + "." + name
	}

	class := &m.Class{Name: name, File: c.path}
	c.classes = append(c.classes, class)

	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}

	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)

		switch member.Type() {
		case "method_declaration", "constructor_declaration":
			class.Operations = append(class.Operations, c.operation(member))
		case "field_declaration":
			class.Attributes = append(class.Attributes, c.fields(member)...)
		case "enum_body_declarations":
			for j := 0; j < int(member.NamedChildCount()); j++ {
				inner := member.NamedChild(j)
				if inner.Type() == "method_declaration" || inner.Type() == "constructor_declaration" {
					class.Operations = append(class.Operations, c.operation(inner))
				}
			}
		default:
			c.typeDeclaration(member, name)
		}
	}
}

func (c *javaConverter) content(n *sitter.Node) string {
	if n == nil {
		return ""
	}

	return n.Content(c.src)
}

func (c *javaConverter) location(n *sitter.Node) m.Range {
	start, end := n.StartPoint(), n.EndPoint()

	return m.Range{
		File:        c.path,
		StartLine:   int(start.Row) + 1,
		StartColumn: int(start.Column) + 1,
		EndLine:     int(end.Row) + 1,
		EndColumn:   int(end.Column) + 1,
	}
}

func (c *javaConverter) fields(n *sitter.Node) []m.Attribute {
	typ := c.content(n.ChildByFieldName("type"))

	var attrs []m.Attribute

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != "variable_declarator" {
			continue
		}

		attrs = append(attrs, m.Attribute{
			Name:     c.content(child.ChildByFieldName("name")),
			Type:     typ,
			Location: c.location(child),
		})
	}

	return attrs
}

func (c *javaConverter) operation(n *sitter.Node) *m.Operation {
	op := &m.Operation{
		Name:       c.content(n.ChildByFieldName("name")),
		ReturnType: c.content(n.ChildByFieldName("type")),
		Location:   c.location(n),
	}

	if params := n.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			if p, ok := c.parameter(params.NamedChild(i)); ok {
				op.Parameters = append(op.Parameters, p)
			}
		}
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		if mod := n.NamedChild(i); mod.Type() == "modifiers" {
			op.Test = hasTestAnnotation(c.content(mod))
		}
	}

	if body := n.ChildByFieldName("body"); body != nil {
		op.Body = &m.Body{Statements: c.statements(body, 0)}
	}

	return op
}

func hasTestAnnotation(modifiers string) bool {
	for _, field := range strings.Fields(modifiers) {
		if field == "@Test" || strings.HasPrefix(field, "@Test(") {
			return true
		}
	}

	return false
}

func (c *javaConverter) parameter(n *sitter.Node) (m.Parameter, bool) {
	switch n.Type() {
	case "formal_parameter":
		return m.Parameter{
			Name: c.content(n.ChildByFieldName("name")),
			Type: c.content(n.ChildByFieldName("type")),
		}, true

	case "spread_parameter":
		p := m.Parameter{Variadic: true}

		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)

			switch child.Type() {
			case "variable_declarator":
				p.Name = c.content(child.ChildByFieldName("name"))
			case "modifiers":
			default:
				p.Type = c.content(child) + "..."
			}
		}

		return p, true
	}

	return m.Parameter{}, false
}

// statements converts the named children of a block-like node.
func (c *javaConverter) statements(n *sitter.Node, depth int) []*m.Statement {
	var out []*m.Statement

	for i := 0; i < int(n.NamedChildCount()); i++ {
		if st := c.statement(n.NamedChild(i), depth); st != nil {
			out = append(out, st)
		}
	}

	return out
}

//nolint:cyclop // one case per statement kind
func (c *javaConverter) statement(n *sitter.Node, depth int) *m.Statement {
	switch n.Type() {
	case "line_comment", "block_comment", ";":
		return nil

	case "block", "constructor_body":
		return &m.Statement{
			Kind:     m.StatementBlock,
			Text:     "{",
			Depth:    depth,
			Location: c.location(n),
			Children: c.statements(n, depth+1),
		}

	case "labeled_statement":
		return c.statement(n.NamedChild(int(n.NamedChildCount())-1), depth)

	case "if_statement":
		return c.compound(n, depth, n.ChildByFieldName("consequence"), n.ChildByFieldName("alternative"))

	case "for_statement", "enhanced_for_statement", "while_statement", "synchronized_statement":
		return c.compound(n, depth, n.ChildByFieldName("body"))

	case "do_statement":
		out := c.compound(n, depth, n.ChildByFieldName("body"))
		out.Text = "do"

		return out

	case "try_statement", "try_with_resources_statement":
		bodies := []*sitter.Node{n.ChildByFieldName("body")}

		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child.Type() == "catch_clause" || child.Type() == "finally_clause" {
				bodies = append(bodies, child)
			}
		}

		return c.compound(n, depth, bodies...)

	case "catch_clause":
		return c.compound(n, depth, n.ChildByFieldName("body"))

	case "finally_clause":
		var block *sitter.Node

		for i := 0; i < int(n.NamedChildCount()); i++ {
			if child := n.NamedChild(i); child.Type() == "block" {
				block = child
			}
		}

		return c.compound(n, depth, block)

	case "switch_expression", "switch_statement":
		out := &m.Statement{
			Kind:        m.StatementComposite,
			Text:        normalizeText("switch " + c.content(n.ChildByFieldName("condition"))),
			Depth:       depth,
			Location:    c.location(n),
			Invocations: c.invocations(n.ChildByFieldName("condition")),
		}

		if body := n.ChildByFieldName("body"); body != nil {
			out.Children = c.statements(body, depth+1)
		}

		return out

	case "switch_block_statement_group", "switch_rule":
		return c.switchCase(n, depth)
	}

	return c.leaf(n, depth)
}

// compound renders a composite statement whose header is everything before its
// first body node.
func (c *javaConverter) compound(n *sitter.Node, depth int, bodies ...*sitter.Node) *m.Statement {
	var present []*sitter.Node

	for _, b := range bodies {
		if b != nil {
			present = append(present, b)
		}
	}

	end := n.EndByte()
	if len(present) > 0 {
		end = present[0].StartByte()
	}

	out := &m.Statement{
		Kind:     m.StatementComposite,
		Text:     normalizeText(string(c.src[n.StartByte():end])),
		Depth:    depth,
		Location: c.location(n),
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if !containsNode(present, child) {
			out.Invocations = append(out.Invocations, c.invocations(child)...)
		}
	}

	for _, b := range present {
		if st := c.statement(b, depth+1); st != nil {
			out.Children = append(out.Children, st)
		}
	}

	return out
}

func (c *javaConverter) switchCase(n *sitter.Node, depth int) *m.Statement {
	var labels []string

	out := &m.Statement{Kind: m.StatementComposite, Depth: depth, Location: c.location(n)}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "switch_label" {
			labels = append(labels, c.content(child))
			out.Invocations = append(out.Invocations, c.invocations(child)...)

			continue
		}

		if st := c.statement(child, depth+1); st != nil {
			out.Children = append(out.Children, st)
		}
	}

	out.Text = normalizeText(strings.Join(labels, ", "))

	return out
}

func containsNode(nodes []*sitter.Node, n *sitter.Node) bool {
	for _, candidate := range nodes {
		if candidate.StartByte() == n.StartByte() && candidate.EndByte() == n.EndByte() && candidate.Type() == n.Type() {
			return true
		}
	}

	return false
}

func (c *javaConverter) leaf(n *sitter.Node, depth int) *m.Statement {
	out := &m.Statement{
		Kind:        m.StatementLeaf,
		Text:        normalizeText(c.content(n)),
		Depth:       depth,
		Location:    c.location(n),
		Invocations: c.invocations(n),
	}

	var covering *sitter.Node

	switch n.Type() {
	case "expression_statement", "return_statement":
		if n.NamedChildCount() == 1 {
			expr := n.NamedChild(0)
			if expr.Type() == "assignment_expression" {
				expr = expr.ChildByFieldName("right")
			}

			covering = expr
		}

	case "local_variable_declaration":
		out.VariableType = c.content(n.ChildByFieldName("type"))

		if decl := n.ChildByFieldName("declarator"); decl != nil {
			covering = decl.ChildByFieldName("value")
		}
	}

	if covering != nil && covering.Type() == "method_invocation" {
		out.Covering = c.invocation(covering)
	}

	return out
}

func (c *javaConverter) invocations(n *sitter.Node) []*m.Invocation {
	if n == nil {
		return nil
	}

	var out []*m.Invocation

	iter := sitter.NewIterator(n, sitter.DFSMode)

	for {
		node, err := iter.Next()
		if err != nil || node == nil {
			break
		}

		if node.Type() == "method_invocation" {
			out = append(out, c.invocation(node))
		}
	}

	return out
}

func (c *javaConverter) invocation(n *sitter.Node) *m.Invocation {
	inv := &m.Invocation{
		MethodName: c.content(n.ChildByFieldName("name")),
		Qualifier:  normalizeText(c.content(n.ChildByFieldName("object"))),
		Location:   c.location(n),
	}

	if args := n.ChildByFieldName("arguments"); args != nil {
		for i := 0; i < int(args.NamedChildCount()); i++ {
			arg := args.NamedChild(i)
			if arg.Type() == "line_comment" || arg.Type() == "block_comment" {
				continue
			}

			inv.Arguments = append(inv.Arguments, normalizeText(c.content(arg)))
		}
	}

	return inv
}
