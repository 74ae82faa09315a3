package adapter

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"path/filepath"
	"strings"

	m "refdiff.dev/pkg/refdiff/internal/model"
)

// GoFileAdapter encapsulates Go-specific parsing so the domain layer only
// sees class snapshots.
type GoFileAdapter interface {
	ClassSource

	// Parse builds an AST using the provided file set and optional source bytes.
	Parse(fileSet *token.FileSet, filename string, src []byte) (*ast.File, error)

	// ExtractClasses turns a parsed file into class snapshots. Methods are
	// grouped by receiver type; package-level functions form a class named
	// after the package.
	ExtractClasses(fileSet *token.FileSet, file *ast.File, path m.Path) []*m.Class
}

// LocalGoFileAdapter provides a concrete GoFileAdapter backed by go/parser.
type LocalGoFileAdapter struct{}

// NewLocalGoFileAdapter constructs a LocalGoFileAdapter.
func NewLocalGoFileAdapter() *LocalGoFileAdapter {
	return &LocalGoFileAdapter{}
}

// Language implements ClassSource.
func (a *LocalGoFileAdapter) Language() m.Language {
	return m.LanguageGo
}

// Supports implements ClassSource.
func (a *LocalGoFileAdapter) Supports(path m.Path) bool {
	return strings.EqualFold(filepath.Ext(string(path)), ".go")
}

// Classes implements ClassSource.
func (a *LocalGoFileAdapter) Classes(path m.Path, src []byte) ([]*m.Class, error) {
	fileSet := token.NewFileSet()

	file, err := a.Parse(fileSet, string(path), src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return a.ExtractClasses(fileSet, file, path), nil
}

// Parse builds an AST for the provided filename/source pair.
func (a *LocalGoFileAdapter) Parse(fileSet *token.FileSet, filename string, src []byte) (*ast.File, error) {
	return parser.ParseFile(fileSet, filename, src, parser.SkipObjectResolution)
}

// ExtractClasses inspects declarations and groups them into classes in order
// of first appearance.
func (a *LocalGoFileAdapter) ExtractClasses(fileSet *token.FileSet, file *ast.File, path m.Path) []*m.Class {
	var classes []*m.Class

	byName := make(map[string]*m.Class)

	classFor := func(name string) *m.Class {
		if c, ok := byName[name]; ok {
			return c
		}

		c := &m.Class{Name: name, File: path}
		byName[name] = c
		classes = append(classes, c)

		return c
	}

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}

			for _, spec := range d.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}

				st, ok := ts.Type.(*ast.StructType)
				if !ok {
					continue
				}

				class := classFor(ts.Name.Name)
				class.Attributes = append(class.Attributes, structFields(fileSet, st, path)...)
			}

		case *ast.FuncDecl:
			className := file.Name.Name
			receiver := ""

			if d.Recv != nil && len(d.Recv.List) > 0 {
				className = receiverTypeName(d.Recv.List[0].Type)
				if len(d.Recv.List[0].Names) > 0 {
					receiver = d.Recv.List[0].Names[0].Name
				}
			}

			class := classFor(className)
			conv := &goConverter{fileSet: fileSet, path: path, receiver: receiver}
			class.Operations = append(class.Operations, conv.operation(d))
		}
	}

	for _, c := range classes {
		c.Reindex()
	}

	return classes
}

func receiverTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverTypeName(t.X)
	case *ast.IndexExpr:
		return receiverTypeName(t.X)
	case *ast.IndexListExpr:
		return receiverTypeName(t.X)
	case *ast.Ident:
		return t.Name
	}

	return ""
}

func structFields(fileSet *token.FileSet, st *ast.StructType, path m.Path) []m.Attribute {
	var attrs []m.Attribute

	for _, field := range st.Fields.List {
		typ := nodeText(fileSet, field.Type)
		loc := nodeRange(fileSet, field, path)

		if len(field.Names) == 0 {
			attrs = append(attrs, m.Attribute{Name: m.ClassType(typ), Type: typ, Location: loc})
			continue
		}

		for _, name := range field.Names {
			attrs = append(attrs, m.Attribute{Name: name.Name, Type: typ, Location: loc})
		}
	}

	return attrs
}

// goConverter renders one function declaration. The receiver identifier is
// rewritten to "this" so that calls on the receiver resolve to the class.
type goConverter struct {
	fileSet  *token.FileSet
	path     m.Path
	receiver string
}

func (c *goConverter) text(node ast.Node) string {
	s := normalizeText(nodeText(c.fileSet, node))
	if c.receiver == "" || c.receiver == "_" {
		return s
	}

	return substitute(s, map[string]string{c.receiver: "this"})
}

func (c *goConverter) operation(d *ast.FuncDecl) *m.Operation {
	op := &m.Operation{
		Name:     d.Name.Name,
		Location: nodeRange(c.fileSet, d, c.path),
	}

	for i, field := range d.Type.Params.List {
		typ := nodeText(c.fileSet, field.Type)
		_, variadic := field.Type.(*ast.Ellipsis)

		if len(field.Names) == 0 {
			op.Parameters = append(op.Parameters, m.Parameter{Name: fmt.Sprintf("_%d", i), Type: typ, Variadic: variadic})
			continue
		}

		for _, name := range field.Names {
			op.Parameters = append(op.Parameters, m.Parameter{Name: name.Name, Type: typ, Variadic: variadic})
		}
	}

	op.ReturnType = c.results(d.Type.Results)
	op.Test = isGoTest(d, op)

	if d.Body != nil {
		op.Body = &m.Body{Statements: c.statements(d.Body.List, 0)}
	}

	return op
}

func (c *goConverter) results(results *ast.FieldList) string {
	if results == nil || len(results.List) == 0 {
		return ""
	}

	var types []string

	for _, field := range results.List {
		typ := nodeText(c.fileSet, field.Type)

		n := max(len(field.Names), 1)
		for range n {
			types = append(types, typ)
		}
	}

	if len(types) == 1 {
		return types[0]
	}

	return "(" + strings.Join(types, ", ") + ")"
}

func isGoTest(d *ast.FuncDecl, op *m.Operation) bool {
	if d.Recv != nil || !strings.HasPrefix(d.Name.Name, "Test") || len(op.Parameters) != 1 {
		return false
	}

	return op.Parameters[0].Type == "*testing.T"
}

func (c *goConverter) statements(list []ast.Stmt, depth int) []*m.Statement {
	out := make([]*m.Statement, 0, len(list))

	for _, s := range list {
		if st := c.statement(s, depth); st != nil {
			out = append(out, st)
		}
	}

	return out
}

func (c *goConverter) composite(node ast.Node, header string, depth int, headerParts ...ast.Node) *m.Statement {
	return &m.Statement{
		Kind:        m.StatementComposite,
		Text:        header,
		Depth:       depth,
		Location:    nodeRange(c.fileSet, node, c.path),
		Invocations: c.invocations(headerParts...),
	}
}

func (c *goConverter) block(b *ast.BlockStmt, depth int) *m.Statement {
	return &m.Statement{
		Kind:     m.StatementBlock,
		Text:     "{",
		Depth:    depth,
		Location: nodeRange(c.fileSet, b, c.path),
		Children: c.statements(b.List, depth+1),
	}
}

func (c *goConverter) joinHeader(keyword string, parts ...ast.Node) string {
	var texts []string

	for _, p := range parts {
		if isNilNode(p) {
			continue
		}

		texts = append(texts, c.text(p))
	}

	if len(texts) == 0 {
		return keyword
	}

	return keyword + " " + strings.Join(texts, "; ")
}

//nolint:cyclop // one case per statement kind
func (c *goConverter) statement(s ast.Stmt, depth int) *m.Statement {
	switch st := s.(type) {
	case *ast.BlockStmt:
		return c.block(st, depth)

	case *ast.LabeledStmt:
		return c.statement(st.Stmt, depth)

	case *ast.IfStmt:
		out := c.composite(st, c.joinHeader("if", st.Init, st.Cond), depth, st.Init, st.Cond)
		out.Children = append(out.Children, c.block(st.Body, depth+1))

		if st.Else != nil {
			out.Children = append(out.Children, c.statement(st.Else, depth+1))
		}

		return out

	case *ast.ForStmt:
		out := c.composite(st, c.joinHeader("for", st.Init, st.Cond, st.Post), depth, st.Init, st.Cond, st.Post)
		out.Children = []*m.Statement{c.block(st.Body, depth+1)}

		return out

	case *ast.RangeStmt:
		header := "for range " + c.text(st.X)
		if st.Key != nil {
			vars := c.text(st.Key)
			if st.Value != nil {
				vars += ", " + c.text(st.Value)
			}

			header = "for " + vars + " " + st.Tok.String() + " range " + c.text(st.X)
		}

		out := c.composite(st, header, depth, st.X)
		out.Children = []*m.Statement{c.block(st.Body, depth+1)}

		return out

	case *ast.SwitchStmt:
		out := c.composite(st, c.joinHeader("switch", st.Init, st.Tag), depth, st.Init, st.Tag)
		out.Children = c.statements(st.Body.List, depth+1)

		return out

	case *ast.TypeSwitchStmt:
		out := c.composite(st, c.joinHeader("switch", st.Init, st.Assign), depth, st.Init, st.Assign)
		out.Children = c.statements(st.Body.List, depth+1)

		return out

	case *ast.SelectStmt:
		out := c.composite(st, "select", depth)
		out.Children = c.statements(st.Body.List, depth+1)

		return out

	case *ast.CaseClause:
		header := "default"
		nodes := make([]ast.Node, 0, len(st.List))

		if st.List != nil {
			parts := make([]string, 0, len(st.List))

			for _, e := range st.List {
				parts = append(parts, c.text(e))
				nodes = append(nodes, e)
			}

			header = "case " + strings.Join(parts, ", ")
		}

		out := c.composite(st, header, depth, nodes...)
		out.Children = c.statements(st.Body, depth+1)

		return out

	case *ast.CommClause:
		header := "default"
		if st.Comm != nil {
			header = "case " + c.text(st.Comm)
		}

		out := c.composite(st, header, depth, st.Comm)
		out.Children = c.statements(st.Body, depth+1)

		return out

	case *ast.EmptyStmt:
		return nil
	}

	return c.leaf(s, depth)
}

func (c *goConverter) leaf(s ast.Stmt, depth int) *m.Statement {
	out := &m.Statement{
		Kind:        m.StatementLeaf,
		Text:        c.text(s),
		Depth:       depth,
		Location:    nodeRange(c.fileSet, s, c.path),
		Invocations: c.invocations(s),
	}

	var covering *ast.CallExpr

	switch st := s.(type) {
	case *ast.ExprStmt:
		covering, _ = st.X.(*ast.CallExpr)
	case *ast.ReturnStmt:
		if len(st.Results) == 1 {
			covering, _ = st.Results[0].(*ast.CallExpr)
		}
	case *ast.AssignStmt:
		if len(st.Rhs) == 1 {
			covering, _ = st.Rhs[0].(*ast.CallExpr)
		}
	case *ast.DeferStmt:
		covering = st.Call
	case *ast.GoStmt:
		covering = st.Call
	case *ast.DeclStmt:
		if gd, ok := st.Decl.(*ast.GenDecl); ok && len(gd.Specs) == 1 {
			if vs, ok := gd.Specs[0].(*ast.ValueSpec); ok {
				if vs.Type != nil {
					out.VariableType = nodeText(c.fileSet, vs.Type)
				}

				if len(vs.Values) == 1 {
					covering, _ = vs.Values[0].(*ast.CallExpr)
				}
			}
		}
	}

	if covering != nil {
		out.Covering = c.invocation(covering)
	}

	return out
}

func (c *goConverter) invocations(nodes ...ast.Node) []*m.Invocation {
	var out []*m.Invocation

	for _, n := range nodes {
		if isNilNode(n) {
			continue
		}

		ast.Inspect(n, func(node ast.Node) bool {
			if call, ok := node.(*ast.CallExpr); ok {
				if inv := c.invocation(call); inv != nil {
					out = append(out, inv)
				}
			}

			return true
		})
	}

	return out
}

func (c *goConverter) invocation(call *ast.CallExpr) *m.Invocation {
	inv := &m.Invocation{Location: nodeRange(c.fileSet, call, c.path)}

	switch fun := call.Fun.(type) {
	case *ast.Ident:
		inv.MethodName = fun.Name
	case *ast.SelectorExpr:
		inv.MethodName = fun.Sel.Name
		inv.Qualifier = c.text(fun.X)
	case *ast.IndexExpr:
		if id, ok := fun.X.(*ast.Ident); ok {
			inv.MethodName = id.Name
		}
	default:
		return nil
	}

	if inv.MethodName == "" {
		return nil
	}

	for _, arg := range call.Args {
		inv.Arguments = append(inv.Arguments, c.text(arg))
	}

	return inv
}

func isNilNode(n ast.Node) bool {
	return n == nil
}

func nodeText(fileSet *token.FileSet, node ast.Node) string {
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, fileSet, node); err != nil {
		return ""
	}

	return buf.String()
}

func nodeRange(fileSet *token.FileSet, node ast.Node, path m.Path) m.Range {
	start := fileSet.Position(node.Pos())
	end := fileSet.Position(node.End())

	return m.Range{
		File:        path,
		StartLine:   start.Line,
		StartColumn: start.Column,
		EndLine:     end.Line,
		EndColumn:   end.Column,
	}
}
