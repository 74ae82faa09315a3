package model

import (
	"strconv"
	"strings"
)

// StatementKind classifies a body fragment.
type StatementKind string

const (
	// StatementLeaf is a simple statement with no nested statements.
	StatementLeaf StatementKind = "leaf"
	// StatementComposite is a control structure (if, for, switch, try, ...).
	StatementComposite StatementKind = "composite"
	// StatementBlock is a bare block; it never counts as a mapping.
	StatementBlock StatementKind = "block"
)

// Statement is a node of an operation body. Composite statements carry their
// header as Text and their nested statements as Children.
type Statement struct {
	Kind         StatementKind `json:"kind" yaml:"kind"`
	Text         string        `json:"text" yaml:"text"`
	Depth        int           `json:"depth,omitempty" yaml:"depth,omitempty"`
	Location     Range         `json:"location" yaml:"location"`
	Invocations  []*Invocation `json:"invocations,omitempty" yaml:"invocations,omitempty"`
	Covering     *Invocation   `json:"covering,omitempty" yaml:"covering,omitempty"`
	VariableType string        `json:"variableType,omitempty" yaml:"variable_type,omitempty"`
	Children     []*Statement  `json:"children,omitempty" yaml:"children,omitempty"`
}

// IsLeaf reports whether the statement is a leaf.
func (s *Statement) IsLeaf() bool {
	return s.Kind == StatementLeaf
}

// IsBlock reports whether the statement is a bare block.
func (s *Statement) IsBlock() bool {
	return s.Kind == StatementBlock
}

// CallsAny reports whether one of the statement's invocations matches any of
// the given operations.
func (s *Statement) CallsAny(ops []*Operation) bool {
	for _, inv := range s.Invocations {
		for _, op := range ops {
			if inv.Matches(op) {
				return true
			}
		}
	}

	return false
}

func (s *Statement) String() string {
	return s.Text
}

// Body is the ordered list of top-level statements of an operation.
type Body struct {
	Statements []*Statement `json:"statements" yaml:"statements"`
}

// Walk visits every statement in pre-order.
func (b *Body) Walk(fn func(*Statement)) {
	var visit func(stmts []*Statement)

	visit = func(stmts []*Statement) {
		for _, s := range stmts {
			fn(s)
			visit(s.Children)
		}
	}

	visit(b.Statements)
}

// Flatten returns all statements in pre-order.
func (b *Body) Flatten() []*Statement {
	var out []*Statement

	b.Walk(func(s *Statement) { out = append(out, s) })

	return out
}

// Leaves returns leaf statements in pre-order.
func (b *Body) Leaves() []*Statement {
	var out []*Statement

	b.Walk(func(s *Statement) {
		if s.Kind == StatementLeaf {
			out = append(out, s)
		}
	})

	return out
}

// InnerNodes returns composite statements in pre-order. Bare blocks are
// excluded.
func (b *Body) InnerNodes() []*Statement {
	var out []*Statement

	b.Walk(func(s *Statement) {
		if s.Kind == StatementComposite {
			out = append(out, s)
		}
	})

	return out
}

// Invocations returns every distinct invocation in source order.
func (b *Body) Invocations() []*Invocation {
	var out []*Invocation

	seen := make(map[string]struct{})

	b.Walk(func(s *Statement) {
		for _, inv := range s.Invocations {
			key := inv.Key()
			if _, ok := seen[key]; ok {
				continue
			}

			seen[key] = struct{}{}

			out = append(out, inv)
		}
	})

	return out
}

// Invocation is a call site.
type Invocation struct {
	MethodName string   `json:"name" yaml:"name"`
	Arguments  []string `json:"arguments,omitempty" yaml:"arguments,omitempty"`
	Qualifier  string   `json:"qualifier,omitempty" yaml:"qualifier,omitempty"`
	Location   Range    `json:"location" yaml:"location"`
}

// selfQualifiers are receivers that resolve to the enclosing class.
var selfQualifiers = map[string]struct{}{
	"":      {},
	"this":  {},
	"super": {},
}

// Key identifies the invocation by qualifier, name and argument text.
func (i *Invocation) Key() string {
	var sb strings.Builder

	if i.Qualifier != "" {
		sb.WriteString(i.Qualifier)
		sb.WriteByte('.')
	}

	sb.WriteString(i.MethodName)
	sb.WriteByte('(')
	sb.WriteString(strings.Join(i.Arguments, ", "))
	sb.WriteByte(')')

	return sb.String()
}

func (i *Invocation) String() string {
	return i.Key() + "/" + strconv.Itoa(len(i.Arguments))
}

// Matches reports whether the call could resolve to op: same name, arity
// compatible with the parameter list (variadic aware) and a qualifier that
// refers to the enclosing class.
func (i *Invocation) Matches(op *Operation) bool {
	if op == nil || i.MethodName != op.Name {
		return false
	}

	if _, ok := selfQualifiers[i.Qualifier]; !ok && i.Qualifier != op.ClassName {
		return false
	}

	return i.AcceptedBy(op)
}

// AcceptedBy reports whether op's parameter list accepts the call's
// arguments. A trailing variadic parameter accepts any number of extra ones.
func (i *Invocation) AcceptedBy(op *Operation) bool {
	params := len(op.Parameters)
	if params > 0 && op.Parameters[params-1].Variadic {
		return len(i.Arguments) >= params-1
	}

	return len(i.Arguments) == params
}

// SharesArguments reports whether both invocations pass at least one
// identical argument expression.
func (i *Invocation) SharesArguments(other *Invocation) bool {
	return len(i.CommonArguments(other)) > 0
}

// CommonArguments returns the distinct argument expressions passed by both
// invocations, in this invocation's order.
func (i *Invocation) CommonArguments(other *Invocation) []string {
	theirs := make(map[string]struct{}, len(other.Arguments))
	for _, a := range other.Arguments {
		theirs[a] = struct{}{}
	}

	var common []string

	seen := make(map[string]struct{})

	for _, a := range i.Arguments {
		if _, ok := theirs[a]; !ok {
			continue
		}

		if _, ok := seen[a]; ok {
			continue
		}

		seen[a] = struct{}{}

		common = append(common, a)
	}

	return common
}
