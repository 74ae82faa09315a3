// Package model defines the structural snapshot types compared by refdiff.
package model

import (
	"strings"
)

// Parameter is a single declared operation parameter.
type Parameter struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Variadic bool   `json:"variadic,omitempty" yaml:"variadic,omitempty"`
}

// Operation is a method-like declaration: a signature and an optional body.
// Operations are built once by a source adapter and never mutated afterwards.
type Operation struct {
	Name       string      `json:"name" yaml:"name"`
	ClassName  string      `json:"class,omitempty" yaml:"class,omitempty"`
	Parameters []Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	ReturnType string      `json:"returnType,omitempty" yaml:"return_type,omitempty"`
	Position   int         `json:"position" yaml:"position"`
	Body       *Body       `json:"body,omitempty" yaml:"body,omitempty"`
	Test       bool        `json:"test,omitempty" yaml:"test,omitempty"`
	Location   Range       `json:"location" yaml:"location"`
}

// Key is the structural identity of the operation: name, parameter types
// and return type. Two snapshots of an untouched operation share a key.
func (o *Operation) Key() string {
	var sb strings.Builder

	sb.WriteString(o.Name)
	sb.WriteByte('(')
	sb.WriteString(strings.Join(o.ParameterTypes(), ", "))
	sb.WriteByte(')')

	if o.ReturnType != "" {
		sb.WriteByte(' ')
		sb.WriteString(o.ReturnType)
	}

	return sb.String()
}

func (o *Operation) String() string {
	if o.ClassName == "" {
		return o.Key()
	}

	return o.ClassName + "." + o.Key()
}

// ParameterTypes returns the declared parameter types in order.
func (o *Operation) ParameterTypes() []string {
	types := make([]string, 0, len(o.Parameters))
	for _, p := range o.Parameters {
		types = append(types, p.Type)
	}

	return types
}

// ParameterNames returns the declared parameter names in order.
func (o *Operation) ParameterNames() []string {
	names := make([]string, 0, len(o.Parameters))
	for _, p := range o.Parameters {
		names = append(names, p.Name)
	}

	return names
}

// HasBody reports whether the operation declares a body.
func (o *Operation) HasBody() bool {
	return o.Body != nil
}

// EqualReturnType reports whether both operations return the same type.
func (o *Operation) EqualReturnType(other *Operation) bool {
	return o.ReturnType == other.ReturnType
}

// EqualParameterTypes reports whether both parameter type lists are identical.
func (o *Operation) EqualParameterTypes(other *Operation) bool {
	if len(o.Parameters) != len(other.Parameters) {
		return false
	}

	for i := range o.Parameters {
		if o.Parameters[i].Type != other.Parameters[i].Type {
			return false
		}
	}

	return true
}

func (o *Operation) equalParameterNames(other *Operation) bool {
	if len(o.Parameters) != len(other.Parameters) || len(o.Parameters) == 0 {
		return false
	}

	for i := range o.Parameters {
		if o.Parameters[i].Name != other.Parameters[i].Name {
			return false
		}
	}

	return true
}

// CommonParameterTypes returns the parameter types shared by both
// operations, in this operation's order.
func (o *Operation) CommonParameterTypes(other *Operation) []string {
	remaining := make(map[string]int, len(other.Parameters))
	for _, p := range other.Parameters {
		remaining[p.Type]++
	}

	var common []string

	for _, p := range o.Parameters {
		if remaining[p.Type] > 0 {
			remaining[p.Type]--

			common = append(common, p.Type)
		}
	}

	return common
}

// CompatibleSignature reports whether the other operation's signature could
// have evolved into this one: identical parameter types, identical parameter
// names, or one parameter list containing every type of the other.
func (o *Operation) CompatibleSignature(other *Operation) bool {
	if o.EqualParameterTypes(other) || o.equalParameterNames(other) {
		return true
	}

	if len(o.Parameters) == 0 || len(other.Parameters) == 0 {
		return false
	}

	shorter, longer := o, other
	if len(shorter.Parameters) > len(longer.Parameters) {
		shorter, longer = longer, shorter
	}

	return len(shorter.CommonParameterTypes(longer)) == len(shorter.Parameters)
}

// Invocations returns every distinct invocation in the body, in source order.
func (o *Operation) Invocations() []*Invocation {
	if o.Body == nil {
		return nil
	}

	return o.Body.Invocations()
}

// ContainsInvocation reports whether the body contains an invocation equal to
// inv (same qualifier, name and argument text).
func (o *Operation) ContainsInvocation(inv *Invocation) bool {
	key := inv.Key()
	for _, candidate := range o.Invocations() {
		if candidate.Key() == key {
			return true
		}
	}

	return false
}

// Delegate returns the invocation this operation forwards to when its body is
// a single statement consisting of one call, or nil.
func (o *Operation) Delegate() *Invocation {
	if o.Body == nil {
		return nil
	}

	leaves := o.Body.Leaves()
	if len(leaves) != 1 || len(o.Body.InnerNodes()) > 0 {
		return nil
	}

	return leaves[0].Covering
}
