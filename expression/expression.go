package expression

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// ErrMalformedExpression is returned when an interchange tree cannot be parsed.
var ErrMalformedExpression = errors.New("malformed expression")

// Op identifies the node kind of an expression.
type Op string

const (
	OpRef     Op = "ref"
	OpLiteral Op = "literal"
	OpChain   Op = "chain"
	OpAnd     Op = "and"
)

// Expression is a node of a boolean/value expression tree.
type Expression interface {
	Op() Op
	Equals(other Expression) bool
	String() string
	// ToJS returns the interchange tree of the expression.
	ToJS() map[string]any
}

// True is the literal expression that matches everything.
var True = Literal{Value: Bool(true)}

// Ref is a reference to a dimension. It is comparable and can be used as a map key.
type Ref struct {
	Name string
}

// NewRef returns a reference to the dimension with the given name.
func NewRef(name string) Ref {
	return Ref{Name: name}
}

func (r Ref) Op() Op { return OpRef }

func (r Ref) IsZero() bool { return r.Name == "" }

func (r Ref) Equals(other Expression) bool {
	o, ok := other.(Ref)
	return ok && o == r
}

func (r Ref) String() string { return "$" + r.Name }

func (r Ref) ToJS() map[string]any {
	return map[string]any{"op": string(OpRef), "name": r.Name}
}

// In builds the constraint "r is in v".
func (r Ref) In(v Value) In {
	return In{Operand: r, Values: Literal{Value: v}}
}

// Literal wraps a literal value.
type Literal struct {
	Value Value
}

func (l Literal) Op() Op { return OpLiteral }

func (l Literal) Equals(other Expression) bool {
	o, ok := other.(Literal)
	if !ok || l.Value == nil || o.Value == nil {
		return ok && l.Value == nil && o.Value == nil
	}
	return l.Value.Equals(o.Value)
}

func (l Literal) String() string {
	if l.Value == nil {
		return "null"
	}
	return l.Value.String()
}

func (l Literal) ToJS() map[string]any {
	js := map[string]any{"op": string(OpLiteral)}
	if l.Value == nil {
		js["value"] = nil
		return js
	}
	if l.Value.Type() != TypeBoolean {
		js["type"] = string(l.Value.Type())
	}
	js["value"] = l.Value.toJS()
	return js
}

// In is the membership constraint "Operand is in Values", where Values is a set or a range.
type In struct {
	Operand Expression
	Values  Literal
}

func (in In) Op() Op { return OpChain }

func (in In) Equals(other Expression) bool {
	o, ok := other.(In)
	if !ok || in.Operand == nil || o.Operand == nil {
		return false
	}
	return in.Operand.Equals(o.Operand) && in.Values.Equals(o.Values)
}

func (in In) String() string {
	return in.Operand.String() + ".in(" + in.Values.String() + ")"
}

func (in In) ToJS() map[string]any {
	return map[string]any{
		"op":         string(OpChain),
		"expression": in.Operand.ToJS(),
		"actions": []any{
			map[string]any{"action": "in", "expression": in.Values.ToJS()},
		},
	}
}

// And is the logical conjunction of its operands.
type And struct {
	Operands []Expression
}

// AndOf returns the conjunction of the given expressions.
// Nested conjunctions are flattened and True operands are dropped;
// no operands yields True and a single operand is returned as is.
func AndOf(exprs ...Expression) Expression {
	var operands []Expression
	for _, e := range exprs {
		switch x := e.(type) {
		case nil:
			continue
		case And:
			operands = append(operands, x.Operands...)
		default:
			if True.Equals(e) {
				continue
			}
			operands = append(operands, e)
		}
	}
	switch len(operands) {
	case 0:
		return True
	case 1:
		return operands[0]
	default:
		return And{Operands: operands}
	}
}

// Conjuncts decomposes a top-level conjunction into its operands.
// True has no conjuncts and any other expression is its own single conjunct.
func Conjuncts(e Expression) []Expression {
	if e == nil || True.Equals(e) {
		return nil
	}
	if and, ok := e.(And); ok {
		return append([]Expression(nil), and.Operands...)
	}
	return []Expression{e}
}

func (a And) Op() Op { return OpAnd }

func (a And) Equals(other Expression) bool {
	o, ok := other.(And)
	if !ok || len(o.Operands) != len(a.Operands) {
		return false
	}
	for i, operand := range a.Operands {
		if !operand.Equals(o.Operands[i]) {
			return false
		}
	}
	return true
}

func (a And) String() string {
	parts := lo.Map(a.Operands, func(e Expression, _ int) string {
		return e.String()
	})
	return "(" + strings.Join(parts, " and ") + ")"
}

func (a And) ToJS() map[string]any {
	return map[string]any{
		"op": string(OpAnd),
		"operands": lo.Map(a.Operands, func(e Expression, _ int) any {
			return e.ToJS()
		}),
	}
}
