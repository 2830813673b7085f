// Package query parses the component query language into component filters.
//
// The language is a small boolean algebra over component type names:
//
//	CONTAINS(Position, Velocity)   entities holding both types
//	EXACT(Position)                entities holding only Position
//	ALL()                          every entity
//	!CONTAINS(Health)              negation
//	CONTAINS(A) & !CONTAINS(B)     conjunction, left associative
//	EXACT(A, B) | ALL()            disjunction, left associative
//	( ... )                        grouping
//
// Parse resolves component names through a caller-supplied lookup, so the
// same text can be parsed against any registry.
package query

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/rotisserie/eris"

	"github.com/strata-engine/strata/filter"
)

type queryOperator int

const (
	opAnd queryOperator = iota
	opOr
)

var operatorMap = map[string]queryOperator{"&": opAnd, "|": opOr}

// Capture tells the parser library how to transform a parsed string token
// into the operator type.
func (o *queryOperator) Capture(s []string) error {
	if len(s) == 0 {
		return eris.New("invalid operator")
	}
	operator, ok := operatorMap[s[0]]
	if !ok {
		return eris.New("invalid operator")
	}
	*o = operator
	return nil
}

type queryComponent struct {
	Name string `@Ident`
}

type queryAll struct{}

func (a *queryAll) Capture(values []string) error {
	if values[0] == "ALL" && values[1] == "(" && values[2] == ")" {
		*a = queryAll{}
	}
	return nil
}

type queryNot struct {
	SubExpression *queryValue `"!" @@`
}

type queryExact struct {
	Components []*queryComponent `"EXACT""(" (@@",")* @@ ")"`
}

type queryContains struct {
	Components []*queryComponent `"CONTAINS" "(" (@@",")* @@ ")"`
}

type queryValue struct {
	All           *queryAll      `@("ALL" "(" ")")`
	Exact         *queryExact    `| @@`
	Contains      *queryContains `| @@`
	Not           *queryNot      `| @@`
	Subexpression *queryTerm     `| "(" @@ ")"`
}

type queryFactor struct {
	Base *queryValue `@@`
}

type queryOpFactor struct {
	Operator queryOperator `@("&" | "|")`
	Factor   *queryFactor  `@@`
}

type queryTerm struct {
	Left  *queryFactor     `@@`
	Right []*queryOpFactor `@@*`
}

// Display

func (o queryOperator) String() string {
	switch o {
	case opAnd:
		return "&"
	case opOr:
		return "|"
	}
	panic("unsupported operator")
}

func (a *queryAll) String() string {
	return "ALL()"
}

func (e *queryExact) String() string {
	parameters := ""
	for i, comp := range e.Components {
		parameters += comp.Name
		if i < len(e.Components)-1 {
			parameters += ", "
		}
	}
	return "EXACT(" + parameters + ")"
}

func (e *queryContains) String() string {
	parameters := ""
	for i, comp := range e.Components {
		parameters += comp.Name
		if i < len(e.Components)-1 {
			parameters += ", "
		}
	}
	return "CONTAINS(" + parameters + ")"
}

func (v *queryValue) String() string {
	switch {
	case v.Exact != nil:
		return v.Exact.String()
	case v.Contains != nil:
		return v.Contains.String()
	case v.All != nil:
		return v.All.String()
	case v.Not != nil:
		return "!(" + v.Not.SubExpression.String() + ")"
	case v.Subexpression != nil:
		return "(" + v.Subexpression.String() + ")"
	default:
		panic("logic error displaying query ast. Check the code in query.go")
	}
}

func (f *queryFactor) String() string {
	return f.Base.String()
}

func (o *queryOpFactor) String() string {
	return fmt.Sprintf("%s %s", o.Operator, o.Factor)
}

func (t *queryTerm) String() string {
	out := []string{t.Left.String()}
	for _, r := range t.Right {
		out = append(out, r.String())
	}
	return strings.Join(out, " ")
}

var internalQueryParser = participle.MustBuild[queryTerm]()

// Lookup resolves a component type name to the component it identifies.
type Lookup func(name string) (filter.Component, error)

func valueToComponentFilter(value *queryValue, lookup Lookup) (filter.ComponentFilter, error) {
	switch {
	case value.Not != nil:
		resultFilter, err := valueToComponentFilter(value.Not.SubExpression, lookup)
		if err != nil {
			return nil, err
		}
		return filter.Not(resultFilter), nil
	case value.Exact != nil:
		if len(value.Exact.Components) == 0 {
			return nil, eris.New("EXACT cannot have zero parameters")
		}
		components := make([]filter.Component, 0, len(value.Exact.Components))
		for _, componentName := range value.Exact.Components {
			comp, err := lookup(componentName.Name)
			if err != nil {
				return nil, eris.Wrap(err, "")
			}
			components = append(components, comp)
		}
		return filter.Exact(components...), nil
	case value.All != nil:
		return filter.All(), nil
	case value.Contains != nil:
		if len(value.Contains.Components) == 0 {
			return nil, eris.New("CONTAINS cannot have zero parameters")
		}
		components := make([]filter.Component, 0, len(value.Contains.Components))
		for _, componentName := range value.Contains.Components {
			comp, err := lookup(componentName.Name)
			if err != nil {
				return nil, eris.Wrap(err, "")
			}
			components = append(components, comp)
		}
		return filter.Contains(components...), nil
	case value.Subexpression != nil:
		return termToComponentFilter(value.Subexpression, lookup)
	default:
		return nil, eris.New("unknown error during conversion from query AST to ComponentFilter")
	}
}

func factorToComponentFilter(factor *queryFactor, lookup Lookup) (filter.ComponentFilter, error) {
	return valueToComponentFilter(factor.Base, lookup)
}

func opFactorToComponentFilter(
	opFactor *queryOpFactor, lookup Lookup,
) (*queryOperator, filter.ComponentFilter, error) {
	resultFilter, err := factorToComponentFilter(opFactor.Factor, lookup)
	if err != nil {
		return nil, nil, err
	}
	return &opFactor.Operator, resultFilter, nil
}

func termToComponentFilter(term *queryTerm, lookup Lookup) (filter.ComponentFilter, error) {
	if term.Left == nil {
		return nil, eris.New("not enough values in expression")
	}
	acc, err := factorToComponentFilter(term.Left, lookup)
	if err != nil {
		return nil, err
	}
	for _, opFactor := range term.Right {
		operator, resultFilter, err := opFactorToComponentFilter(opFactor, lookup)
		if err != nil {
			return nil, err
		}
		switch *operator {
		case opAnd:
			acc = filter.And(acc, resultFilter)
		case opOr:
			acc = filter.Or(acc, resultFilter)
		default:
			return nil, eris.New("invalid operator")
		}
	}
	return acc, nil
}

// Parse parses query text and lowers it to a component filter, resolving
// component names through the lookup.
func Parse(queryText string, lookup Lookup) (filter.ComponentFilter, error) {
	term, err := internalQueryParser.ParseString("", queryText)
	if err != nil {
		return nil, eris.Wrap(err, "")
	}
	resultFilter, err := termToComponentFilter(term, lookup)
	if err != nil {
		return nil, err
	}
	return resultFilter, nil
}
