package parser

import (
	"go.starlark.net/syntax"
)

// RelationKind distinguishes single-record from multi-record declarations.
type RelationKind string

// Relation kinds of the legacy registration API.
const (
	KindSingle RelationKind = "single"
	KindMulti  RelationKind = "multi"
)

// ParsedRelation is one relation recovered from a legacy relations() call.
// Table names are declaration identifiers and join columns are source
// property names; the v0 adapter translates both to database names.
type ParsedRelation struct {
	SourceTable     string
	TargetTable     string
	Kind            RelationKind
	JoinFromColumns []string
	JoinToColumns   []string
}

// HasJoins reports whether the relation carries usable join information.
func (r ParsedRelation) HasJoins() bool {
	return len(r.JoinFromColumns) > 0 && len(r.JoinFromColumns) == len(r.JoinToColumns)
}

// ExtractRelationCalls parses one schema source file and returns every
// relation declared through the legacy relations() registration calls.
func ExtractRelationCalls(filename string, src []byte) ([]ParsedRelation, error) {
	f, err := syntax.Parse(filename, src, 0)
	if err != nil {
		return nil, &ParseError{File: filename, Message: err.Error()}
	}

	var out []ParsedRelation
	syntax.Walk(f, func(n syntax.Node) bool {
		if n == nil {
			return false
		}
		call, ok := n.(*syntax.CallExpr)
		if !ok {
			return true
		}
		if fn, ok := call.Fn.(*syntax.Ident); !ok || fn.Name != "relations" {
			return true
		}
		out = append(out, parseRelationsCall(call)...)
		return true
	})
	return out, nil
}

// parseRelationsCall walks one relations(<table>, lambda r: {...}) call.
// Malformed shapes are dropped without error.
func parseRelationsCall(call *syntax.CallExpr) []ParsedRelation {
	args := positionalArgs(call)
	if len(args) < 2 {
		return nil
	}
	source, ok := args[0].(*syntax.Ident)
	if !ok {
		return nil
	}
	lambda, ok := args[1].(*syntax.LambdaExpr)
	if !ok {
		return nil
	}
	dict, ok := lambda.Body.(*syntax.DictExpr)
	if !ok {
		return nil
	}

	var out []ParsedRelation
	for _, item := range dict.List {
		entry, ok := item.(*syntax.DictEntry)
		if !ok {
			continue
		}
		rel, ok := parseRelationEntry(source.Name, entry.Value)
		if !ok {
			continue
		}
		out = append(out, rel)
	}
	return out
}

// parseRelationEntry reads a single r.one(...) or r.many(...) helper call.
func parseRelationEntry(sourceTable string, expr syntax.Expr) (ParsedRelation, bool) {
	call, ok := expr.(*syntax.CallExpr)
	if !ok {
		return ParsedRelation{}, false
	}

	var helper string
	switch fn := call.Fn.(type) {
	case *syntax.DotExpr:
		helper = fn.Name.Name
	case *syntax.Ident:
		helper = fn.Name
	default:
		return ParsedRelation{}, false
	}

	var kind RelationKind
	switch helper {
	case "one":
		kind = KindSingle
	case "many":
		kind = KindMulti
	default:
		return ParsedRelation{}, false
	}

	target, ok := positionalArg(call, 0).(*syntax.Ident)
	if !ok {
		return ParsedRelation{}, false
	}

	rel := ParsedRelation{
		SourceTable: sourceTable,
		TargetTable: target.Name,
		Kind:        kind,
	}
	// Multi-record relations never carry join columns; they belong to the
	// inverse single-record declaration.
	if kind == KindSingle {
		from := propertyList(keywordArg(call, "fields"))
		to := propertyList(keywordArg(call, "references"))
		if len(from) > 0 && len(from) == len(to) {
			rel.JoinFromColumns = from
			rel.JoinToColumns = to
		}
	}
	return rel, true
}

// keywordArg returns the value of a keyword argument, or nil.
func keywordArg(call *syntax.CallExpr, name string) syntax.Expr {
	for _, arg := range call.Args {
		bin, ok := arg.(*syntax.BinaryExpr)
		if !ok || bin.Op != syntax.EQ {
			continue
		}
		if ident, ok := bin.X.(*syntax.Ident); ok && ident.Name == name {
			return bin.Y
		}
	}
	return nil
}

// propertyList extracts the final property names from a list of dotted
// column accesses, e.g. [posts.author_id, posts.org_id].
func propertyList(expr syntax.Expr) []string {
	list, ok := expr.(*syntax.ListExpr)
	if !ok {
		return nil
	}
	var names []string
	for _, el := range list.List {
		dot, ok := el.(*syntax.DotExpr)
		if !ok {
			continue
		}
		names = append(names, dot.Name.Name)
	}
	return names
}
