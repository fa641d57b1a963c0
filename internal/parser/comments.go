// Package parser statically extracts documentation comments and legacy
// relation declarations from schema source files. It only analyzes the
// syntax tree; files are never executed here.
package parser

import (
	"path/filepath"
	"strings"

	"go.starlark.net/syntax"
)

// tableConstructors is the allow-list of table constructor identifiers.
var tableConstructors = map[string]bool{
	"table":        true,
	"pg_table":     true,
	"mysql_table":  true,
	"sqlite_table": true,
}

// TableComments holds the documentation recovered for one table.
// Comment is nil when the declaration has no comment at all; an empty
// string means a comment existed but had no content after stripping.
type TableComments struct {
	Comment *string
	Columns map[string]string // database column name -> comment text
}

// SchemaComments maps database table names to their documentation.
type SchemaComments map[string]*TableComments

// Merge folds another fragment into this one. A table declared in a later
// file replaces the earlier entry wholesale.
func (sc SchemaComments) Merge(other SchemaComments) {
	for name, tc := range other {
		sc[name] = tc
	}
}

// ExtractComments parses one schema source file and returns the
// documentation comments attached to its table and column declarations.
func ExtractComments(filename string, src []byte) (SchemaComments, error) {
	f, err := syntax.Parse(filename, src, syntax.RetainComments)
	if err != nil {
		return nil, &ParseError{File: filename, Message: err.Error()}
	}

	sc := make(SchemaComments)
	for _, stmt := range f.Stmts {
		assign, ok := stmt.(*syntax.AssignStmt)
		if !ok || assign.Op != syntax.EQ {
			continue
		}
		call, ok := assign.RHS.(*syntax.CallExpr)
		if !ok {
			continue
		}
		fn, ok := call.Fn.(*syntax.Ident)
		if !ok || !tableConstructors[fn.Name] {
			continue
		}
		// The table is keyed by its declared name, not the identifier.
		tableName, ok := stringArg(call, 0)
		if !ok {
			continue
		}

		tc := &TableComments{
			Comment: docComment(stmt, assign.LHS, assign.RHS),
			Columns: make(map[string]string),
		}
		if dict, ok := positionalArg(call, 1).(*syntax.DictExpr); ok {
			for _, item := range dict.List {
				entry, ok := item.(*syntax.DictEntry)
				if !ok {
					continue
				}
				inner := innermostCall(entry.Value)
				if inner == nil {
					continue
				}
				colName, ok := stringArg(inner, 0)
				if !ok {
					continue
				}
				if c := docComment(entry, entry.Key, entry.Value); c != nil {
					tc.Columns[colName] = *c
				}
			}
		}
		sc[tableName] = tc
	}
	return sc, nil
}

// positionalArgs returns the call's positional arguments, skipping
// keyword arguments.
func positionalArgs(call *syntax.CallExpr) []syntax.Expr {
	var out []syntax.Expr
	for _, arg := range call.Args {
		if bin, ok := arg.(*syntax.BinaryExpr); ok && bin.Op == syntax.EQ {
			continue
		}
		out = append(out, arg)
	}
	return out
}

// positionalArg returns the i-th positional argument, or nil.
func positionalArg(call *syntax.CallExpr, i int) syntax.Expr {
	args := positionalArgs(call)
	if i >= len(args) {
		return nil
	}
	return args[i]
}

// stringArg returns the i-th positional argument if it is a string literal.
func stringArg(call *syntax.CallExpr, i int) (string, bool) {
	lit, ok := positionalArg(call, i).(*syntax.Literal)
	if !ok || lit.Token != syntax.STRING {
		return "", false
	}
	s, ok := lit.Value.(string)
	return s, ok
}

// innermostCall unwraps a chain of trailing method calls, for example
// integer("id").primary_key().not_null(), down to the constructor call.
func innermostCall(expr syntax.Expr) *syntax.CallExpr {
	call, ok := expr.(*syntax.CallExpr)
	if !ok {
		return nil
	}
	for {
		dot, ok := call.Fn.(*syntax.DotExpr)
		if !ok {
			break
		}
		inner, ok := dot.X.(*syntax.CallExpr)
		if !ok {
			break
		}
		call = inner
	}
	if _, ok := call.Fn.(*syntax.Ident); !ok {
		return nil
	}
	return call
}

// docComment returns the normalized comment immediately preceding the
// first of the candidate nodes that carries one. Nil means no comment.
func docComment(nodes ...syntax.Node) *string {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if c := n.Comments(); c != nil && len(c.Before) > 0 {
			return normalizeComment(c.Before)
		}
	}
	return nil
}

// normalizeComment strips comment decoration and annotation tags.
// Documentation-style lines (##) win over plain line comments when both
// are present in the block.
func normalizeComment(comments []syntax.Comment) *string {
	type line struct {
		doc  bool
		text string
	}
	lines := make([]line, 0, len(comments))
	for _, c := range comments {
		raw := strings.TrimRight(c.Text, "\r\n")
		var l line
		switch {
		case strings.HasPrefix(raw, "##"):
			l = line{doc: true, text: strings.TrimPrefix(raw, "##")}
		case strings.HasPrefix(raw, "#"):
			l = line{text: strings.TrimPrefix(raw, "#")}
		default:
			l = line{text: raw}
		}
		l.text = strings.TrimPrefix(l.text, " ")
		// Drop leading asterisk decoration carried over from block-style
		// habits, e.g. "## * Stores user information."
		if rest, ok := strings.CutPrefix(l.text, "*"); ok {
			l.text = strings.TrimPrefix(rest, " ")
		}
		lines = append(lines, l)
	}

	hasDoc := false
	for _, l := range lines {
		if l.doc {
			hasDoc = true
			break
		}
	}

	kept := make([]string, 0, len(lines))
	for _, l := range lines {
		if hasDoc && !l.doc {
			continue
		}
		// An annotation tag ends the documentation text.
		if strings.HasPrefix(strings.TrimSpace(l.text), "@") {
			break
		}
		kept = append(kept, l.text)
	}

	// Trim leading and trailing blank lines.
	for len(kept) > 0 && strings.TrimSpace(kept[0]) == "" {
		kept = kept[1:]
	}
	for len(kept) > 0 && strings.TrimSpace(kept[len(kept)-1]) == "" {
		kept = kept[:len(kept)-1]
	}

	s := strings.Join(kept, "\n")
	return &s
}

// ParseError reports a schema source file that failed to parse.
type ParseError struct {
	File    string
	Message string
}

func (e *ParseError) Error() string {
	return "parse " + filepath.Base(e.File) + ": " + e.Message
}
