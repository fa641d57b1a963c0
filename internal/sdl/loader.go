package sdl

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"go.starlark.net/starlark"
)

// Loader evaluates schema files and accumulates the live declarations
// they produce. State is owned by one loader, constructed fresh per
// generation run.
type Loader struct {
	dialect Dialect
	seq     int

	tables []*Table
	enums  []*EnumType
	modern []*RelationsEntry
	legacy bool

	idents  map[string]string   // global identifier -> database table name
	globals starlark.StringDict // exports carried to later files
}

// NewLoader creates a loader for the given default dialect.
func NewLoader(dialect Dialect) *Loader {
	if dialect == "" {
		dialect = DialectPostgres
	}
	return &Loader{
		dialect: dialect,
		idents:  make(map[string]string),
		globals: make(starlark.StringDict),
	}
}

func (l *Loader) nextSeq() int {
	l.seq++
	return l.seq
}

// LoadFile evaluates one schema file. Exported globals of earlier files
// are visible to later ones, so relation declarations can reference
// tables declared in a different file of the same run.
func (l *Loader) LoadFile(path string, src []byte) error {
	thread := &starlark.Thread{
		Name: "schema:" + filepath.Base(path),
		Print: func(_ *starlark.Thread, _ string) {
			// Schema files have no output channel.
		},
	}

	predeclared := l.Predeclared()
	for name, v := range l.globals {
		if _, clash := predeclared[name]; !clash {
			predeclared[name] = v
		}
	}

	globals, err := starlark.ExecFile(thread, path, src, predeclared) //nolint:staticcheck // SA1019: will migrate to ExecFileOptions later
	if err != nil {
		return &LoadError{File: path, Message: err.Error()}
	}

	// Relation declarations register themselves during evaluation; the
	// globals pass only records table identifiers and carries exports
	// forward.
	for name, v := range globals {
		if t, ok := v.(*Table); ok {
			l.idents[name] = t.Name
		}
		if !strings.HasPrefix(name, "_") {
			l.globals[name] = v
		}
	}
	return nil
}

// Result is the accumulated outcome of a load run.
type Result struct {
	Tables []*Table
	Enums  []*EnumType

	// Modern holds relation-table entries from define_relations().
	Modern []*RelationsEntry

	// LegacyDeclared reports whether any legacy relations() call ran.
	LegacyDeclared bool

	// TableIdents maps declaration identifiers to database table names.
	TableIdents map[string]string
}

// Result returns the declarations harvested so far, tables and enums in
// declaration order.
func (l *Loader) Result() *Result {
	tables := append([]*Table(nil), l.tables...)
	sort.SliceStable(tables, func(i, j int) bool { return tables[i].seq < tables[j].seq })
	enums := append([]*EnumType(nil), l.enums...)
	sort.SliceStable(enums, func(i, j int) bool { return enums[i].seq < enums[j].seq })

	idents := make(map[string]string, len(l.idents))
	for k, v := range l.idents {
		idents[k] = v
	}
	return &Result{
		Tables:         tables,
		Enums:          enums,
		Modern:         append([]*RelationsEntry(nil), l.modern...),
		LegacyDeclared: l.legacy,
		TableIdents:    idents,
	}
}

// LoadError reports a schema file that failed to evaluate.
type LoadError struct {
	File    string
	Message string
}

func (e *LoadError) Error() string {
	if e.File == "" {
		return e.Message
	}
	return fmt.Sprintf("schema %s: %s", filepath.Base(e.File), e.Message)
}
