package sdl

import (
	"fmt"

	"go.starlark.net/starlark"
)

// RelationKind tags a declared relation as single-record or multi-record.
type RelationKind string

// Relation kinds.
const (
	KindOne  RelationKind = "one"
	KindMany RelationKind = "many"
)

// Relation is a live relation object inside a RelationsEntry.
// Single-record relations carry ordered column handles; multi-record
// relations are informational and carry none. Reversed marks the
// auto-generated inverse of a declaration made from the other side.
type Relation struct {
	Name          string
	Kind          RelationKind
	Reversed      bool
	SourceColumns []*Column
	TargetColumns []*Column
	TargetTable   *Table
	OnDelete      string
	OnUpdate      string
}

// RelationsEntry groups the relations declared for (or mirrored onto)
// one table by define_relations().
type RelationsEntry struct {
	Table     *Table
	names     []string
	relations map[string]*Relation
}

// Names returns relation names in declaration order, auto-generated
// inverses last.
func (e *RelationsEntry) Names() []string {
	return append([]string(nil), e.names...)
}

// Relation returns the named relation, or nil.
func (e *RelationsEntry) Relation(name string) *Relation {
	return e.relations[name]
}

// Relations returns the entry's relations in declaration order.
func (e *RelationsEntry) Relations() []*Relation {
	rels := make([]*Relation, 0, len(e.names))
	for _, n := range e.names {
		rels = append(rels, e.relations[n])
	}
	return rels
}

func (e *RelationsEntry) add(r *Relation) {
	if _, ok := e.relations[r.Name]; ok {
		// Redeclaration of a relation name, last writer wins.
		e.relations[r.Name] = r
		return
	}
	e.names = append(e.names, r.Name)
	e.relations[r.Name] = r
}

// RelationSet is the live value returned by define_relations().
type RelationSet struct {
	entries []*RelationsEntry
	frozen  bool
}

// Entries returns the relation-table entries in declaration order.
func (s *RelationSet) Entries() []*RelationsEntry {
	return append([]*RelationsEntry(nil), s.entries...)
}

func (s *RelationSet) String() string        { return fmt.Sprintf("<relations %d tables>", len(s.entries)) }
func (s *RelationSet) Type() string          { return "relations" }
func (s *RelationSet) Freeze()               { s.frozen = true }
func (s *RelationSet) Truth() starlark.Bool  { return starlark.Bool(len(s.entries) > 0) }
func (s *RelationSet) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: relations") }

// RelationSpec is the intermediate value produced by the one() and many()
// builtins before define_relations() resolves it into Relation objects.
type RelationSpec struct {
	Kind     RelationKind
	Target   *Table
	From     []*Column
	To       []*Column
	OnDelete string
	OnUpdate string
	frozen   bool
}

func (r *RelationSpec) String() string        { return fmt.Sprintf("<%s %s>", r.Kind, r.Target.Name) }
func (r *RelationSpec) Type() string          { return "relation" }
func (r *RelationSpec) Freeze()               { r.frozen = true }
func (r *RelationSpec) Truth() starlark.Bool  { return starlark.True }
func (r *RelationSpec) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: relation") }

// LegacyRelations is the live value returned by the legacy relations()
// builtin. Its join information is not used at runtime; the v0 adapter
// recovers it from the source syntax tree instead. The value exists so
// schema files evaluate and so the builder can detect the legacy API shape.
type LegacyRelations struct {
	Table  *Table
	frozen bool
}

func (l *LegacyRelations) String() string        { return fmt.Sprintf("<relations %s>", l.Table.Name) }
func (l *LegacyRelations) Type() string          { return "legacy_relations" }
func (l *LegacyRelations) Freeze()               { l.frozen = true }
func (l *LegacyRelations) Truth() starlark.Bool  { return starlark.True }
func (l *LegacyRelations) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: legacy_relations") }

// legacyHelper is the argument passed to the legacy relations() callback.
// Its one/many attributes build placeholder relation values.
type legacyHelper struct{}

func (h *legacyHelper) String() string        { return "<relation helpers>" }
func (h *legacyHelper) Type() string          { return "relation_helpers" }
func (h *legacyHelper) Freeze()               {}
func (h *legacyHelper) Truth() starlark.Bool  { return starlark.True }
func (h *legacyHelper) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: relation_helpers") }

// Attr returns the one or many helper builtin.
func (h *legacyHelper) Attr(name string) (starlark.Value, error) {
	switch name {
	case "one":
		return starlark.NewBuiltin("one", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var target *Table
			var fields, references *starlark.List
			if err := starlark.UnpackArgs(b.Name(), args, kwargs,
				"table", &target, "fields?", &fields, "references?", &references); err != nil {
				return nil, err
			}
			return &RelationSpec{Kind: KindOne, Target: target}, nil
		}), nil
	case "many":
		return starlark.NewBuiltin("many", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var target *Table
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "table", &target); err != nil {
				return nil, err
			}
			return &RelationSpec{Kind: KindMany, Target: target}, nil
		}), nil
	}
	return nil, nil
}

// AttrNames lists the helper methods.
func (h *legacyHelper) AttrNames() []string { return []string{"many", "one"} }
