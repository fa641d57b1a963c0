package sdl

import (
	"go.starlark.net/starlark"
)

// specValue wraps a table-level descriptor (index, key, foreign key) so it
// can travel through Starlark into the table() builtin.
type specValue struct {
	kind string // "index", "primary_key", "unique", "foreign_key"
	idx  IndexSpec
	key  KeySpec
	fk   ForeignKeySpec
}

func (s *specValue) String() string        { return "<" + s.kind + ">" }
func (s *specValue) Type() string          { return s.kind }
func (s *specValue) Freeze()               {}
func (s *specValue) Truth() starlark.Bool  { return starlark.True }
func (s *specValue) Hash() (uint32, error) { return 0, nil }

// columnNames resolves a Starlark list of Column handles or strings to
// database column names.
func columnNames(list *starlark.List) ([]string, error) {
	if list == nil {
		return nil, nil
	}
	names := make([]string, 0, list.Len())
	for i := 0; i < list.Len(); i++ {
		switch v := list.Index(i).(type) {
		case *Column:
			names = append(names, v.DBName)
		case starlark.String:
			names = append(names, string(v))
		default:
			return nil, errBadColumnList(v)
		}
	}
	return names, nil
}

func errBadColumnList(v starlark.Value) error {
	return &LoadError{Message: "column list elements must be columns or strings, got " + v.Type()}
}

// columnHandles resolves a Starlark list to Column handles.
func columnHandles(list *starlark.List) ([]*Column, error) {
	if list == nil {
		return nil, nil
	}
	cols := make([]*Column, 0, list.Len())
	for i := 0; i < list.Len(); i++ {
		c, ok := list.Index(i).(*Column)
		if !ok {
			return nil, errBadColumnList(list.Index(i))
		}
		cols = append(cols, c)
	}
	return cols, nil
}

// Predeclared returns the builtin globals available to schema files.
// The builtins close over the loader so declarations register themselves
// in declaration order; state is fresh per loader, never shared across runs.
func (l *Loader) Predeclared() starlark.StringDict {
	globals := starlark.StringDict{
		"table":        l.tableBuiltin("table", l.dialect),
		"pg_table":     l.tableBuiltin("pg_table", DialectPostgres),
		"mysql_table":  l.tableBuiltin("mysql_table", DialectMySQL),
		"sqlite_table": l.tableBuiltin("sqlite_table", DialectSQLite),
		"enum":         l.enumBuiltin(),

		"index":        indexBuiltin(),
		"primary_key":  primaryKeyBuiltin(),
		"unique_index": uniqueIndexBuiltin(),
		"foreign_key":  foreignKeyBuiltin(),

		"relations":        l.relationsBuiltin(),
		"define_relations": l.defineRelationsBuiltin(),
		"one":              relationSpecBuiltin("one"),
		"many":             relationSpecBuiltin("many"),
	}
	for _, kind := range []string{"integer", "text", "boolean", "real", "timestamp", "serial"} {
		globals[kind] = columnBuiltin(kind)
	}
	globals["varchar"] = varcharBuiltin()
	return globals
}

// columnBuiltin builds a simple column constructor: integer("id").
func columnBuiltin(kind string) *starlark.Builtin {
	return starlark.NewBuiltin(kind, func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var name string
		if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &name); err != nil {
			return nil, err
		}
		return &Column{DBName: name, Kind: b.Name()}, nil
	})
}

func varcharBuiltin() *starlark.Builtin {
	return starlark.NewBuiltin("varchar", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var name string
		length := 255
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name, "length?", &length); err != nil {
			return nil, err
		}
		return &Column{DBName: name, Kind: "varchar", Length: length}, nil
	})
}

func (l *Loader) enumBuiltin() *starlark.Builtin {
	return starlark.NewBuiltin("enum", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var name string
		var values *starlark.List
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name, "values", &values); err != nil {
			return nil, err
		}
		vals := make([]string, 0, values.Len())
		for i := 0; i < values.Len(); i++ {
			s, ok := starlark.AsString(values.Index(i))
			if !ok {
				return nil, &LoadError{Message: "enum values must be strings"}
			}
			vals = append(vals, s)
		}
		e := &EnumType{name: name, Values: vals, seq: l.nextSeq()}
		l.enums = append(l.enums, e)
		return e, nil
	})
}

func (l *Loader) tableBuiltin(name string, dialect Dialect) *starlark.Builtin {
	return starlark.NewBuiltin(name, func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var tableName string
		var columns *starlark.Dict
		var indexes, constraints *starlark.List
		if err := starlark.UnpackArgs(b.Name(), args, kwargs,
			"name", &tableName, "columns", &columns,
			"indexes?", &indexes, "constraints?", &constraints); err != nil {
			return nil, err
		}

		t := &Table{
			Name:    tableName,
			Dialect: dialect,
			columns: make(map[string]*Column),
			seq:     l.nextSeq(),
		}
		for _, item := range columns.Items() {
			prop, ok := starlark.AsString(item[0])
			if !ok {
				return nil, &LoadError{Message: "column keys must be strings in table " + tableName}
			}
			col, ok := item[1].(*Column)
			if !ok {
				return nil, &LoadError{Message: "column " + prop + " of table " + tableName + " is not a column value"}
			}
			col.Table = t
			if col.DBName == "" {
				col.DBName = prop
			}
			t.props = append(t.props, prop)
			t.columns[prop] = col
		}

		// Column-level .references() calls become foreign key descriptors.
		for _, prop := range t.props {
			c := t.columns[prop]
			if c.Ref == nil || c.Ref.Target == nil || c.Ref.Target.Table == nil {
				continue
			}
			t.ForeignKeys = append(t.ForeignKeys, ForeignKeySpec{
				Columns:       []string{c.DBName},
				TargetTable:   c.Ref.Target.Table.Name,
				TargetColumns: []string{c.Ref.Target.DBName},
				OnDelete:      c.Ref.OnDelete,
				OnUpdate:      c.Ref.OnUpdate,
			})
		}

		if err := applySpecs(t, indexes); err != nil {
			return nil, err
		}
		if err := applySpecs(t, constraints); err != nil {
			return nil, err
		}

		l.tables = append(l.tables, t)
		return t, nil
	})
}

// applySpecs distributes index/key/foreign-key descriptors onto the table.
func applySpecs(t *Table, list *starlark.List) error {
	if list == nil {
		return nil
	}
	for i := 0; i < list.Len(); i++ {
		sv, ok := list.Index(i).(*specValue)
		if !ok {
			return &LoadError{Message: "table " + t.Name + ": expected index or constraint, got " + list.Index(i).Type()}
		}
		switch sv.kind {
		case "index":
			t.Indexes = append(t.Indexes, sv.idx)
		case "primary_key":
			t.PrimaryKeys = append(t.PrimaryKeys, sv.key)
		case "unique":
			t.Uniques = append(t.Uniques, sv.key)
		case "foreign_key":
			t.ForeignKeys = append(t.ForeignKeys, sv.fk)
		}
	}
	return nil
}

func indexBuiltin() *starlark.Builtin {
	return starlark.NewBuiltin("index", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var columns *starlark.List
		var name string
		var unique bool
		if err := starlark.UnpackArgs(b.Name(), args, kwargs,
			"columns", &columns, "name?", &name, "unique?", &unique); err != nil {
			return nil, err
		}
		cols, err := columnNames(columns)
		if err != nil {
			return nil, err
		}
		return &specValue{kind: "index", idx: IndexSpec{Name: name, Columns: cols, Unique: unique}}, nil
	})
}

func primaryKeyBuiltin() *starlark.Builtin {
	return starlark.NewBuiltin("primary_key", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var columns *starlark.List
		var name string
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "columns", &columns, "name?", &name); err != nil {
			return nil, err
		}
		cols, err := columnNames(columns)
		if err != nil {
			return nil, err
		}
		return &specValue{kind: "primary_key", key: KeySpec{Name: name, Columns: cols}}, nil
	})
}

func uniqueIndexBuiltin() *starlark.Builtin {
	return starlark.NewBuiltin("unique_index", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var columns *starlark.List
		var name string
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "columns", &columns, "name?", &name); err != nil {
			return nil, err
		}
		cols, err := columnNames(columns)
		if err != nil {
			return nil, err
		}
		return &specValue{kind: "unique", key: KeySpec{Name: name, Columns: cols}}, nil
	})
}

func foreignKeyBuiltin() *starlark.Builtin {
	return starlark.NewBuiltin("foreign_key", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var columns, references *starlark.List
		var name, onDelete, onUpdate string
		if err := starlark.UnpackArgs(b.Name(), args, kwargs,
			"columns", &columns, "references", &references,
			"name?", &name, "on_delete?", &onDelete, "on_update?", &onUpdate); err != nil {
			return nil, err
		}
		cols, err := columnNames(columns)
		if err != nil {
			return nil, err
		}
		refs, err := columnHandles(references)
		if err != nil {
			return nil, err
		}
		fk := ForeignKeySpec{Name: name, Columns: cols, OnDelete: onDelete, OnUpdate: onUpdate}
		for _, r := range refs {
			if r.Table != nil && fk.TargetTable == "" {
				fk.TargetTable = r.Table.Name
			}
			fk.TargetColumns = append(fk.TargetColumns, r.DBName)
		}
		return &specValue{kind: "foreign_key", fk: fk}, nil
	})
}

// relationsBuiltin implements the legacy relation-registration API.
// The callback runs so the file evaluates, but the join information it
// declares is recovered from the syntax tree, not from this value.
func (l *Loader) relationsBuiltin() *starlark.Builtin {
	return starlark.NewBuiltin("relations", func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var t *Table
		var fn starlark.Callable
		if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &t, &fn); err != nil {
			return nil, err
		}
		if _, err := starlark.Call(thread, fn, starlark.Tuple{&legacyHelper{}}, nil); err != nil {
			return nil, err
		}
		l.legacy = true
		return &LegacyRelations{Table: t}, nil
	})
}

// relationSpecBuiltin implements the modern one()/many() helpers.
func relationSpecBuiltin(kind string) *starlark.Builtin {
	return starlark.NewBuiltin(kind, func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var target *Table
		var fields, references *starlark.List
		var onDelete, onUpdate string
		if err := starlark.UnpackArgs(b.Name(), args, kwargs,
			"table", &target, "fields?", &fields, "references?", &references,
			"on_delete?", &onDelete, "on_update?", &onUpdate); err != nil {
			return nil, err
		}
		spec := &RelationSpec{Target: target, OnDelete: onDelete, OnUpdate: onUpdate}
		if b.Name() == "one" {
			spec.Kind = KindOne
		} else {
			spec.Kind = KindMany
		}
		var err error
		if spec.From, err = columnHandles(fields); err != nil {
			return nil, err
		}
		if spec.To, err = columnHandles(references); err != nil {
			return nil, err
		}
		return spec, nil
	})
}

// defineRelationsBuiltin implements the modern relation-declaration API.
// Every single-record declaration also materializes a reversed multi-record
// inverse on the target table's entry.
func (l *Loader) defineRelationsBuiltin() *starlark.Builtin {
	return starlark.NewBuiltin("define_relations", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var tables, decls *starlark.Dict
		if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &tables, &decls); err != nil {
			return nil, err
		}

		set := &RelationSet{}
		byTable := make(map[string]*RelationsEntry)
		entryFor := func(t *Table) *RelationsEntry {
			if e, ok := byTable[t.Name]; ok {
				return e
			}
			e := &RelationsEntry{Table: t, relations: make(map[string]*Relation)}
			byTable[t.Name] = e
			set.entries = append(set.entries, e)
			return e
		}

		for _, item := range decls.Items() {
			key, ok := starlark.AsString(item[0])
			if !ok {
				continue
			}
			tv, found, err := tables.Get(item[0])
			if err != nil || !found {
				continue // relation block for an unknown table, drop it
			}
			t, ok := tv.(*Table)
			if !ok {
				continue
			}
			inner, ok := item[1].(*starlark.Dict)
			if !ok {
				continue
			}
			entry := entryFor(t)
			for _, rel := range inner.Items() {
				name, ok := starlark.AsString(rel[0])
				if !ok {
					continue
				}
				spec, ok := rel[1].(*RelationSpec)
				if !ok || spec.Target == nil {
					continue
				}
				if spec.Kind == KindMany {
					entry.add(&Relation{Name: name, Kind: KindMany, TargetTable: spec.Target})
					continue
				}
				entry.add(&Relation{
					Name:          name,
					Kind:          KindOne,
					SourceColumns: spec.From,
					TargetColumns: spec.To,
					TargetTable:   spec.Target,
					OnDelete:      spec.OnDelete,
					OnUpdate:      spec.OnUpdate,
				})
				if len(spec.From) > 0 && len(spec.From) == len(spec.To) {
					entryFor(spec.Target).add(&Relation{
						Name:          key + "_" + name,
						Kind:          KindMany,
						Reversed:      true,
						SourceColumns: spec.To,
						TargetColumns: spec.From,
						TargetTable:   t,
					})
				}
			}
		}

		l.modern = append(l.modern, set.entries...)
		return set, nil
	})
}
