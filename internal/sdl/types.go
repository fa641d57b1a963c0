// Package sdl implements the Starlark schema definition runtime.
// Schema files declare tables, columns, enums, and relations as Starlark
// values; the types in this package are the live objects those declarations
// evaluate to, and they double as the reflection layer the schema builder
// introspects.
package sdl

import (
	"fmt"
	"sort"
	"strings"

	"go.starlark.net/starlark"
)

// Dialect identifies the SQL dialect column types are rendered for.
type Dialect string

// Supported dialects.
const (
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
	DialectSQLite   Dialect = "sqlite"
)

// Table is a live table value produced by the table() builtin.
// Attribute access resolves column property names to their Column handles,
// so relation declarations can write users.profile_id.
type Table struct {
	Name    string // database table name
	Dialect Dialect

	props   []string // column property names in declaration order
	columns map[string]*Column

	Indexes     []IndexSpec
	PrimaryKeys []KeySpec
	Uniques     []KeySpec
	ForeignKeys []ForeignKeySpec

	seq    int // declaration order across all loaded files
	frozen bool
}

// Columns returns the table's columns in declaration order.
func (t *Table) Columns() []*Column {
	cols := make([]*Column, 0, len(t.props))
	for _, p := range t.props {
		cols = append(cols, t.columns[p])
	}
	return cols
}

// PropertyNames returns the column property names in declaration order.
func (t *Table) PropertyNames() []string {
	return append([]string(nil), t.props...)
}

// Column returns the column for a property name, or nil.
func (t *Table) Column(prop string) *Column {
	return t.columns[prop]
}

// ColumnNameMap returns the property-name to database-name mapping.
func (t *Table) ColumnNameMap() map[string]string {
	m := make(map[string]string, len(t.props))
	for _, p := range t.props {
		m[p] = t.columns[p].DBName
	}
	return m
}

func (t *Table) String() string        { return fmt.Sprintf("<table %s>", t.Name) }
func (t *Table) Type() string          { return "table" }
func (t *Table) Freeze()               { t.frozen = true }
func (t *Table) Truth() starlark.Bool  { return starlark.True }
func (t *Table) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: table") }

// Attr resolves a column property name to its Column handle.
func (t *Table) Attr(name string) (starlark.Value, error) {
	if c, ok := t.columns[name]; ok {
		return c, nil
	}
	return nil, nil
}

// AttrNames returns the sorted column property names.
func (t *Table) AttrNames() []string {
	names := append([]string(nil), t.props...)
	sort.Strings(names)
	return names
}

// ColumnRef is a column-level foreign key created by .references().
type ColumnRef struct {
	Target   *Column
	OnDelete string
	OnUpdate string
}

// Column is a live column value produced by a column constructor
// (integer, text, ...). Modifier methods mutate and return the same
// value so declarations can chain them.
type Column struct {
	Table  *Table // set when the column is bound by table()
	DBName string
	Kind   string // integer, text, boolean, real, timestamp, varchar, serial, enum
	Length int    // varchar only
	Enum   *EnumType

	NotNull       bool
	PrimaryKey    bool
	Unique        bool
	AutoIncrement bool

	HasDefault bool
	Default    starlark.Value // literal default
	DefaultSQL string         // raw SQL expression default

	Ref *ColumnRef

	frozen bool
}

func (c *Column) String() string        { return fmt.Sprintf("<column %s>", c.DBName) }
func (c *Column) Type() string          { return "column" }
func (c *Column) Freeze()               { c.frozen = true }
func (c *Column) Truth() starlark.Bool  { return starlark.True }
func (c *Column) Hash() (uint32, error) { return starlark.String(c.DBName).Hash() }

// columnMethods lists the chainable modifier methods.
var columnMethods = []string{
	"auto_increment", "default", "default_sql", "not_null",
	"primary_key", "references", "unique",
}

// Attr returns a bound modifier method.
func (c *Column) Attr(name string) (starlark.Value, error) {
	for _, m := range columnMethods {
		if m == name {
			return c.method(name), nil
		}
	}
	return nil, nil
}

// AttrNames returns the modifier method names.
func (c *Column) AttrNames() []string {
	return append([]string(nil), columnMethods...)
}

// method builds the builtin implementing a chainable modifier.
func (c *Column) method(name string) *starlark.Builtin {
	return starlark.NewBuiltin(name, func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		switch b.Name() {
		case "primary_key":
			if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
				return nil, err
			}
			c.PrimaryKey = true
		case "not_null":
			if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
				return nil, err
			}
			c.NotNull = true
		case "unique":
			if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
				return nil, err
			}
			c.Unique = true
		case "auto_increment":
			if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
				return nil, err
			}
			c.AutoIncrement = true
		case "default":
			var v starlark.Value
			if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &v); err != nil {
				return nil, err
			}
			c.HasDefault = true
			c.Default = v
			c.DefaultSQL = ""
		case "default_sql":
			var expr string
			if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &expr); err != nil {
				return nil, err
			}
			c.HasDefault = true
			c.Default = nil
			c.DefaultSQL = expr
		case "references":
			var target *Column
			var onDelete, onUpdate string
			if err := starlark.UnpackArgs(b.Name(), args, kwargs,
				"column", &target, "on_delete?", &onDelete, "on_update?", &onUpdate); err != nil {
				return nil, err
			}
			c.Ref = &ColumnRef{Target: target, OnDelete: onDelete, OnUpdate: onUpdate}
		}
		return c, nil
	})
}

// SQLType returns the dialect-specific type name for the column.
func (c *Column) SQLType(d Dialect) string {
	switch c.Kind {
	case "integer":
		if d == DialectPostgres {
			return "integer"
		}
		return "int"
	case "serial":
		switch d {
		case DialectPostgres:
			return "serial"
		case DialectMySQL:
			return "int"
		default:
			return "integer"
		}
	case "text":
		return "text"
	case "boolean":
		if d == DialectMySQL {
			return "tinyint(1)"
		}
		return "boolean"
	case "real":
		if d == DialectMySQL {
			return "double"
		}
		return "real"
	case "timestamp":
		return "timestamp"
	case "varchar":
		n := c.Length
		if n <= 0 {
			n = 255
		}
		return fmt.Sprintf("varchar(%d)", n)
	case "enum":
		if c.Enum != nil {
			if d == DialectPostgres {
				return c.Enum.Name()
			}
			quoted := make([]string, len(c.Enum.Values))
			for i, v := range c.Enum.Values {
				quoted[i] = "'" + v + "'"
			}
			return fmt.Sprintf("enum(%s)", strings.Join(quoted, ","))
		}
	}
	return c.Kind
}

// EnumType is a live enum type produced by the enum() builtin.
// Calling it creates a column of the enum type, so declarations can
// write mood("current_mood") after mood = enum("mood", [...]).
type EnumType struct {
	name   string
	Values []string
	seq    int
	frozen bool
}

// NewEnumType creates an enum type outside of Starlark evaluation.
func NewEnumType(name string, values []string) *EnumType {
	return &EnumType{name: name, Values: values}
}

// Name returns the enum's database type name.
// It also satisfies starlark.Callable together with CallInternal.
func (e *EnumType) Name() string { return e.name }

func (e *EnumType) String() string        { return fmt.Sprintf("<enum %s>", e.name) }
func (e *EnumType) Type() string          { return "enum" }
func (e *EnumType) Freeze()               { e.frozen = true }
func (e *EnumType) Truth() starlark.Bool  { return starlark.True }
func (e *EnumType) Hash() (uint32, error) { return starlark.String(e.name).Hash() }

// CallInternal creates a column of this enum type.
func (e *EnumType) CallInternal(_ *starlark.Thread, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackPositionalArgs(e.name, args, kwargs, 1, &name); err != nil {
		return nil, err
	}
	return &Column{DBName: name, Kind: "enum", Enum: e}, nil
}

// IndexSpec describes a declared index.
type IndexSpec struct {
	Name    string
	Columns []string // database column names
	Unique  bool
}

// KeySpec describes a composite primary key or unique constraint.
type KeySpec struct {
	Name    string
	Columns []string // database column names
}

// ForeignKeySpec describes a table-level foreign key.
type ForeignKeySpec struct {
	Name          string
	Columns       []string // database column names on the declaring table
	TargetTable   string
	TargetColumns []string
	OnDelete      string
	OnUpdate      string
}
