// Package schema defines the dialect-agnostic intermediate schema and the
// builder that composes it from table reflection, extracted comments, and
// a relation adapter.
package schema

import (
	"github.com/rikeda71/drizzle-docs-generator-sub000/internal/relations"
)

// IntermediateSchema is the canonical description of one schema,
// ready for rendering. It is built fresh per generation run and is not
// mutated after being returned.
type IntermediateSchema struct {
	Dialect   string
	Tables    []TableDefinition
	Relations []relations.UnifiedRelation
	Enums     []EnumDefinition
}

// TableDefinition describes one table.
type TableDefinition struct {
	Name        string
	Comment     *string
	Columns     []ColumnDefinition
	Indexes     []IndexDefinition
	Constraints ConstraintSet
}

// ColumnDefinition describes one column.
type ColumnDefinition struct {
	Name          string
	Type          string
	Comment       *string
	Nullable      bool
	PrimaryKey    bool
	Unique        bool
	AutoIncrement bool

	HasDefault bool
	// Default is the formatted default value. DefaultIsExpr marks raw SQL
	// expression defaults that must pass through unescaped.
	Default       string
	DefaultIsExpr bool
}

// IndexDefinition describes one index.
type IndexDefinition struct {
	Name    string
	Columns []string
	Unique  bool
}

// ConstraintSet groups a table's declared constraints.
type ConstraintSet struct {
	PrimaryKeys []KeyConstraint
	Uniques     []KeyConstraint
	ForeignKeys []ForeignKeyConstraint
}

// KeyConstraint is a composite primary key or unique constraint.
type KeyConstraint struct {
	Name    string
	Columns []string
}

// ForeignKeyConstraint is a declared foreign key.
type ForeignKeyConstraint struct {
	Name          string
	Columns       []string
	TargetTable   string
	TargetColumns []string
	OnDelete      string
	OnUpdate      string
}

// EnumDefinition describes one enum type.
type EnumDefinition struct {
	Name   string
	Values []string
}
