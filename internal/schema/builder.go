package schema

import (
	"log/slog"
	"strconv"
	"strings"

	"go.starlark.net/starlark"

	"github.com/rikeda71/drizzle-docs-generator-sub000/internal/parser"
	"github.com/rikeda71/drizzle-docs-generator-sub000/internal/relations"
	"github.com/rikeda71/drizzle-docs-generator-sub000/internal/sdl"
)

// Builder composes an IntermediateSchema from the loaded declarations.
type Builder struct {
	dialect sdl.Dialect
	logger  *slog.Logger
}

// NewBuilder creates a builder for the given dialect.
func NewBuilder(dialect sdl.Dialect, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Builder{dialect: dialect, logger: logger}
}

// Build produces the intermediate schema. The relation adapter is chosen
// by the API shape found in the declarations: the modern API wins when
// any of its entries exist, otherwise the legacy API applies when legacy
// calls were declared, otherwise the schema has no relations. Relation
// extraction failure never prevents schema construction.
func (b *Builder) Build(res *sdl.Result, comments parser.SchemaComments, parsed []parser.ParsedRelation) *IntermediateSchema {
	s := &IntermediateSchema{Dialect: string(b.dialect)}

	for _, e := range res.Enums {
		s.Enums = append(s.Enums, EnumDefinition{
			Name:   e.Name(),
			Values: append([]string(nil), e.Values...),
		})
	}

	for _, t := range res.Tables {
		s.Tables = append(s.Tables, b.buildTable(t, comments[t.Name]))
	}

	var extractor relations.Extractor
	switch {
	case len(res.Modern) > 0:
		extractor = relations.NewModernAdapter(res.Modern)
	case res.LegacyDeclared || len(parsed) > 0:
		extractor = relations.NewLegacyAdapter(res.Tables, res.TableIdents, parsed)
	}
	if extractor != nil {
		rels, err := extractor.Extract()
		if err != nil {
			b.logger.Warn("relation extraction failed, schema has no relations", "error", err)
		} else {
			s.Relations = rels
		}
	}
	return s
}

// buildTable converts one live table and its recovered comments.
func (b *Builder) buildTable(t *sdl.Table, tc *parser.TableComments) TableDefinition {
	def := TableDefinition{Name: t.Name}
	if tc != nil {
		def.Comment = tc.Comment
	}

	dialect := t.Dialect
	if dialect == "" {
		dialect = b.dialect
	}

	for _, c := range t.Columns() {
		col := ColumnDefinition{
			Name:          c.DBName,
			Type:          c.SQLType(dialect),
			Nullable:      !c.NotNull && !c.PrimaryKey,
			PrimaryKey:    c.PrimaryKey,
			Unique:        c.Unique,
			AutoIncrement: c.AutoIncrement || c.Kind == "serial",
			HasDefault:    c.HasDefault,
		}
		if c.HasDefault {
			col.Default, col.DefaultIsExpr = formatDefault(c)
		}
		if tc != nil {
			if text, ok := tc.Columns[c.DBName]; ok {
				comment := text
				col.Comment = &comment
			}
		}
		def.Columns = append(def.Columns, col)
	}

	for _, idx := range t.Indexes {
		name := idx.Name
		if name == "" {
			name = synthName("idx", idx.Columns, "")
		}
		def.Indexes = append(def.Indexes, IndexDefinition{
			Name:    name,
			Columns: append([]string(nil), idx.Columns...),
			Unique:  idx.Unique,
		})
	}

	for _, pk := range t.PrimaryKeys {
		name := pk.Name
		if name == "" {
			name = synthName("pk", pk.Columns, "")
		}
		def.Constraints.PrimaryKeys = append(def.Constraints.PrimaryKeys, KeyConstraint{
			Name:    name,
			Columns: append([]string(nil), pk.Columns...),
		})
	}
	for _, uq := range t.Uniques {
		name := uq.Name
		if name == "" {
			name = synthName("uq", uq.Columns, "")
		}
		def.Constraints.Uniques = append(def.Constraints.Uniques, KeyConstraint{
			Name:    name,
			Columns: append([]string(nil), uq.Columns...),
		})
	}
	for _, fk := range t.ForeignKeys {
		name := fk.Name
		if name == "" {
			name = synthName("fk", fk.Columns, fk.TargetTable)
		}
		def.Constraints.ForeignKeys = append(def.Constraints.ForeignKeys, ForeignKeyConstraint{
			Name:          name,
			Columns:       append([]string(nil), fk.Columns...),
			TargetTable:   fk.TargetTable,
			TargetColumns: append([]string(nil), fk.TargetColumns...),
			OnDelete:      fk.OnDelete,
			OnUpdate:      fk.OnUpdate,
		})
	}
	return def
}

// synthName builds a constraint name when the declaration has none,
// e.g. idx_title, pk_id_org, fk_author_id_users.
func synthName(prefix string, columns []string, target string) string {
	parts := append([]string{prefix}, columns...)
	if target != "" {
		parts = append(parts, target)
	}
	return strings.Join(parts, "_")
}

// formatDefault renders a column default. Raw SQL expression defaults
// pass through as-is; literal defaults are formatted per their kind.
func formatDefault(c *sdl.Column) (string, bool) {
	if c.DefaultSQL != "" {
		return c.DefaultSQL, true
	}
	switch v := c.Default.(type) {
	case starlark.String:
		return "'" + strings.ReplaceAll(string(v), "'", "''") + "'", false
	case starlark.Bool:
		return strconv.FormatBool(bool(v)), false
	case starlark.Int:
		return v.String(), false
	case starlark.Float:
		return strconv.FormatFloat(float64(v), 'g', -1, 64), false
	case nil:
		return "", false
	default:
		return v.String(), false
	}
}
