// Package docs renders the intermediate schema into documentation
// formats: DBML, Markdown, and Mermaid ER diagrams. It can also export
// the schema into a SQLite catalog database and regenerate outputs on
// file changes.
package docs

import (
	"fmt"
	"strings"

	"github.com/rikeda71/drizzle-docs-generator-sub000/internal/relations"
	"github.com/rikeda71/drizzle-docs-generator-sub000/internal/schema"
)

// dialectLabels maps dialect identifiers to DBML database_type labels.
var dialectLabels = map[string]string{
	"postgres": "PostgreSQL",
	"mysql":    "MySQL",
	"sqlite":   "SQLite",
}

// RenderDBML renders the schema as a DBML document.
func RenderDBML(s *schema.IntermediateSchema, projectName string) string {
	var b strings.Builder

	label := dialectLabels[s.Dialect]
	if label == "" {
		label = s.Dialect
	}
	fmt.Fprintf(&b, "Project %s {\n", projectName)
	fmt.Fprintf(&b, "  database_type: '%s'\n", label)
	b.WriteString("}\n")

	for _, e := range s.Enums {
		fmt.Fprintf(&b, "\nEnum %s {\n", e.Name)
		for _, v := range e.Values {
			fmt.Fprintf(&b, "  %s\n", v)
		}
		b.WriteString("}\n")
	}

	for _, t := range s.Tables {
		b.WriteString("\n")
		writeDBMLTable(&b, t)
	}

	for _, r := range s.Relations {
		b.WriteString("\n")
		writeDBMLRef(&b, r)
	}
	for _, t := range s.Tables {
		for _, fk := range t.Constraints.ForeignKeys {
			b.WriteString("\n")
			writeDBMLForeignKey(&b, t.Name, fk)
		}
	}
	return b.String()
}

func writeDBMLTable(b *strings.Builder, t schema.TableDefinition) {
	fmt.Fprintf(b, "Table %s {\n", t.Name)
	for _, c := range t.Columns {
		settings := columnSettings(c)
		if len(settings) > 0 {
			fmt.Fprintf(b, "  %s %s [%s]\n", c.Name, c.Type, strings.Join(settings, ", "))
		} else {
			fmt.Fprintf(b, "  %s %s\n", c.Name, c.Type)
		}
	}
	if t.Comment != nil && *t.Comment != "" {
		fmt.Fprintf(b, "\n  Note: %s\n", dbmlString(*t.Comment))
	}

	hasKeyBlocks := len(t.Indexes) > 0 || len(t.Constraints.PrimaryKeys) > 0 || len(t.Constraints.Uniques) > 0
	if hasKeyBlocks {
		b.WriteString("\n  Indexes {\n")
		for _, pk := range t.Constraints.PrimaryKeys {
			fmt.Fprintf(b, "    (%s) [pk, name: '%s']\n", strings.Join(pk.Columns, ", "), pk.Name)
		}
		for _, uq := range t.Constraints.Uniques {
			fmt.Fprintf(b, "    (%s) [unique, name: '%s']\n", strings.Join(uq.Columns, ", "), uq.Name)
		}
		for _, idx := range t.Indexes {
			attrs := []string{}
			if idx.Unique {
				attrs = append(attrs, "unique")
			}
			attrs = append(attrs, fmt.Sprintf("name: '%s'", idx.Name))
			fmt.Fprintf(b, "    (%s) [%s]\n", strings.Join(idx.Columns, ", "), strings.Join(attrs, ", "))
		}
		b.WriteString("  }\n")
	}
	b.WriteString("}\n")
}

// columnSettings builds the bracketed settings list for one column.
func columnSettings(c schema.ColumnDefinition) []string {
	var settings []string
	if c.PrimaryKey {
		settings = append(settings, "pk")
	}
	if c.AutoIncrement {
		settings = append(settings, "increment")
	}
	if !c.Nullable && !c.PrimaryKey {
		settings = append(settings, "not null")
	}
	if c.Unique {
		settings = append(settings, "unique")
	}
	if c.HasDefault {
		if c.DefaultIsExpr {
			settings = append(settings, fmt.Sprintf("default: `%s`", c.Default))
		} else {
			settings = append(settings, fmt.Sprintf("default: %s", c.Default))
		}
	}
	if c.Comment != nil && *c.Comment != "" {
		settings = append(settings, fmt.Sprintf("note: %s", dbmlString(*c.Comment)))
	}
	return settings
}

// refGlyphs maps cardinalities to DBML relationship operators.
var refGlyphs = map[relations.Cardinality]string{
	relations.OneToOne:  "-",
	relations.ManyToOne: ">",
	relations.OneToMany: "<",
}

func writeDBMLRef(b *strings.Builder, r relations.UnifiedRelation) {
	glyph := refGlyphs[r.Cardinality]
	if glyph == "" {
		glyph = ">"
	}
	fmt.Fprintf(b, "Ref: %s.%s %s %s.%s",
		r.SourceTable, refColumns(r.SourceColumns),
		glyph,
		r.TargetTable, refColumns(r.TargetColumns))
	if actions := refActions(r.OnDelete, r.OnUpdate); actions != "" {
		fmt.Fprintf(b, " [%s]", actions)
	}
	b.WriteString("\n")
}

func writeDBMLForeignKey(b *strings.Builder, table string, fk schema.ForeignKeyConstraint) {
	fmt.Fprintf(b, "Ref %s: %s.%s > %s.%s",
		fk.Name,
		table, refColumns(fk.Columns),
		fk.TargetTable, refColumns(fk.TargetColumns))
	if actions := refActions(fk.OnDelete, fk.OnUpdate); actions != "" {
		fmt.Fprintf(b, " [%s]", actions)
	}
	b.WriteString("\n")
}

// refColumns renders a column list endpoint; composite keys get the
// parenthesized form.
func refColumns(cols []string) string {
	if len(cols) == 1 {
		return cols[0]
	}
	return "(" + strings.Join(cols, ", ") + ")"
}

func refActions(onDelete, onUpdate string) string {
	var parts []string
	if onDelete != "" {
		parts = append(parts, "delete: "+onDelete)
	}
	if onUpdate != "" {
		parts = append(parts, "update: "+onUpdate)
	}
	return strings.Join(parts, ", ")
}

// dbmlString quotes a note, using the triple-quoted form for multi-line
// text.
func dbmlString(s string) string {
	if strings.Contains(s, "\n") {
		return "'''" + s + "'''"
	}
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}
