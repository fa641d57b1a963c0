package docs

import (
	"fmt"
	"strings"

	"github.com/rikeda71/drizzle-docs-generator-sub000/internal/schema"
)

// RenderMarkdown renders the schema as a Markdown document with one
// section per table.
func RenderMarkdown(s *schema.IntermediateSchema, projectName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", projectName)

	if len(s.Enums) > 0 {
		b.WriteString("## Enums\n\n")
		for _, e := range s.Enums {
			fmt.Fprintf(&b, "- **%s**: %s\n", e.Name, strings.Join(e.Values, ", "))
		}
		b.WriteString("\n")
	}

	for _, t := range s.Tables {
		writeMarkdownTable(&b, s, t)
	}
	return b.String()
}

func writeMarkdownTable(b *strings.Builder, s *schema.IntermediateSchema, t schema.TableDefinition) {
	fmt.Fprintf(b, "## %s\n\n", t.Name)
	if t.Comment != nil && *t.Comment != "" {
		fmt.Fprintf(b, "%s\n\n", *t.Comment)
	}

	b.WriteString("| Column | Type | Nullable | Default | Constraints | Comment |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- |\n")
	for _, c := range t.Columns {
		var constraints []string
		if c.PrimaryKey {
			constraints = append(constraints, "PK")
		}
		if c.Unique {
			constraints = append(constraints, "unique")
		}
		if c.AutoIncrement {
			constraints = append(constraints, "auto-increment")
		}
		def := ""
		if c.HasDefault {
			def = mdEscape(c.Default)
		}
		comment := ""
		if c.Comment != nil {
			comment = mdEscape(*c.Comment)
		}
		fmt.Fprintf(b, "| %s | %s | %v | %s | %s | %s |\n",
			c.Name, mdEscape(c.Type), c.Nullable, def, strings.Join(constraints, ", "), comment)
	}
	b.WriteString("\n")

	if len(t.Indexes) > 0 || len(t.Constraints.PrimaryKeys) > 0 || len(t.Constraints.Uniques) > 0 {
		b.WriteString("### Indexes\n\n")
		for _, pk := range t.Constraints.PrimaryKeys {
			fmt.Fprintf(b, "- `%s` primary key (%s)\n", pk.Name, strings.Join(pk.Columns, ", "))
		}
		for _, uq := range t.Constraints.Uniques {
			fmt.Fprintf(b, "- `%s` unique (%s)\n", uq.Name, strings.Join(uq.Columns, ", "))
		}
		for _, idx := range t.Indexes {
			kind := "index"
			if idx.Unique {
				kind = "unique index"
			}
			fmt.Fprintf(b, "- `%s` %s (%s)\n", idx.Name, kind, strings.Join(idx.Columns, ", "))
		}
		b.WriteString("\n")
	}

	var refs []string
	for _, fk := range t.Constraints.ForeignKeys {
		refs = append(refs, fmt.Sprintf("- (%s) → %s (%s)",
			strings.Join(fk.Columns, ", "), fk.TargetTable, strings.Join(fk.TargetColumns, ", ")))
	}
	for _, r := range s.Relations {
		if r.SourceTable != t.Name {
			continue
		}
		refs = append(refs, fmt.Sprintf("- (%s) → %s (%s), %s",
			strings.Join(r.SourceColumns, ", "), r.TargetTable,
			strings.Join(r.TargetColumns, ", "), r.Cardinality))
	}
	if len(refs) > 0 {
		b.WriteString("### References\n\n")
		for _, ref := range refs {
			b.WriteString(ref + "\n")
		}
		b.WriteString("\n")
	}
}

// mdEscape keeps cell text from breaking the table layout.
func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
