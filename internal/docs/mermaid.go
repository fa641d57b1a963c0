package docs

import (
	"fmt"
	"strings"

	"github.com/rikeda71/drizzle-docs-generator-sub000/internal/relations"
	"github.com/rikeda71/drizzle-docs-generator-sub000/internal/schema"
)

// RenderMermaid renders the schema as a Mermaid erDiagram.
func RenderMermaid(s *schema.IntermediateSchema) string {
	var b strings.Builder
	b.WriteString("erDiagram\n")

	for _, t := range s.Tables {
		fmt.Fprintf(&b, "  %s {\n", t.Name)
		for _, c := range t.Columns {
			var marks []string
			if c.PrimaryKey {
				marks = append(marks, "PK")
			}
			if c.Unique {
				marks = append(marks, "UK")
			}
			line := fmt.Sprintf("    %s %s", mermaidType(c.Type), c.Name)
			if len(marks) > 0 {
				line += " " + strings.Join(marks, ",")
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("  }\n")
	}

	for _, r := range s.Relations {
		// Source is the referencing side: many (or exactly one) source rows
		// point at one target row.
		connector := "}o--||"
		if r.Cardinality == relations.OneToOne {
			connector = "||--||"
		}
		fmt.Fprintf(&b, "  %s %s %s : \"%s -> %s\"\n",
			r.SourceTable, connector, r.TargetTable,
			strings.Join(r.SourceColumns, ","), strings.Join(r.TargetColumns, ","))
	}
	return b.String()
}

// mermaidType strips characters Mermaid cannot parse in type names.
func mermaidType(t string) string {
	t = strings.ReplaceAll(t, " ", "_")
	t = strings.ReplaceAll(t, ",", "_")
	return t
}
