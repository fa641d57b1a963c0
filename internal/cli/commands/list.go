package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/rikeda71/drizzle-docs-generator-sub000/internal/engine"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tables, columns and relations",
		Long: `Read the schema definition files and print a summary of the tables,
their columns and the unified relations without writing any documents.`,
		Example: `  # Summarize the configured schema directory
  drizzledocs list

  # Summarize specific files
  drizzledocs list schema/users.star`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args)
		},
	}

	return cmd
}

func runList(cmd *cobra.Command, files []string) error {
	cfg := GetConfig(cmd.Context())
	logger := GetLogger(cmd.Context())

	eng := engine.New(engine.Config{
		SchemaDir: cfg.SchemaDir,
		Files:     files,
		Dialect:   cfg.Dialect,
		Project:   cfg.Project,
	}, logger)

	s, err := eng.Generate()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Table", "Columns", "Indexes", "Comment"})
	for _, tbl := range s.Tables {
		comment := ""
		if tbl.Comment != nil {
			comment = *tbl.Comment
		}
		t.AppendRow(table.Row{tbl.Name, len(tbl.Columns), len(tbl.Indexes), comment})
	}
	fmt.Fprintf(out, "Tables (%d)\n", len(s.Tables))
	t.Render()

	if len(s.Relations) > 0 {
		r := table.NewWriter()
		r.SetOutputMirror(out)
		r.SetStyle(table.StyleLight)
		r.AppendHeader(table.Row{"Source", "Target", "Cardinality"})
		for _, rel := range s.Relations {
			r.AppendRow(table.Row{
				fmt.Sprintf("%s(%s)", rel.SourceTable, strings.Join(rel.SourceColumns, ", ")),
				fmt.Sprintf("%s(%s)", rel.TargetTable, strings.Join(rel.TargetColumns, ", ")),
				string(rel.Cardinality),
			})
		}
		fmt.Fprintf(out, "\nRelations (%d)\n", len(s.Relations))
		r.Render()
	}

	return nil
}
