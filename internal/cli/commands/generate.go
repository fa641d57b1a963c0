package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rikeda71/drizzle-docs-generator-sub000/internal/docs"
	"github.com/rikeda71/drizzle-docs-generator-sub000/internal/engine"
)

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "generate [files...]",
		Short: "Generate schema documentation",
		Long: `Read the schema definition files, build the intermediate schema and
write the configured document formats to the output directory.

When files are given as arguments only those files are read; otherwise
the schema directory is scanned recursively.`,
		Example: `  # Generate docs for the configured schema directory
  drizzledocs generate

  # Generate docs for specific files
  drizzledocs generate schema/users.star schema/posts.star

  # Rebuild on every schema change
  drizzledocs generate --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args, watch)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Watch the schema directory and regenerate on change")

	return cmd
}

func runGenerate(cmd *cobra.Command, files []string, watch bool) error {
	cfg := GetConfig(cmd.Context())
	logger := GetLogger(cmd.Context())

	eng := engine.New(engine.Config{
		SchemaDir: cfg.SchemaDir,
		Files:     files,
		Dialect:   cfg.Dialect,
		Project:   cfg.Project,
	}, logger)

	rebuild := func() error {
		s, err := eng.Generate()
		if err != nil {
			return err
		}

		written, err := eng.WriteDocs(s, cfg.OutDir, cfg.Formats)
		if err != nil {
			return err
		}
		for _, path := range written {
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		}

		if cfg.Catalog != "" {
			if err := docs.WriteCatalog(cfg.Catalog, s); err != nil {
				return fmt.Errorf("failed to write catalog: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", cfg.Catalog)
		}

		return nil
	}

	if err := rebuild(); err != nil {
		return err
	}

	if !watch {
		return nil
	}

	if len(files) > 0 {
		return fmt.Errorf("--watch cannot be combined with explicit file arguments")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "watching %s for changes (ctrl-c to stop)\n", cfg.SchemaDir)
	return docs.Watch(ctx, cfg.SchemaDir, rebuild)
}
