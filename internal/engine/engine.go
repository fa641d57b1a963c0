// Package engine runs the documentation pipeline: discover schema files,
// extract comments and legacy relation calls from their syntax trees,
// evaluate them into live declarations, unify relations, and build the
// intermediate schema. A run is synchronous and self-contained; watch
// mode simply re-runs it from scratch.
package engine

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/rikeda71/drizzle-docs-generator-sub000/internal/docs"
	"github.com/rikeda71/drizzle-docs-generator-sub000/internal/parser"
	"github.com/rikeda71/drizzle-docs-generator-sub000/internal/schema"
	"github.com/rikeda71/drizzle-docs-generator-sub000/internal/sdl"
)

// Config holds the inputs of one generation run.
type Config struct {
	// SchemaDir is scanned recursively for .star files when Files is empty.
	SchemaDir string

	// Files lists explicit schema files and overrides discovery.
	Files []string

	Dialect string
	Project string
}

// Engine generates intermediate schemas from schema source files.
type Engine struct {
	cfg    Config
	logger *slog.Logger
}

// New creates an engine.
func New(cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{cfg: cfg, logger: logger}
}

// Generate runs the full pipeline once. A file that cannot be read or
// parsed aborts the run; a broken schema file is a configuration mistake,
// not a gap to paper over.
func (e *Engine) Generate() (*schema.IntermediateSchema, error) {
	files := e.cfg.Files
	if len(files) == 0 {
		var err error
		if files, err = discover(e.cfg.SchemaDir); err != nil {
			return nil, err
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no schema files found in %s", e.cfg.SchemaDir)
	}

	comments := make(parser.SchemaComments)
	var parsed []parser.ParsedRelation
	loader := sdl.NewLoader(sdl.Dialect(e.cfg.Dialect))

	for _, file := range files {
		src, err := os.ReadFile(file) //nolint:gosec // G304: paths come from the configured schema directory
		if err != nil {
			return nil, fmt.Errorf("failed to read schema file: %w", err)
		}

		fragment, err := parser.ExtractComments(file, src)
		if err != nil {
			return nil, err
		}
		comments.Merge(fragment)

		rels, err := parser.ExtractRelationCalls(file, src)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, rels...)

		if err := loader.LoadFile(file, src); err != nil {
			return nil, err
		}
		e.logger.Debug("loaded schema file", "file", file)
	}

	builder := schema.NewBuilder(sdl.Dialect(e.cfg.Dialect), e.logger)
	return builder.Build(loader.Result(), comments, parsed), nil
}

// WriteDocs renders the schema into the requested formats under outDir
// and returns the written paths.
func (e *Engine) WriteDocs(s *schema.IntermediateSchema, outDir string, formats []string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	project := e.cfg.Project
	if project == "" {
		project = "database"
	}

	var written []string
	for _, format := range formats {
		var name, content string
		switch format {
		case "dbml":
			name = "schema.dbml"
			content = docs.RenderDBML(s, project)
		case "markdown", "md":
			name = "schema.md"
			content = docs.RenderMarkdown(s, project)
		case "mermaid":
			name = "schema.mmd"
			content = docs.RenderMermaid(s)
		default:
			return nil, fmt.Errorf("unknown format %q (expected dbml, markdown, or mermaid)", format)
		}
		path := filepath.Join(outDir, name)
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// discover finds .star files under dir, sorted for a stable load order.
func discover(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if len(info.Name()) > 1 && info.Name()[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == ".star" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan schema directory: %w", err)
	}
	sort.Strings(files)
	return files, nil
}
