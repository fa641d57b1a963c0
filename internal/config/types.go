// Package config provides project configuration for drizzledocs.
// Values are loaded from drizzledocs.yaml, environment variables, and
// CLI flags, in increasing order of precedence.
package config

import (
	"fmt"
)

// Config holds the full tool configuration.
type Config struct {
	// SchemaDir is the directory scanned for .star schema files.
	SchemaDir string `koanf:"schema_dir"`

	// OutDir receives the rendered documentation files.
	OutDir string `koanf:"out_dir"`

	// Formats lists the outputs to render: dbml, markdown, mermaid.
	Formats []string `koanf:"formats"`

	// Dialect selects SQL type names: postgres, mysql, sqlite.
	Dialect string `koanf:"dialect"`

	// Project names the documented database in rendered output.
	Project string `koanf:"project"`

	// Catalog is an optional SQLite catalog database path.
	Catalog string `koanf:"catalog"`

	Verbose bool `koanf:"verbose"`
}

// knownDialects lists the accepted dialect identifiers.
var knownDialects = map[string]bool{
	"postgres": true,
	"mysql":    true,
	"sqlite":   true,
}

// knownFormats lists the accepted output formats.
var knownFormats = map[string]bool{
	"dbml":     true,
	"markdown": true,
	"md":       true,
	"mermaid":  true,
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	if c.SchemaDir == "" {
		return fmt.Errorf("schema_dir is required")
	}
	if !knownDialects[c.Dialect] {
		return fmt.Errorf("unknown dialect %q (expected postgres, mysql, or sqlite)", c.Dialect)
	}
	for _, f := range c.Formats {
		if !knownFormats[f] {
			return fmt.Errorf("unknown format %q (expected dbml, markdown, or mermaid)", f)
		}
	}
	return nil
}
